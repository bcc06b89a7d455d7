package messaging

import (
	"context"
)

const (
	ProductsSubjectPrefix  = "products."
	ProductsCreatedSubject = ProductsSubjectPrefix + "created"
	ProductsUpdatedSubject = ProductsSubjectPrefix + "updated"
	ProductsDeletedSubject = ProductsSubjectPrefix + "deleted"
)

// ProductsSubjects is the wildcard subject bound to the products stream.
const ProductsSubjects = ProductsSubjectPrefix + ">"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event. Used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
