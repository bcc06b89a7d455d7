// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the stored catalog entry.
type Product struct {
	ID          primitive.ObjectID
	Name        string
	Description string
	Price       decimal.Decimal
	Units       int
}

// SortOrder is the ordering applied to a page of products.
type SortOrder int

const (
	// SortNone leaves ordering to the store.
	SortNone SortOrder = iota
	SortUnitsAsc
	SortUnitsDesc
)

// Query is a resolved filter, pagination and ordering for FindPage.
type Query struct {
	// Search matches name or description, case-insensitively, as a substring. Empty matches all.
	Search string
	Skip   int64
	Limit  int64
	Sort   SortOrder
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)

	// FindByName retrieves a single product by its exact name.
	// Returns ErrProductNotFound if no product has that name.
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindPage returns the products matching q, in q's order.
	// Returns an empty slice if nothing matches.
	FindPage(ctx context.Context, q Query) ([]Product, error)

	// Insert stores a new product and assigns its ID.
	// Returns ErrNameConflict if the name is already taken.
	Insert(ctx context.Context, product Product) (*Product, error)

	// Replace overwrites every field but the ID of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Replace(ctx context.Context, id primitive.ObjectID, product Product) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}
