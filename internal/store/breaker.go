package store

import (
	"context"
	"errors"

	perrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BreakerStore wraps a ProductStore in a circuit breaker.
// Domain outcomes (not found, name conflict, unencodable price) and caller cancellation do not count as failures.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore decorates next with a breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig) *BreakerStore {
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](breakerSettings("product-store-cb", cfg)),
	}
}

func breakerSettings(name string, cfg config.CircuitBreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isStoreSuccess,
	}
}

func isStoreSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, perrors.ErrProductNotFound) ||
		errors.Is(err, perrors.ErrNameConflict) ||
		errors.Is(err, perrors.ErrUnencodablePrice) ||
		errors.Is(err, context.Canceled)
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (b *BreakerStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.FindByID(ctx, id) })
}

func (b *BreakerStore) FindByName(ctx context.Context, name string) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.FindByName(ctx, name) })
}

func (b *BreakerStore) FindPage(ctx context.Context, q Query) ([]Product, error) {
	return execute(b.cb, func() ([]Product, error) { return b.next.FindPage(ctx, q) })
}

func (b *BreakerStore) Insert(ctx context.Context, product Product) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.Insert(ctx, product) })
}

func (b *BreakerStore) Replace(ctx context.Context, id primitive.ObjectID, product Product) error {
	_, err := execute(b.cb, func() (struct{}, error) { return struct{}{}, b.next.Replace(ctx, id, product) })
	return err
}

func (b *BreakerStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := execute(b.cb, func() (struct{}, error) { return struct{}{}, b.next.DeleteByID(ctx, id) })
	return err
}
