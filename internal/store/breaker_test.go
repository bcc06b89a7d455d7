package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	perrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// erroringStore fails every FindByID with err.
type erroringStore struct {
	ProductStore
	err   error
	calls int
}

func (s *erroringStore) FindByID(context.Context, primitive.ObjectID) (*Product, error) {
	s.calls++
	return nil, s.err
}

var breakerConfig = config.CircuitBreakerConfig{
	Enabled:             true,
	ConsecutiveFailures: 2,
	ErrorRatePercent:    100,
	OpenTimeout:         time.Minute,
}

func TestBreakerStore_OpensOnStoreFailures(t *testing.T) {
	// given
	inner := &erroringStore{err: errors.New("connection refused")}
	b := NewBreakerStore(inner, breakerConfig)

	// when
	for range 3 {
		_, err := b.FindByID(context.Background(), primitive.NewObjectID())
		require.Error(t, err)
	}
	_, err := b.FindByID(context.Background(), primitive.NewObjectID())

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerStore_DomainErrorsKeepItClosed(t *testing.T) {
	domainErrs := []error{
		perrors.ErrProductNotFound,
		perrors.ErrNameConflict,
		fmt.Errorf("failed to encode price 1e7000: %w", perrors.ErrUnencodablePrice),
		context.Canceled,
	}
	for _, domainErr := range domainErrs {
		t.Run(domainErr.Error(), func(t *testing.T) {
			// given
			inner := &erroringStore{err: domainErr}
			b := NewBreakerStore(inner, breakerConfig)

			// when
			for range 10 {
				_, err := b.FindByID(context.Background(), primitive.NewObjectID())
				require.ErrorIs(t, err, domainErr)
			}

			// then
			assert.Equal(t, gobreaker.StateClosed, b.State())
			assert.Equal(t, 10, inner.calls)
		})
	}
}

func TestBreakerStore_PassesResultsThrough(t *testing.T) {
	// given
	b := NewBreakerStore(NewInMemoryStore(), breakerConfig)
	ctx := context.Background()

	// when
	created, err := b.Insert(ctx, Product{Name: "Lamp", Description: "Desk lamp", Units: 1})
	require.NoError(t, err)
	found, err := b.FindByID(ctx, created.ID)

	// then
	require.NoError(t, err)
	assert.Equal(t, created, found)
	require.NoError(t, b.DeleteByID(ctx, created.ID))
	assert.ErrorIs(t, b.DeleteByID(ctx, created.ID), perrors.ErrProductNotFound)
}
