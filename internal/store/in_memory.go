package store

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/abgdnv/producthub/internal/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]Product
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[primitive.ObjectID]Product),
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id primitive.ObjectID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// FindByName retrieves a product by its exact name.
func (s *inMemory) FindByName(_ context.Context, name string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, errors.ErrProductNotFound
}

// FindPage filters, orders and slices the products the same way MongoStore does.
// Ties, and SortNone, fall back to id order, which is insertion order.
func (s *inMemory) FindPage(_ context.Context, q Query) ([]Product, error) {
	s.mu.RLock()
	term := strings.ToLower(q.Search)
	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
			list = append(list, p)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(list, func(a, b Product) int {
		switch {
		case q.Sort == SortUnitsAsc && a.Units != b.Units:
			return a.Units - b.Units
		case q.Sort == SortUnitsDesc && a.Units != b.Units:
			return b.Units - a.Units
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	skip := max(q.Skip, 0)
	if skip >= int64(len(list)) {
		return []Product{}, nil
	}
	end := int64(len(list))
	if q.Limit > 0 && q.Limit < end-skip {
		end = skip + q.Limit
	}
	return list[skip:end], nil
}

// Insert assigns a new ObjectID and stores the product.
func (s *inMemory) Insert(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(product.Name, primitive.NilObjectID) {
		return nil, errors.ErrNameConflict
	}
	product.ID = primitive.NewObjectID()
	s.products[product.ID] = product

	return &product, nil
}

// Replace overwrites an existing product, keeping its ID.
func (s *inMemory) Replace(_ context.Context, id primitive.ObjectID, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errors.ErrProductNotFound
	}
	if s.nameTaken(product.Name, id) {
		return errors.ErrNameConflict
	}
	product.ID = id
	s.products[id] = product
	return nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// nameTaken reports whether a product other than except already uses name. Caller holds the lock.
func (s *inMemory) nameTaken(name string, except primitive.ObjectID) bool {
	for id, p := range s.products {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}
