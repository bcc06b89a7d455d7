// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	producterrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/internal/store"
	"github.com/abgdnv/producthub/pkg/messaging"
	"github.com/abgdnv/producthub/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create validates and stores a new product.
	// Returns *ValidationError or *DuplicateNameError when the fields are rejected.
	Create(ctx context.Context, fields ProductFieldsDto) (*ProductDto, error)

	// FindByID retrieves a single product by its id token.
	// Returns ErrInvalidIdentifier for a malformed token; found is false when no product has the id.
	FindByID(ctx context.Context, id string) (product *ProductDto, found bool, err error)

	// Search returns one page of products.
	// Returns *InvalidParameterError for bad paging or sort values, and an empty slice when nothing matches.
	Search(ctx context.Context, params SearchParams) ([]ProductDto, error)

	// Update replaces every field of an existing product.
	// Returns *ValidationError, ErrInvalidIdentifier or ErrProductNotFound, checked in that order,
	// and *DuplicateNameError when the new name belongs to another product.
	Update(ctx context.Context, id string, fields ProductFieldsDto) (*ProductDto, error)

	// DeleteByID removes a product.
	// Returns ErrInvalidIdentifier or ErrProductNotFound.
	DeleteByID(ctx context.Context, id string) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository       store.ProductStore
	validator        *Validator
	publisher        messaging.Publisher
	mutationsCounter metric.Int64Counter
	logger           *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("producthub")
	mutationsCounter, err := meter.Int64Counter("products_mutations", metric.WithDescription("Total number of product writes by operation"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_mutations counter: %v", err))
	}
	return &Service{
		repository:       repo,
		validator:        NewValidator(),
		publisher:        publisher,
		mutationsCounter: mutationsCounter,
		logger:           logger.With("component", "service"),
	}
}

// ProductFieldsDto carries every client-supplied field of a product, for create and update.
type ProductFieldsDto struct {
	Name        string          `json:"name"        validate:"required,notblank"`
	Description string          `json:"description" validate:"required,notblank"`
	Price       decimal.Decimal `json:"price"       validate:"dpositive,decimal128"`
	Units       int             `json:"units"       validate:"required,gt=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Units       int             `json:"units"`
}

// Create validates fields, rejects a taken name and inserts the product.
func (s *Service) Create(ctx context.Context, fields ProductFieldsDto) (*ProductDto, error) {
	if violations := s.validator.Validate(fields); len(violations) > 0 {
		return nil, &producterrors.ValidationError{Violations: violations}
	}

	_, err := s.repository.FindByName(ctx, fields.Name)
	switch {
	case err == nil:
		return nil, &producterrors.DuplicateNameError{Name: fields.Name}
	case !errors.Is(err, producterrors.ErrProductNotFound):
		return nil, fmt.Errorf("failed to check product name %q: %w", fields.Name, err)
	}

	created, err := s.repository.Insert(ctx, toProduct(primitive.NilObjectID, fields))
	if err != nil {
		switch {
		case errors.Is(err, producterrors.ErrNameConflict):
			return nil, &producterrors.DuplicateNameError{Name: fields.Name}
		case errors.Is(err, producterrors.ErrUnencodablePrice):
			return nil, priceNotStorable()
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := toDto(created)
	s.recordMutation(ctx, "create")
	s.publish(ctx, events.ProductCreatedEvent{Product: toSnapshot(dto), OccurredAt: time.Now().UTC()})
	return dto, nil
}

// FindByID retrieves a product by its id token.
// A well-formed id with no product is reported as found=false, not as an error.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, false, err
	}

	product, err := s.repository.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), true, nil
}

// Search translates params and returns the matching page.
func (s *Service) Search(ctx context.Context, params SearchParams) ([]ProductDto, error) {
	query, err := TranslateQuery(params)
	if err != nil {
		return nil, err
	}

	products, err := s.repository.FindPage(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Update validates fields, checks the id and its existence, then replaces the stored product.
func (s *Service) Update(ctx context.Context, id string, fields ProductFieldsDto) (*ProductDto, error) {
	if violations := s.validator.Validate(fields); len(violations) > 0 {
		return nil, &producterrors.ValidationError{Violations: violations}
	}

	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.repository.FindByID(ctx, oid); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			return nil, producterrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	updated := toProduct(oid, fields)
	if err := s.repository.Replace(ctx, oid, updated); err != nil {
		switch {
		case errors.Is(err, producterrors.ErrProductNotFound):
			return nil, producterrors.ErrProductNotFound
		case errors.Is(err, producterrors.ErrNameConflict):
			return nil, &producterrors.DuplicateNameError{Name: fields.Name}
		case errors.Is(err, producterrors.ErrUnencodablePrice):
			return nil, priceNotStorable()
		}
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	dto := toDto(&updated)
	s.recordMutation(ctx, "update")
	s.publish(ctx, events.ProductUpdatedEvent{Product: toSnapshot(dto), OccurredAt: time.Now().UTC()})
	return dto, nil
}

// DeleteByID checks the id and its existence, then deletes the product.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	if _, err := s.repository.FindByID(ctx, oid); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			return producterrors.ErrProductNotFound
		}
		return fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	if err := s.repository.DeleteByID(ctx, oid); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			return producterrors.ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.recordMutation(ctx, "delete")
	s.publish(ctx, events.ProductDeletedEvent{ProductID: oid.Hex(), OccurredAt: time.Now().UTC()})
	return nil
}

func (s *Service) recordMutation(ctx context.Context, operation string) {
	s.mutationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// publish logs a failed publish instead of returning it, since the write has already happened.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

func priceNotStorable() *producterrors.ValidationError {
	return &producterrors.ValidationError{Violations: []producterrors.Violation{
		{Field: "price", Message: violationMessages["price.decimal128"]},
	}}
}

// toProduct builds the stored shape of fields under id.
func toProduct(id primitive.ObjectID, fields ProductFieldsDto) store.Product {
	return store.Product{
		ID:          id,
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Units:       fields.Units,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.Hex(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Units:       product.Units,
	}
}

func toSnapshot(dto *ProductDto) events.ProductSnapshot {
	return events.ProductSnapshot{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		Price:       dto.Price.String(),
		Units:       dto.Units,
	}
}
