// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/internal/service"
	"github.com/abgdnv/producthub/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10
	productsPath      = "/api/v1/products"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service service.ProductService
	ready   Pinger
	logger  *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
// ready backs GET /readyz and may be nil.
func NewHandler(service service.ProductService, ready Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		ready:   ready,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(productsPath, func(r chi.Router) {
		r.Get("/", h.Search)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// Search returns one page of products.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	pageNumber, ok := web.ParseIntQuery(w, r, h.logger, "pageNumber", defaultPageNumber)
	if !ok {
		return
	}
	pageSize, ok := web.ParseIntQuery(w, r, h.logger, "pageSize", defaultPageSize)
	if !ok {
		return
	}
	params := service.SearchParams{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		SearchTerm: r.URL.Query().Get("searchTerm"),
		Sort:       r.URL.Query().Get("sort"),
	}
	h.logger.DebugContext(r.Context(), "Received request to search products", "params", params)

	list, err := h.service.Search(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product page", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, ok, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product")
		return
	}
	if !ok {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, producterrors.ErrProductNotFound.Error())
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "name", fields.Name)

	created, err := h.service.Create(r.Context(), fields)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	w.Header().Set("Location", productsPath+"/"+created.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update replaces every field of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	updated, err := h.service.Update(r.Context(), id, fields)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck answers 503 while the store is unreachable.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready.Ping(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Store is not reachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (service.ProductFieldsDto, bool) {
	var fields service.ProductFieldsDto
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return fields, false
	}
	return fields, true
}

// respondServiceError maps a service error to its HTTP status.
// Unclassified errors are logged and answered with fallback, without details.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		validationErr *producterrors.ValidationError
		paramErr      *producterrors.InvalidParameterError
		duplicateErr  *producterrors.DuplicateNameError
	)
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields())
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": validationErr.Fields()})
	case errors.Is(err, producterrors.ErrInvalidIdentifier):
		h.logger.WarnContext(r.Context(), "Invalid product id", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, producterrors.ErrInvalidIdentifier.Error())
	case errors.As(err, &paramErr):
		h.logger.WarnContext(r.Context(), "Invalid search parameter", "parameter", paramErr.Parameter, "value", paramErr.Value)
		web.RespondError(w, h.logger, http.StatusBadRequest, paramErr.Error())
	case errors.As(err, &duplicateErr):
		h.logger.WarnContext(r.Context(), "Duplicate product name", "name", duplicateErr.Name)
		web.RespondError(w, h.logger, http.StatusConflict, duplicateErr.Error())
	case errors.Is(err, producterrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, h.logger, http.StatusNotFound, producterrors.ErrProductNotFound.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		h.logger.ErrorContext(r.Context(), "Store circuit breaker is open", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		h.logger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}
