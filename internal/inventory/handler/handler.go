// Package handler provides HTTP handlers for inventory operations.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided service.
func NewHandler(service service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Get("/search", h.Search)
		r.Get("/stats", h.Stats)
		r.Delete("/{id}", h.Remove)
	})
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/save", h.Save)
		r.Post("/load", h.Load)
	})

	r.Get("/healthz", h.HealthCheck)
}

// removeResponse reports how many products a remove deleted.
type removeResponse struct {
	Removed int `json:"removed"`
}

// List returns every product in insertion order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list := h.service.List(r.Context())
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Add handles the creation of a new product from a JSON body or an HTML form.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to add product", "product", input)
	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	added, err := h.service.Add(r.Context(), input)
	if err != nil {
		if errors.Is(err, inverrors.ErrInvalidInput) {
			web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error adding product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to add product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusCreated, added)
}

// decodeInput reads a ProductInput from the request body.
// Form fields arrive as text and go through inventory.ParseProduct.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (inventory.ProductInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			h.logger.WarnContext(r.Context(), "Error parsing form", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return inventory.ProductInput{}, false
		}
		input, err := inventory.ParseProduct(inventory.RawProduct{
			ID:       r.PostForm.Get("id"),
			Name:     r.PostForm.Get("name"),
			Category: r.PostForm.Get("category"),
			Quantity: r.PostForm.Get("quantity"),
			Price:    r.PostForm.Get("price"),
		})
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid form fields", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
			return inventory.ProductInput{}, false
		}
		return input, true
	}

	var input inventory.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return inventory.ProductInput{}, false
	}
	return input, true
}

// Remove deletes every product with the id in the path.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	pathValueID := chi.URLParam(r, "id")
	id, err := strconv.Atoi(pathValueID)
	if err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid product ID: %s", pathValueID))
		return
	}

	removed, err := h.service.Remove(r.Context(), id)
	if err != nil {
		if errors.Is(err, inverrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for removal", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product not found with ID: %d", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error removing product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to remove product with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, removeResponse{Removed: removed})
}

// Search finds products by the name query parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	// Products always have a name, so an empty query is treated as a malformed request.
	if name == "" {
		web.RespondError(w, h.logger, http.StatusBadRequest, "name url parameter is required")
		return
	}

	result, err := h.service.Search(r.Context(), name)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Search aborted", "query", name, "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Search did not complete")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

// Stats returns the product count and average price.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.service.Stats(r.Context()))
}

// Save writes the inventory snapshot.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Save(r.Context()); err != nil {
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to save inventory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Load replaces the inventory with the saved snapshot.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Load(r.Context()); err != nil {
		if errors.Is(err, inverrors.ErrSnapshotFormat) {
			web.RespondError(w, h.logger, http.StatusUnprocessableEntity, "Saved inventory is unreadable")
			return
		}
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
