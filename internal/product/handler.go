package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
)

// Handler contains the HTTP handlers for products.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ProductRequest is the create/update body.
type ProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Create stores a new product
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProductRequest true "Product fields"
// @Success      201 {object} Product
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /api/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := account.ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(r.Context(), claims.AccountID, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		if errors.Is(err, ErrTitleRequired) || errors.Is(err, ErrInvalidPrice) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create product", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create product", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("product created", "product_id", p.ID)

	httputil.RespondJSON(w, p, http.StatusCreated)
}

// Get returns one product
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product id"
// @Success      200 {object} Product
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "product not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get product", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get product", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// List returns a page of products
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number (1-based)"
// @Param        limit query int false "Page size"
// @Success      200 {array} Product
// @Router       /api/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		logger.Error("failed to list products", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list products", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, products, http.StatusOK)
}

// Update modifies a product
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product id"
// @Param        request body ProductRequest true "Product fields"
// @Success      200 {object} Product
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, ok := account.ClaimsFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), claims, id, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired) || errors.Is(err, ErrInvalidPrice):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		case errors.Is(err, account.ErrForbidden):
			logger.Warn("product update forbidden", "product_id", id)
			httputil.RespondErrorWithCode(w, "you can only update your own products", httputil.CodeForbidden, http.StatusForbidden)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "product not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update product", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update product", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("product updated", "product_id", p.ID)

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Delete removes a product
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "product not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete product", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete product", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("product deleted", "product_id", id)

	httputil.RespondJSON(w, map[string]string{"message": "product deleted"}, http.StatusOK)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid product id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
