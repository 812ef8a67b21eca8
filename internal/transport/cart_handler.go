package transport

import (
	"errors"
	"net/http"
	"strconv"

	"shopfront/internal/middleware"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart request payload
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest represents the quantity update payload. Zero is
// valid and removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	storefront service.Storefront
	logger     *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(storefront service.Storefront, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		storefront: storefront,
		logger:     logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// GetCart returns the session's current cart state
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := shopperSession(w, r)

	state, err := h.storefront.GetCart(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to read cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, state)
}

// AddItem adds units of a product to the cart, gated on remaining stock
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := shopperSession(w, r)
	state, err := h.storefront.AddToCart(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "add to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, state)
}

// UpdateQuantity sets the absolute quantity of one cart line
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := shopperSession(w, r)
	state, err := h.storefront.UpdateQuantity(r.Context(), sessionID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "update quantity")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, state)
}

// RemoveItem deletes one line from the cart; absent lines are a no-op
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	sessionID := shopperSession(w, r)
	state, err := h.storefront.RemoveFromCart(r.Context(), sessionID, productID)
	if err != nil {
		h.respondCartError(w, err, "remove item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, state)
}

// ClearCart resets the cart to the empty state
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := shopperSession(w, r)

	state, err := h.storefront.ClearCart(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, state)
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, "not enough stock remaining")
	case errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
	default:
		h.logger.Error("Cart operation failed", zap.String("op", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "catalog temporarily unavailable")
	}
}
