package transport

import (
	"errors"
	"net/http"

	"shopfront/internal/localization"
	"shopfront/internal/middleware"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StorefrontHandler handles HTTP requests for catalog listing surfaces
type StorefrontHandler struct {
	storefront service.Storefront
	logger     *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront service.Storefront, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: storefront,
		logger:     logger,
	}
}

// RegisterRoutes registers catalog and localization routes
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/categories", h.ListCategories)
		r.Delete("/translations", h.ClearTranslations)
	})
}

// ListProducts returns the localized product listing with availability.
// The display language comes from the lang query parameter; the catalog's
// canonical language is used when absent.
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	sessionID := shopperSession(w, r)

	listing, err := h.storefront.ListProducts(r.Context(), lang, sessionID)
	if err != nil {
		if errors.Is(err, localization.ErrSuperseded) {
			middleware.RespondWithError(w, http.StatusConflict, "listing superseded, retry")
			return
		}
		h.logger.Error("Failed to list products", zap.String("lang", lang), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "catalog temporarily unavailable")
		return
	}

	if listing.Fallback {
		h.logger.Warn("Serving canonical-language listing after translation failure",
			zap.String("requested_lang", lang))
	}

	middleware.RespondWithJSON(w, http.StatusOK, listing)
}

// ListCategories returns the category records
func (h *StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.storefront.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "catalog temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ClearTranslations wipes the memoized translation cache wholesale
func (h *StorefrontHandler) ClearTranslations(w http.ResponseWriter, r *http.Request) {
	h.storefront.ClearTranslations(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
