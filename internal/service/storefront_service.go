package service

import (
	"context"
	"errors"
	"fmt"

	"shopfront/internal/cart"
	"shopfront/internal/domain"
	"shopfront/internal/localization"
	"shopfront/internal/stock"
	"shopfront/internal/translation"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// CatalogSource provides read-only catalog snapshots.
type CatalogSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// ProductView is a localized entry annotated with availability derived
// fresh from the shopper's cart at render time.
type ProductView struct {
	domain.LocalizedProduct
	Available  int  `json:"available"`
	OutOfStock bool `json:"out_of_stock"`
	LowStock   bool `json:"low_stock"`
}

// Listing is one rendered product list: localized entries plus the
// language actually shown (canonical when translation fell back).
type Listing struct {
	Products []ProductView `json:"products"`
	Language string        `json:"language"`
	Fallback bool          `json:"fallback"`
}

// Storefront defines the shopper-facing business operations
type Storefront interface {
	ListProducts(ctx context.Context, lang, sessionID string) (*Listing, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCart(ctx context.Context, sessionID string) (domain.CartState, error)
	AddToCart(ctx context.Context, sessionID string, productID int64, quantity int) (domain.CartState, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (domain.CartState, error)
	RemoveFromCart(ctx context.Context, sessionID string, productID int64) (domain.CartState, error)
	ClearCart(ctx context.Context, sessionID string) (domain.CartState, error)
	ClearTranslations(ctx context.Context)
}

type storefrontService struct {
	catalog      CatalogSource
	pipeline     *localization.Pipeline
	carts        *cart.Manager
	translations *translation.Cache
	logger       *zap.Logger
}

// NewStorefront creates a new instance of Storefront
func NewStorefront(
	catalog CatalogSource,
	pipeline *localization.Pipeline,
	carts *cart.Manager,
	translations *translation.Cache,
	logger *zap.Logger,
) Storefront {
	return &storefrontService{
		catalog:      catalog,
		pipeline:     pipeline,
		carts:        carts,
		translations: translations,
		logger:       logger,
	}
}

// ListProducts runs the localization pipeline and annotates each entry
// with availability computed against the session's cart.
func (s *storefrontService) ListProducts(ctx context.Context, lang, sessionID string) (*Listing, error) {
	if lang == "" {
		lang = s.pipeline.CanonicalLanguage()
	}

	result, err := s.pipeline.Run(ctx, lang)
	if err != nil {
		return nil, err
	}

	state := s.carts.Store(ctx, sessionID).State()
	views := make([]ProductView, 0, len(result.Entries))
	for _, entry := range result.Entries {
		// Availability only depends on ID and stock; reconstruct the
		// minimal product shape the calculator needs.
		p := domain.Product{ID: entry.ID, Stock: entry.Stock}
		views = append(views, ProductView{
			LocalizedProduct: entry,
			Available:        stock.Available(p, state),
			OutOfStock:       stock.IsOutOfStock(p, state),
			LowStock:         stock.IsLowStock(p, state),
		})
	}

	return &Listing{Products: views, Language: result.Language, Fallback: result.Fallback}, nil
}

// ListCategories passes category records straight through.
func (s *storefrontService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCart returns the session's current cart state.
func (s *storefrontService) GetCart(ctx context.Context, sessionID string) (domain.CartState, error) {
	return s.carts.Store(ctx, sessionID).State(), nil
}

// AddToCart adds the requested quantity of a product, rejecting the whole
// request when fewer units remain than asked for. The stock gate lives
// here, before any cart transition; the cart store itself never checks.
func (s *storefrontService) AddToCart(ctx context.Context, sessionID string, productID int64, quantity int) (domain.CartState, error) {
	if quantity < 1 {
		return domain.CartState{}, ErrInvalidQuantity
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return domain.CartState{}, err
	}

	store := s.carts.Store(ctx, sessionID)
	if !stock.CanAdd(*product, store.State(), quantity) {
		return domain.CartState{}, ErrInsufficientStock
	}

	item := domain.CartItem{
		ProductID:  product.ID,
		Title:      product.Title,
		ImageURL:   product.ImageURL,
		UnitPrice:  domain.MinorUnits(product.Price),
		CategoryID: product.CategoryID,
	}
	for i := 0; i < quantity; i++ {
		store.AddItem(ctx, item)
	}

	return store.State(), nil
}

// UpdateQuantity sets an absolute line quantity. Increases are gated on
// remaining stock; decreases and removals always succeed.
func (s *storefrontService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (domain.CartState, error) {
	store := s.carts.Store(ctx, sessionID)

	// Only increases need the catalog: the stock gate applies to the extra
	// units, and lowering a line must keep working when the catalog is
	// unreachable or the product was delisted.
	state := store.State()
	if delta := quantity - state.QuantityOf(productID); delta > 0 {
		product, err := s.findProduct(ctx, productID)
		if err != nil {
			return domain.CartState{}, err
		}
		if !stock.CanAdd(*product, state, delta) {
			return domain.CartState{}, ErrInsufficientStock
		}
	}

	store.UpdateQuantity(ctx, productID, quantity)
	return store.State(), nil
}

// RemoveFromCart deletes one line from the session's cart.
func (s *storefrontService) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (domain.CartState, error) {
	store := s.carts.Store(ctx, sessionID)
	store.RemoveItem(ctx, productID)
	return store.State(), nil
}

// ClearCart resets the session's cart to the empty state.
func (s *storefrontService) ClearCart(ctx context.Context, sessionID string) (domain.CartState, error) {
	store := s.carts.Store(ctx, sessionID)
	store.Clear(ctx)
	return store.State(), nil
}

// ClearTranslations wipes the memoized translations wholesale.
func (s *storefrontService) ClearTranslations(ctx context.Context) {
	s.translations.Clear(ctx)
}

func (s *storefrontService) findProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	for i := range products {
		if products[i].ID == productID && products[i].Published {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}
