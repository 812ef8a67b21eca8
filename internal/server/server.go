package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/localization"
	custommiddleware "shopfront/internal/middleware"
	"shopfront/internal/service"
	"shopfront/internal/storage"
	"shopfront/internal/translation"
	"shopfront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	rdb    *redis.Client
}

// NewServer wires the storefront core: durable KV storage, catalog and
// translation clients, localization pipeline, per-session carts, and the
// HTTP surface on top.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, rdb *redis.Client) *Server {
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Durable storage
	kv := storage.NewRedisKV(rdb)

	// Remote collaborators
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	translator := translation.NewHTTPTranslator(cfg.Translation.Endpoint, cfg.Translation.Timeout)

	// Translation cache, restored once at startup
	translationCache := translation.NewCache(kv, logger)
	translationCache.Load(ctx)
	cachedTranslator := translation.NewCachedTranslator(translationCache, translator)

	// Core components
	pipeline := localization.NewPipeline(catalogClient, cachedTranslator, cfg.Localization.CanonicalLanguage, logger)
	carts := cart.NewManager(kv, logger)

	// Service and handlers
	storefront := service.NewStorefront(catalogClient, pipeline, carts, translationCache, logger)
	storefrontHandler := transport.NewStorefrontHandler(storefront, logger)
	cartHandler := transport.NewCartHandler(storefront, logger)

	storefrontHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		rdb:    rdb,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
