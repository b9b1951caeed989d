package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	apimiddleware "storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/api/router"
	"storefront/internal/adapter/repository"
	domainrepo "storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/imageprobe"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/infrastructure/storage"
	"storefront/internal/infrastructure/websocket"
	"storefront/internal/usecase"
	"storefront/internal/view"
	"storefront/pkg/config"
	"storefront/pkg/logger"
)

const (
	sessionSweepInterval = 10 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
	limiterSweepInterval = 30 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// devVerifier rejects every token; the memory backend has no identity
// provider, so the admin surface stays closed.
type devVerifier struct{}

func (devVerifier) VerifyToken(context.Context, string) (*firebase.Identity, error) {
	return nil, errors.New("token verification is not configured")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetDebug(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store    domainrepo.DocumentStore
		verifier apimiddleware.TokenVerifier = devVerifier{}
		files    service.FileUploadService
		opts     []option.ClientOption
	)

	switch cfg.StoreBackend {
	case config.BackendFirestore:
		opt, err := firebase.CredentialsOption(cfg.ServiceAccountJSON, cfg.ServiceAccountPath)
		if err != nil {
			log.Fatalf("Failed to resolve Firebase credentials: %v", err)
		}
		if opt != nil {
			opts = append(opts, opt)
		}

		clients, err := firebase.NewClients(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		defer clients.Close()

		store = repository.NewFirestoreDocumentStore(clients.Firestore)
		verifier = clients.Auth
	default:
		memory := repository.NewMemoryDocumentStore()
		repository.SeedDemoCatalog(memory)
		store = memory
		logger.Warn("Using in-memory product store with demo data")
	}

	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		files = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, image uploads are disabled")
	}

	snapshots, err := repository.NewSQLiteCartSnapshotRepository(cfg.CartDBPath, 4)
	if err != nil {
		log.Fatalf("Failed to open cart snapshot store: %v", err)
	}
	defer snapshots.Close()

	productRepo := repository.NewProductRepository(store)

	readiness := usecase.NewReadiness(store.Ping, cfg.ReadyTimeout)
	readiness.Start(ctx)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	cache := usecase.NewCatalogCache(productRepo, cfg.Locale)
	go func() {
		if err := readiness.Wait(ctx); err != nil {
			logger.Error("Catalog not hydrated: %v", err)
			return
		}
		if err := cache.Hydrate(ctx); err != nil {
			logger.Error("Initial catalog hydrate failed: %v", err)
			return
		}
		wsManager.Broadcast(service.ViewEvent{Type: service.EventCatalogChanged})
	}()

	var optimizer service.ImageOptimizer
	if files != nil {
		optimizer = storage.NewJPEGOptimizer()
	}

	sessions := usecase.NewSessionRegistry(usecase.SessionDeps{
		Products:    productRepo,
		Snapshots:   snapshots,
		Readiness:   readiness,
		Notifier:    wsManager,
		Prober:      imageprobe.NewHTTPProber(cfg.ImageProbeTimeout),
		Files:       files,
		Optimizer:   optimizer,
		ReadyWithin: cfg.ReadyTimeout,
	})
	go sessions.RunSweeper(ctx, sessionSweepInterval, sessionMaxIdle)

	admin := usecase.NewAdminMutator(productRepo, cache, files, wsManager)
	checkout := usecase.NewCheckoutMessage(cfg.CurrencySymbol, cfg.PostalCountry, cfg.OrderPhone)
	renderer := view.NewRenderer(cfg.CurrencySymbol)

	handler.Setup(cache, productRepo, admin, checkout, readiness, wsManager, renderer, cfg.CatalogPageSize)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanupRoutine(ctx, limiterSweepInterval, time.Hour)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.RateLimit(limiter))

	e.Validator = api.NewValidator()

	sessionMiddleware := apimiddleware.NewSessionMiddleware(sessions, !cfg.IsDevelopment())
	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware(cfg.AdminClaim)

	router.Setup(e, sessionMiddleware, authMiddleware, adminMiddleware)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	admin.Wait()
}
