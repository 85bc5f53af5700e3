package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/pharmacy/backend/internal/application/cart"
	catalogapp "github.com/pharmacy/backend/internal/application/catalog"
	checkoutapp "github.com/pharmacy/backend/internal/application/checkout"
	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
	orderapp "github.com/pharmacy/backend/internal/application/order"
	paymentapp "github.com/pharmacy/backend/internal/application/payment"
	prescriptionapp "github.com/pharmacy/backend/internal/application/prescription"
	"github.com/pharmacy/backend/internal/infrastructure/auth"
	"github.com/pharmacy/backend/internal/infrastructure/cache"
	"github.com/pharmacy/backend/internal/infrastructure/config"
	"github.com/pharmacy/backend/internal/infrastructure/invoice"
	"github.com/pharmacy/backend/internal/infrastructure/logger"
	"github.com/pharmacy/backend/internal/infrastructure/notification"
	"github.com/pharmacy/backend/internal/infrastructure/payment"
	"github.com/pharmacy/backend/internal/infrastructure/persistence"
	"github.com/pharmacy/backend/internal/infrastructure/storage"
	"github.com/pharmacy/backend/internal/interfaces/http/handler"
	"github.com/pharmacy/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	gormLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize Redis connection
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	prescriptionRepo := persistence.NewGormPrescriptionRepository(db.DB)
	cartShadowRepo := persistence.NewGormCartShadowRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Redis-backed stores
	cartStore := cache.NewRedisCartStore(redisClient, cfg.Cart.TTL)
	sessionStore := cache.NewRedisSessionStore(redisClient)
	idempotencyStore := cache.NewRedisIdempotencyStore(redisClient, "")

	// Payment gateway
	gateway, err := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Prescription file storage
	var fileStorage prescriptionapp.FileStorage
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3Storage(cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		fileStorage = s3Storage
	} else {
		log.Warn("Using in-memory prescription storage; uploaded files will not survive a restart")
		fileStorage = storage.NewStubStorage()
	}

	// Notification dispatcher
	dispatcher := notification.NewDispatcher(notification.NewLogSender(log), userRepo, notification.DispatcherConfig{
		QueueSize: cfg.Notification.QueueSize,
		Workers:   cfg.Notification.Workers,
	}, log)
	defer dispatcher.Close()

	invoiceRenderer := invoice.NewHTMLRenderer(productRepo)

	// Initialize application services
	catalogService := catalogapp.NewService(productRepo, log)
	inventoryService := inventoryapp.NewService(batchRepo, productRepo, log)
	cartService := cartapp.NewService(cartStore, cartShadowRepo, productRepo, inventoryService, log)
	checkoutService := checkoutapp.NewService(checkoutapp.ServiceConfig{
		Cart:       cartService,
		Sessions:   sessionStore,
		TxScope:    persistence.NewGormCheckoutTransactionScope(db),
		SessionTTL: cfg.Checkout.SessionTTL,
		Logger:     log,
	})
	paymentService := paymentapp.NewService(paymentapp.ServiceConfig{
		Gateway:     gateway,
		Orders:      orderRepo,
		TxScope:     persistence.NewGormPaymentTransactionScope(db),
		Idempotency: idempotencyStore,
		Sessions:    sessionStore,
		Cart:        cartService,
		Notifier:    dispatcher,
		Invoices:    invoiceRenderer,
		Currency:    cfg.Stripe.Currency,
		Logger:      log,
	})
	orderService := orderapp.NewService(orderRepo, paymentService, log)
	prescriptionService := prescriptionapp.NewService(prescriptionapp.ServiceConfig{
		Prescriptions: prescriptionRepo,
		Orders:        orderRepo,
		TxScope:       persistence.NewGormPrescriptionTransactionScope(db),
		Storage:       fileStorage,
		Notifier:      dispatcher,
		URLExpiry:     cfg.Storage.URLExpiry,
		Logger:        log,
	})

	jwtService := auth.NewJWTService(cfg.JWT)

	// Build the HTTP engine
	engine := router.New(router.Config{
		Logger:        log,
		JWTService:    jwtService,
		Products:      handler.NewProductHandler(catalogService, inventoryService),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Cart:          handler.NewCartHandler(cartService),
		Checkout:      handler.NewCheckoutHandler(checkoutService),
		Orders:        handler.NewOrderHandler(orderService),
		Prescriptions: handler.NewPrescriptionHandler(prescriptionService),
		Payments:      handler.NewPaymentHandler(paymentService, gateway, log),
	})
	engine.MaxMultipartMemory = cfg.HTTP.MaxBodySize
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// drain background cart shadow writes before the database closes
	cartService.WaitShadowSync()

	log.Info("Server exited gracefully")
}
