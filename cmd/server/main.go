package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	identityapp "github.com/bartab/backend/internal/application/identity"
	ledgerapp "github.com/bartab/backend/internal/application/ledger"
	settlementapp "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/bartab/backend/internal/infrastructure/auth"
	"github.com/bartab/backend/internal/infrastructure/cache"
	"github.com/bartab/backend/internal/infrastructure/config"
	"github.com/bartab/backend/internal/infrastructure/docs"
	"github.com/bartab/backend/internal/infrastructure/event"
	"github.com/bartab/backend/internal/infrastructure/logger"
	"github.com/bartab/backend/internal/infrastructure/persistence"
	"github.com/bartab/backend/internal/infrastructure/storage"
	"github.com/bartab/backend/internal/infrastructure/telemetry"
	"github.com/bartab/backend/internal/interfaces/http/handler"
	"github.com/bartab/backend/internal/interfaces/http/middleware"
	"github.com/bartab/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting bartab backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down meter provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Fatal("failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("database connected")

	currency := valueobject.Currency(cfg.Ledger.Currency)
	balanceFloor, err := valueobject.NewMoney(cfg.Ledger.BalanceFloor, currency)
	if err != nil {
		log.Fatal("invalid balance floor", zap.Error(err))
	}

	// repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	containerRepo := persistence.NewGormContainerRepository(db.DB)
	posRepo := persistence.NewGormPointOfSaleRepository(db.DB)
	vatGroupRepo := persistence.NewGormVatGroupRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB, currency)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	voucherGroupRepo := persistence.NewGormVoucherGroupRepository(db.DB)

	catalogScope := persistence.NewGormCatalogTransactionScope(db.DB)
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB, currency)
	settlementScope := persistence.NewGormSettlementTransactionScope(db.DB)

	// balance cache, invalidated by ledger events
	var balanceCache ledgerapp.BalanceCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisBalanceCache(cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("error closing redis cache", zap.Error(err))
			}
		}()
		balanceCache = redisCache
		log.Info("redis balance cache enabled")
	} else {
		balanceCache = cache.NewInMemoryBalanceCache(5 * time.Minute)
		log.Info("in-memory balance cache enabled")
	}

	eventBus := event.NewInMemoryEventBus(log)
	invalidation := cache.NewBalanceInvalidationHandler(balanceCache, log)
	eventBus.Subscribe(invalidation, invalidation.EventTypes()...)

	// object storage for product images
	var objectStorage catalogapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Info("object storage disabled, serving placeholder URLs")
	}

	renderer := docs.NewChromedpRenderer(cfg.Docs, log)
	defer func() {
		_ = renderer.Close()
	}()

	// application services
	userService := identityapp.NewUserService(userRepo, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, vatGroupRepo, categoryRepo, catalogScope)
	imageService := catalogapp.NewProductImageService(productRepo, objectStorage)
	containerService := catalogapp.NewContainerService(containerRepo, productRepo, catalogScope)
	posService := catalogapp.NewPointOfSaleService(posRepo, containerRepo, catalogScope)
	vatGroupService := catalogapp.NewVatGroupService(vatGroupRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	transactionService := ledgerapp.NewTransactionService(transactionRepo, snapshotRepo, userRepo, ledgerScope, eventBus, balanceFloor, log)
	transferService := ledgerapp.NewTransferService(transferRepo, userRepo, ledgerScope, eventBus, log)
	balanceService := ledgerapp.NewBalanceService(balanceRepo, balanceCache, log)
	invoiceService := settlementapp.NewInvoiceService(invoiceRepo, userRepo, productRepo, settlementScope, eventBus, renderer, log)
	voucherService := settlementapp.NewVoucherGroupService(voucherGroupRepo, userRepo, settlementScope, eventBus, log)

	// expired voucher groups are closed in the background
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Scheduler.Enabled {
		go sweepExpiredVoucherGroups(schedulerCtx, voucherService, cfg.Scheduler.VoucherSweepPeriod, log)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.CORS(cfg.HTTP))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
		engine.Use(middleware.HTTPMetrics(meterProvider))
	}

	verifier := auth.NewTokenVerifier(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect token blacklist", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("error closing token blacklist", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
	}

	r := router.New(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Authentication(verifier, blacklist, log, middleware.AuthConfig{
		SkipPaths: []string{
			"/api/v1/system/health",
			"/api/v1/system/info",
		},
	}))

	r.Register(handler.NewSystemHandler(db.DB)).
		Register(handler.NewUserHandler(userService)).
		Register(handler.NewProductHandler(productService, imageService)).
		Register(handler.NewContainerHandler(containerService)).
		Register(handler.NewPointOfSaleHandler(posService)).
		Register(handler.NewVatGroupHandler(vatGroupService)).
		Register(handler.NewCategoryHandler(categoryService)).
		Register(handler.NewTransactionHandler(transactionService)).
		Register(handler.NewTransferHandler(transferService)).
		Register(handler.NewBalanceHandler(balanceService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewVoucherGroupHandler(voucherService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	stopScheduler()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// sweepExpiredVoucherGroups periodically closes voucher groups whose
// active window has passed, refunding leftover balances
func sweepExpiredVoucherGroups(ctx context.Context, service *settlementapp.VoucherGroupService, period time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			closed, err := service.CloseExpiredVoucherGroups(ctx, now)
			if err != nil {
				log.Error("voucher sweep failed", zap.Error(err))
				continue
			}
			if closed > 0 {
				log.Info("closed expired voucher groups", zap.Int("count", closed))
			}
		}
	}
}
