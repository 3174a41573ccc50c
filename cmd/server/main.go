package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"heirloom.backend/internal/config"
	"heirloom.backend/internal/infrastructure/blockchain"
	"heirloom.backend/internal/infrastructure/datasources"
	"heirloom.backend/internal/infrastructure/jobs"
	"heirloom.backend/internal/infrastructure/notification"
	"heirloom.backend/internal/infrastructure/repositories"
	"heirloom.backend/internal/interfaces/http/handlers"
	"heirloom.backend/internal/interfaces/http/middleware"
	"heirloom.backend/internal/usecases"
	"heirloom.backend/pkg/jwt"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
	"heirloom.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = datasources.NewConnection
	runServer  = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis is optional; without it locks are in-process and idempotency is off
	var locker usecases.Locker = usecases.NewLocalLocker()
	if cfg.Redis.Enabled() {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		locker = redis.NewLocker(redis.GetClient(), "lock:", cfg.Inheritance.DisbursementLockTTL)
		logger.Info(context.Background(), "Redis initialized")
	} else {
		logger.Warn(context.Background(), "REDIS_URL not set, using in-process locks")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	logger.Info(context.Background(), "Database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("autoMigrate", cfg.Database.AutoMigrate),
	)

	app, err := buildApp(cfg, db, locker)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	sweepJob := jobs.NewAccessTokenSweepJob(app.beneficiaryRepo, cfg.Inheritance.TokenSweepInterval)
	go sweepJob.Start(ctx)
	defer sweepJob.Stop()

	messageJob := jobs.NewScheduledMessageJob(app.messageRepo, cfg.Inheritance.MessageInterval)
	go messageJob.Start(ctx)
	defer messageJob.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "Heirloom backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(app.router.Routes())),
	)
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}

type application struct {
	router          *gin.Engine
	beneficiaryRepo *repositories.BeneficiaryRepository
	messageRepo     *repositories.MessageRepository
}

func buildApp(cfg *config.Config, db *gorm.DB, locker usecases.Locker) (*application, error) {
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	addresses, err := blockchain.NewAddressRegistry(cfg.Wallets.BitcoinNetwork)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize address registry: %w", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	assetRepo := repositories.NewAssetRepository(db)
	cryptoAssetRepo := repositories.NewCryptoAssetRepository(db)
	beneficiaryRepo := repositories.NewBeneficiaryRepository(db)
	allocationRepo := repositories.NewAllocationRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	accessLogRepo := repositories.NewAccessLogRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize usecases
	var clock usecases.Clock
	authUsecase := usecases.NewAuthUsecase(userRepo, beneficiaryRepo, jwtService, clock)
	assetUsecase := usecases.NewAssetUsecase(assetRepo, cryptoAssetRepo, allocationRepo, addresses, uow, clock)
	beneficiaryUsecase := usecases.NewBeneficiaryUsecase(beneficiaryRepo, userRepo, allocationRepo, clock)
	allocationUsecase := usecases.NewAllocationUsecase(cryptoAssetRepo, beneficiaryRepo, allocationRepo, uow, locker, clock)
	disbursementUsecase := usecases.NewDisbursementUsecase(userRepo, assetRepo, cryptoAssetRepo, beneficiaryRepo, allocationRepo, uow, locker, clock)
	inheritanceUsecase := usecases.NewInheritanceUsecase(
		userRepo, beneficiaryRepo, cryptoAssetRepo, messageRepo, disbursementUsecase,
		notification.NewLogNotifier(), uow,
		cfg.Inheritance.AccessTokenTTL, cfg.Inheritance.AccessURLBase, clock,
	)
	verificationUsecase := usecases.NewVerificationUsecase(
		verificationRepo, userRepo, beneficiaryRepo, inheritanceUsecase, uow,
		usecases.VerificationSettings{
			DocumentStorageRoot: cfg.Inheritance.DocumentStorageRoot,
			AutoApproveClaims:   cfg.Inheritance.AutoApproveClaims,
		},
		clock,
	)
	accessUsecase := usecases.NewBeneficiaryAccessUsecase(beneficiaryRepo, userRepo, allocationRepo, accessLogRepo, messageRepo, clock)
	messageUsecase := usecases.NewMessageUsecase(messageRepo, beneficiaryRepo, clock)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.Middleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:              handlers.NewAuthHandler(authUsecase),
		assetHandler:             handlers.NewAssetHandler(assetUsecase),
		cryptoHandler:            handlers.NewCryptoHandler(assetUsecase, allocationUsecase, disbursementUsecase),
		beneficiaryHandler:       handlers.NewBeneficiaryHandler(beneficiaryUsecase),
		verificationHandler:      handlers.NewVerificationHandler(verificationUsecase),
		beneficiaryAccessHandler: handlers.NewBeneficiaryAccessHandler(accessUsecase),
		messageHandler:           handlers.NewMessageHandler(messageUsecase),
		authMiddleware:           middleware.AuthMiddleware(jwtService),
		adminMiddleware:          middleware.RequireAdmin(),
		idempotencyMiddleware:    middleware.IdempotencyMiddleware(),
	})

	return &application{router: r, beneficiaryRepo: beneficiaryRepo, messageRepo: messageRepo}, nil
}
