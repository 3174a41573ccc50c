package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"heirloom.backend/internal/config"
	"heirloom.backend/internal/domain/entities"
	domainrepo "heirloom.backend/internal/domain/repositories"
	"heirloom.backend/internal/infrastructure/datasources"
	"heirloom.backend/internal/infrastructure/notification"
	"heirloom.backend/internal/infrastructure/repositories"
	"heirloom.backend/internal/usecases"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/redis"
)

type reviewRuntime interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	Approve(ctx context.Context, requestID uuid.UUID, reviewerID string) (*entities.ApprovalResult, error)
	Reject(ctx context.Context, requestID uuid.UUID, reviewerID string, reason string) (*entities.VerificationRequest, error)
}

type reviewDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (reviewRuntime, io.Closer, error)
	out     io.Writer
}

type reviewRuntimeImpl struct {
	userRepo domainrepo.UserRepository
	*usecases.VerificationUsecase
}

func (r reviewRuntimeImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return r.userRepo.GetByID(ctx, userID)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func prepareRuntime(cfg *config.Config) (reviewRuntime, io.Closer, error) {
	logger.Init(cfg.Server.Env)

	db, err := datasources.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}
	closers := []func() error{sqlDB.Close}

	// share the server's disbursement locks when Redis is configured
	var locker usecases.Locker = usecases.NewLocalLocker()
	if cfg.Redis.Enabled() {
		if err := redis.Init(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		locker = redis.NewLocker(redis.GetClient(), "lock:", cfg.Inheritance.DisbursementLockTTL)
		closers = append(closers, redis.Close)
	}

	userRepo := repositories.NewUserRepository(db)
	assetRepo := repositories.NewAssetRepository(db)
	cryptoAssetRepo := repositories.NewCryptoAssetRepository(db)
	beneficiaryRepo := repositories.NewBeneficiaryRepository(db)
	allocationRepo := repositories.NewAllocationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	disbursement := usecases.NewDisbursementUsecase(userRepo, assetRepo, cryptoAssetRepo, beneficiaryRepo, allocationRepo, uow, locker, nil)
	inheritance := usecases.NewInheritanceUsecase(
		userRepo, beneficiaryRepo, cryptoAssetRepo, repositories.NewMessageRepository(db), disbursement,
		notification.NewLogNotifier(), uow,
		cfg.Inheritance.AccessTokenTTL, cfg.Inheritance.AccessURLBase, nil,
	)
	verification := usecases.NewVerificationUsecase(
		repositories.NewVerificationRepository(db), userRepo, beneficiaryRepo, inheritance, uow,
		usecases.VerificationSettings{DocumentStorageRoot: cfg.Inheritance.DocumentStorageRoot},
		nil,
	)

	return reviewRuntimeImpl{userRepo: userRepo, VerificationUsecase: verification}, closerFunc(func() error {
		for _, c := range closers {
			_ = c()
		}
		logger.Sync()
		return nil
	}), nil
}

func defaultReviewDeps() reviewDeps {
	return reviewDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		out:     os.Stdout,
	}
}

type reviewArgs struct {
	requestID uuid.UUID
	action    string
	reviewer  uuid.UUID
	reason    string
}

func parseArgs(args []string) (reviewArgs, error) {
	fs := flag.NewFlagSet("verification-admin", flag.ContinueOnError)
	requestFlag := fs.String("request-id", "", "verification request UUID (required)")
	actionFlag := fs.String("action", "", "approve or reject (required)")
	reviewerFlag := fs.String("reviewer-id", "", "ADMIN user UUID; empty records the system reviewer")
	reasonFlag := fs.String("reason", "", "rejection reason (required for reject)")
	if err := fs.Parse(args); err != nil {
		return reviewArgs{}, err
	}

	if *requestFlag == "" {
		return reviewArgs{}, fmt.Errorf("--request-id is required")
	}
	requestID, err := uuid.Parse(*requestFlag)
	if err != nil {
		return reviewArgs{}, fmt.Errorf("invalid --request-id: %w", err)
	}

	parsed := reviewArgs{
		requestID: requestID,
		action:    strings.ToLower(strings.TrimSpace(*actionFlag)),
		reason:    strings.TrimSpace(*reasonFlag),
	}
	switch parsed.action {
	case "approve":
	case "reject":
		if parsed.reason == "" {
			return reviewArgs{}, fmt.Errorf("--reason is required to reject")
		}
	default:
		return reviewArgs{}, fmt.Errorf("--action must be approve or reject, got %q", *actionFlag)
	}
	if raw := strings.TrimSpace(*reviewerFlag); raw != "" {
		if parsed.reviewer, err = uuid.Parse(raw); err != nil {
			return reviewArgs{}, fmt.Errorf("invalid --reviewer-id: %w", err)
		}
	}
	return parsed, nil
}

func runReview(args []string, deps reviewDeps) error {
	def := defaultReviewDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx := context.Background()
	reviewer := entities.SystemReviewer
	if parsed.reviewer != uuid.Nil {
		user, err := runtime.GetUserByID(ctx, parsed.reviewer)
		if err != nil {
			return fmt.Errorf("failed to load reviewer %s: %w", parsed.reviewer, err)
		}
		if user.Role != entities.UserRoleAdmin {
			return fmt.Errorf("user %s is not ADMIN (role=%s)", parsed.reviewer, user.Role)
		}
		reviewer = parsed.reviewer.String()
	}

	switch parsed.action {
	case "approve":
		result, err := runtime.Approve(ctx, parsed.requestID, reviewer)
		if err != nil {
			return fmt.Errorf("failed to approve %s: %w", parsed.requestID, err)
		}
		_, _ = fmt.Fprintf(deps.out, "request_id=%s\n", result.Request.ID)
		_, _ = fmt.Fprintf(deps.out, "status=%s\n", result.Request.Status)
		_, _ = fmt.Fprintf(deps.out, "inheritance_applied=%t\n", result.InheritanceApplied)
		_, _ = fmt.Fprintf(deps.out, "beneficiaries_notified=%d\n", len(result.AccessTokens))
	case "reject":
		request, err := runtime.Reject(ctx, parsed.requestID, reviewer, parsed.reason)
		if err != nil {
			return fmt.Errorf("failed to reject %s: %w", parsed.requestID, err)
		}
		_, _ = fmt.Fprintf(deps.out, "request_id=%s\n", request.ID)
		_, _ = fmt.Fprintf(deps.out, "status=%s\n", request.Status)
	}
	return nil
}

func main() {
	if err := runReview(os.Args[1:], defaultReviewDeps()); err != nil {
		log.Fatal(err)
	}
}
