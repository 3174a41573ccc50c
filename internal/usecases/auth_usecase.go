package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/crypto"
	"heirloom.backend/pkg/jwt"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/utils"
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	userRepo        repositories.UserRepository
	beneficiaryRepo repositories.BeneficiaryRepository
	jwtService      *jwt.JWTService
	clock           Clock
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	jwtService *jwt.JWTService,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:        userRepo,
		beneficiaryRepo: beneficiaryRepo,
		jwtService:      jwtService,
		clock:           clock,
	}
}

// Register creates a user account and flags matching beneficiary records as registered
func (u *AuthUsecase) Register(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	email := entities.NormalizeEmail(input.Email)

	// Check if email already exists
	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := u.clock.now()
	user := &entities.User{
		ID:            utils.GenerateUUIDv7(),
		Email:         email,
		Name:          input.Name,
		PasswordHash:  passwordHash,
		Role:          entities.UserRoleUser,
		AccountStatus: entities.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	linked, err := u.beneficiaryRepo.SetRegisteredByEmail(ctx, email, true)
	if err != nil {
		// is_registered is resynced on beneficiary update
		logger.Warn(ctx, "Failed to flag beneficiary records as registered",
			zap.String("userId", user.ID.String()), zap.Error(err))
	}

	logger.Info(ctx, "User registered",
		zap.String("userId", user.ID.String()),
		zap.Int64("linkedBeneficiaries", linked),
	)
	return user, nil
}

// Login authenticates a user and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if user.AccountStatus != entities.AccountStatusActive {
		return nil, domainerrors.ErrAccountInactive
	}

	return u.issueTokens(user)
}

// RefreshToken exchanges a refresh token for a new token pair
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.AccountStatus != entities.AccountStatusActive {
		return nil, domainerrors.ErrAccountInactive
	}

	return u.issueTokens(user)
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) issueTokens(user *entities.User) (*entities.AuthResponse, error) {
	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}
