package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"heirloom.backend/internal/domain/entities"
)

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock BeneficiaryRepository
type MockBeneficiaryRepository struct {
	mock.Mock
}

func (m *MockBeneficiaryRepository) Create(ctx context.Context, beneficiary *entities.Beneficiary) error {
	args := m.Called(ctx, beneficiary)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Beneficiary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) GetByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*entities.Beneficiary, error) {
	args := m.Called(ctx, ownerID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) GetByAccessTokenHash(ctx context.Context, tokenHash string) (*entities.Beneficiary, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) ListByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*entities.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) ListActiveByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*entities.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) Update(ctx context.Context, beneficiary *entities.Beneficiary) error {
	args := m.Called(ctx, beneficiary)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) SetAccessToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) SetRegisteredByEmail(ctx context.Context, email string, registered bool) (int64, error) {
	args := m.Called(ctx, email, registered)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBeneficiaryRepository) ClearExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *entities.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Message, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*entities.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) MarkDelivered(ctx context.Context, userID uuid.UUID, condition entities.DeliveryCondition, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, condition, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) DeliverDueScheduled(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) ListDelivered(ctx context.Context, userID, beneficiaryID uuid.UUID) ([]*entities.Message, error) {
	args := m.Called(ctx, userID, beneficiaryID)
	return args.Get(0).([]*entities.Message), args.Error(1)
}
