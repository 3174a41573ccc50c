package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
)

func newBeneficiary(ownerID uuid.UUID, email string, priority int, status entities.BeneficiaryStatus) *entities.Beneficiary {
	now := time.Now().UTC()
	return &entities.Beneficiary{
		ID:            uuid.New(),
		UserID:        ownerID,
		Email:         email,
		FirstName:     "Bea",
		LastName:      "Heir",
		PriorityLevel: priority,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestBeneficiaryRepository_CRUDAndLookups(t *testing.T) {
	db := newTestDB(t)
	createBeneficiaryTable(t, db)
	repo := NewBeneficiaryRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	second := newBeneficiary(ownerID, "second@heirloom.test", 2, entities.BeneficiaryStatusActive)
	first := newBeneficiary(ownerID, "First@Heirloom.test", 1, entities.BeneficiaryStatusActive)
	revoked := newBeneficiary(ownerID, "revoked@heirloom.test", 3, entities.BeneficiaryStatusRevoked)
	for _, b := range []*entities.Beneficiary{second, first, revoked} {
		require.NoError(t, repo.Create(ctx, b))
	}

	all, err := repo.ListByUserID(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, first.ID, all[0].ID)

	active, err := repo.ListActiveByUserID(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, active, 2)

	byEmail, err := repo.GetByOwnerAndEmail(ctx, ownerID, "first@heirloom.test")
	require.NoError(t, err)
	require.Equal(t, first.ID, byEmail.ID)

	_, err = repo.GetByOwnerAndEmail(ctx, uuid.New(), "first@heirloom.test")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	second.FirstName = "Updated"
	second.Status = entities.BeneficiaryStatusInactive
	require.NoError(t, repo.Update(ctx, second))
	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "Updated", got.FirstName)
	require.Equal(t, entities.BeneficiaryStatusInactive, got.Status)

	require.NoError(t, repo.Delete(ctx, revoked.ID))
	_, err = repo.GetByID(ctx, revoked.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, revoked.ID), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, revoked), domainerrors.ErrNotFound)
}

func TestBeneficiaryRepository_AccessTokens(t *testing.T) {
	db := newTestDB(t)
	createBeneficiaryTable(t, db)
	repo := NewBeneficiaryRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	fresh := newBeneficiary(ownerID, "fresh@heirloom.test", 1, entities.BeneficiaryStatusActive)
	stale := newBeneficiary(ownerID, "stale@heirloom.test", 2, entities.BeneficiaryStatusActive)
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, stale))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetAccessToken(ctx, fresh.ID, "hash-fresh", now.Add(time.Hour)))
	require.NoError(t, repo.SetAccessToken(ctx, stale.ID, "hash-stale", now.Add(-time.Hour)))
	require.ErrorIs(t, repo.SetAccessToken(ctx, uuid.New(), "x", now), domainerrors.ErrNotFound)

	got, err := repo.GetByAccessTokenHash(ctx, "hash-fresh")
	require.NoError(t, err)
	require.Equal(t, fresh.ID, got.ID)
	require.True(t, got.NotificationSent)
	require.True(t, got.TokenExpiresAt.Valid)
	require.True(t, got.TokenExpiresAt.Time.Equal(now.Add(time.Hour)))

	cleared, err := repo.ClearExpiredAccessTokens(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), cleared)

	_, err = repo.GetByAccessTokenHash(ctx, "hash-stale")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetByAccessTokenHash(ctx, "hash-fresh")
	require.NoError(t, err)
}

func TestBeneficiaryRepository_SetRegisteredByEmail(t *testing.T) {
	db := newTestDB(t)
	createBeneficiaryTable(t, db)
	repo := NewBeneficiaryRepository(db)
	ctx := context.Background()

	a := newBeneficiary(uuid.New(), "Heir@heirloom.test", 1, entities.BeneficiaryStatusActive)
	b := newBeneficiary(uuid.New(), "heir@heirloom.test", 1, entities.BeneficiaryStatusActive)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	n, err := repo.SetRegisteredByEmail(ctx, "HEIR@heirloom.test", true)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.IsRegistered)
}
