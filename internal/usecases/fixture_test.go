package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"heirloom.backend/internal/domain/entities"
	"heirloom.backend/internal/usecases"
	"heirloom.backend/pkg/utils"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	store *memStore
	uow   *memUoW
	now   time.Time
	clock usecases.Clock

	users         memUserRepo
	assets        memAssetRepo
	cryptoAssets  memCryptoAssetRepo
	beneficiaries memBeneficiaryRepo
	allocations   memAllocationRepo
	verifications memVerificationRepo
	accessLogs    memAccessLogRepo
	messages      memMessageRepo

	locker   usecases.Locker
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	f := &fixture{
		t:             t,
		store:         s,
		uow:           &memUoW{store: s},
		now:           fixedNow,
		users:         memUserRepo{s},
		assets:        memAssetRepo{s},
		cryptoAssets:  memCryptoAssetRepo{s},
		beneficiaries: memBeneficiaryRepo{s},
		allocations:   memAllocationRepo{s},
		verifications: memVerificationRepo{s},
		accessLogs:    memAccessLogRepo{s},
		messages:      memMessageRepo{s},
		locker:        usecases.NewLocalLocker(),
		notifier:      &recordingNotifier{},
	}
	f.clock = func() time.Time { return f.now }
	return f
}

func (f *fixture) allocationUsecase() *usecases.AllocationUsecase {
	return usecases.NewAllocationUsecase(f.cryptoAssets, f.beneficiaries, f.allocations, f.uow, f.locker, f.clock)
}

func (f *fixture) disbursementUsecase() *usecases.DisbursementUsecase {
	return usecases.NewDisbursementUsecase(f.users, f.assets, f.cryptoAssets, f.beneficiaries, f.allocations, f.uow, f.locker, f.clock)
}

func (f *fixture) inheritanceUsecase() *usecases.InheritanceUsecase {
	return usecases.NewInheritanceUsecase(f.users, f.beneficiaries, f.cryptoAssets, f.messages, f.disbursementUsecase(),
		f.notifier, f.uow, 0, "https://heirloom.test", f.clock)
}

func (f *fixture) verificationUsecase(autoApprove bool) *usecases.VerificationUsecase {
	return usecases.NewVerificationUsecase(f.verifications, f.users, f.beneficiaries, f.inheritanceUsecase(), f.uow,
		usecases.VerificationSettings{DocumentStorageRoot: "verifications", AutoApproveClaims: autoApprove}, f.clock)
}

func (f *fixture) accessUsecase() *usecases.BeneficiaryAccessUsecase {
	return usecases.NewBeneficiaryAccessUsecase(f.beneficiaries, f.users, f.allocations, f.accessLogs, f.messages, f.clock)
}

func (f *fixture) addUser(email, name string) *entities.User {
	f.t.Helper()
	u := &entities.User{
		ID:            utils.GenerateUUIDv7(),
		Email:         email,
		Name:          name,
		Role:          entities.UserRoleUser,
		AccountStatus: entities.AccountStatusActive,
		CreatedAt:     f.now,
		UpdatedAt:     f.now,
	}
	require.NoError(f.t, f.users.Create(context.Background(), u))
	return u
}

// addCryptoAsset seeds a wallet. Empty balances are stored as null.
func (f *fixture) addCryptoAsset(ownerID uuid.UUID, name, balanceUSD, balanceCrypto string) *entities.CryptoAsset {
	f.t.Helper()
	ctx := context.Background()
	asset := &entities.Asset{
		ID:           utils.GenerateUUIDv7(),
		UserID:       ownerID,
		AssetType:    entities.AssetTypeCryptoWallet,
		PlatformName: "Ledger",
		AssetName:    name,
		Category:     "cold-storage",
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
	require.NoError(f.t, f.assets.Create(ctx, asset))

	ca := &entities.CryptoAsset{
		ID:            asset.ID,
		WalletType:    entities.WalletTypeEthereum,
		WalletAddress: "0x52908400098527886e0f7030069857d2e4169ee7",
		PrivateKey:    "sealed:pk:v1:opaque",
		SeedPhrase:    "sealed:seed:v1:opaque",
		BalanceUSD:    nullDecimal(f.t, balanceUSD),
		BalanceCrypto: nullDecimal(f.t, balanceCrypto),
		LastUpdated:   f.now,
	}
	require.NoError(f.t, f.cryptoAssets.Create(ctx, ca))
	ca.Asset = asset
	return ca
}

func (f *fixture) setBalance(cryptoAssetID uuid.UUID, balanceUSD string) {
	f.t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	ca := f.store.cryptoAssets[cryptoAssetID]
	ca.BalanceUSD = nullDecimal(f.t, balanceUSD)
	f.store.cryptoAssets[cryptoAssetID] = ca
}

func (f *fixture) addBeneficiary(ownerID uuid.UUID, email string, status entities.BeneficiaryStatus) *entities.Beneficiary {
	f.t.Helper()
	b := &entities.Beneficiary{
		ID:            utils.GenerateUUIDv7(),
		UserID:        ownerID,
		Email:         email,
		FirstName:     "Heir",
		LastName:      email,
		PriorityLevel: 1,
		Status:        status,
		CreatedAt:     f.now,
		UpdatedAt:     f.now,
	}
	require.NoError(f.t, f.beneficiaries.Create(context.Background(), b))
	return b
}

func (f *fixture) addAllocation(cryptoAssetID, beneficiaryID uuid.UUID, percentage string) *entities.CryptoAllocation {
	f.t.Helper()
	a, err := f.allocationUsecase().CreateAllocation(context.Background(), cryptoAssetID, beneficiaryID, dec(f.t, percentage))
	require.NoError(f.t, err)
	return a
}

// addMessage seeds an undelivered message. A nil beneficiaryID addresses everyone.
func (f *fixture) addMessage(ownerID uuid.UUID, beneficiaryID *uuid.UUID, condition entities.DeliveryCondition) *entities.Message {
	f.t.Helper()
	m := &entities.Message{
		ID:                utils.GenerateUUIDv7(),
		UserID:            ownerID,
		BeneficiaryID:     beneficiaryID,
		Title:             string(condition),
		Content:           "sealed words",
		DeliveryCondition: condition,
		CreatedAt:         f.now,
	}
	require.NoError(f.t, f.messages.Create(context.Background(), m))
	return m
}

func (f *fixture) message(id uuid.UUID) *entities.Message {
	f.t.Helper()
	m, err := f.messages.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) user(id uuid.UUID) *entities.User {
	f.t.Helper()
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) beneficiary(id uuid.UUID) *entities.Beneficiary {
	f.t.Helper()
	b, err := f.beneficiaries.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) allocationsOf(cryptoAssetID uuid.UUID) []*entities.CryptoAllocation {
	f.t.Helper()
	list, err := f.allocations.ListByCryptoAssetID(context.Background(), cryptoAssetID)
	require.NoError(f.t, err)
	return list
}

func (f *fixture) cryptoAssetsOf(userID uuid.UUID) []*entities.CryptoAsset {
	f.t.Helper()
	list, err := f.cryptoAssets.ListByUserID(context.Background(), userID)
	require.NoError(f.t, err)
	return list
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func nullDecimal(t *testing.T, s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(dec(t, s))
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(t, want).Equal(got), "want %s, got %s", want, got.String())
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entities.AccessNotification
}

func (n *recordingNotifier) NotifyAccessGranted(_ context.Context, notification entities.AccessNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) notifications() []entities.AccessNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entities.AccessNotification(nil), n.sent...)
}
