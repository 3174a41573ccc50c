package usecases_test

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
)

// memStore is an in-memory ledger. Rows are stored by value so callers
// never share memory with the store.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]entities.User
	assets        map[uuid.UUID]entities.Asset
	cryptoAssets  map[uuid.UUID]entities.CryptoAsset
	beneficiaries map[uuid.UUID]entities.Beneficiary
	allocations   []entities.CryptoAllocation
	requests      map[uuid.UUID]entities.VerificationRequest
	accessLogs    []entities.AccessLog
	messages      []entities.Message
	errs          map[string]error
}

type memSnapshot struct {
	users         map[uuid.UUID]entities.User
	assets        map[uuid.UUID]entities.Asset
	cryptoAssets  map[uuid.UUID]entities.CryptoAsset
	beneficiaries map[uuid.UUID]entities.Beneficiary
	allocations   []entities.CryptoAllocation
	requests      map[uuid.UUID]entities.VerificationRequest
	accessLogs    []entities.AccessLog
	messages      []entities.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]entities.User),
		assets:        make(map[uuid.UUID]entities.Asset),
		cryptoAssets:  make(map[uuid.UUID]entities.CryptoAsset),
		beneficiaries: make(map[uuid.UUID]entities.Beneficiary),
		requests:      make(map[uuid.UUID]entities.VerificationRequest),
		errs:          make(map[string]error),
	}
}

func (s *memStore) failWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[op] = err
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:         make(map[uuid.UUID]entities.User, len(s.users)),
		assets:        make(map[uuid.UUID]entities.Asset, len(s.assets)),
		cryptoAssets:  make(map[uuid.UUID]entities.CryptoAsset, len(s.cryptoAssets)),
		beneficiaries: make(map[uuid.UUID]entities.Beneficiary, len(s.beneficiaries)),
		allocations:   append([]entities.CryptoAllocation(nil), s.allocations...),
		requests:      make(map[uuid.UUID]entities.VerificationRequest, len(s.requests)),
		accessLogs:    append([]entities.AccessLog(nil), s.accessLogs...),
		messages:      append([]entities.Message(nil), s.messages...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.assets {
		snap.assets[k] = v
	}
	for k, v := range s.cryptoAssets {
		snap.cryptoAssets[k] = v
	}
	for k, v := range s.beneficiaries {
		snap.beneficiaries[k] = v
	}
	for k, v := range s.requests {
		v.Documents = append([]entities.VerificationDocument(nil), v.Documents...)
		snap.requests[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.assets = snap.assets
	s.cryptoAssets = snap.cryptoAssets
	s.beneficiaries = snap.beneficiaries
	s.allocations = snap.allocations
	s.requests = snap.requests
	s.accessLogs = snap.accessLogs
	s.messages = snap.messages
}

// memUoW rolls the store back when the outermost Do fails
type memUoW struct {
	store     *memStore
	commits   int32
	rollbacks int32
}

type memTxKey struct{}

func (u *memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	snap := u.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		u.store.restore(snap)
		atomic.AddInt32(&u.rollbacks, 1)
		return err
	}
	atomic.AddInt32(&u.commits, 1)
	return nil
}

// ---- users

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["user.Create"]; err != nil {
		return err
	}
	for _, u := range r.s.users {
		if entities.NormalizeEmail(u.Email) == entities.NormalizeEmail(user.Email) {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if entities.NormalizeEmail(u.Email) == entities.NormalizeEmail(email) {
			found := u
			return &found, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUserRepo) UpdateAccountStatus(_ context.Context, id uuid.UUID, status entities.AccountStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["user.UpdateAccountStatus"]; err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	u.AccountStatus = status
	r.s.users[id] = u
	return nil
}

// ---- assets

type memAssetRepo struct{ s *memStore }

func (r memAssetRepo) Create(_ context.Context, asset *entities.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["asset.Create"]; err != nil {
		return err
	}
	r.s.assets[asset.ID] = *asset
	return nil
}

func (r memAssetRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &a, nil
}

func (r memAssetRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entities.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assetsOf(userID), nil
}

func (r memAssetRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.s.assets, id)
	delete(r.s.cryptoAssets, id)
	return nil
}

// assetsOf must be called with the lock held
func (s *memStore) assetsOf(userID uuid.UUID) []*entities.Asset {
	var out []*entities.Asset
	for _, a := range s.assets {
		if a.UserID == userID {
			found := a
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ---- crypto assets

type memCryptoAssetRepo struct{ s *memStore }

func (r memCryptoAssetRepo) Create(_ context.Context, ca *entities.CryptoAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["crypto.Create"]; err != nil {
		return err
	}
	if _, ok := r.s.assets[ca.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	stored := *ca
	stored.Asset = nil
	r.s.cryptoAssets[ca.ID] = stored
	return nil
}

func (r memCryptoAssetRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.CryptoAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.cryptoAsset(id)
}

func (r memCryptoAssetRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entities.CryptoAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.CryptoAsset
	for _, a := range r.s.assetsOf(userID) {
		if a.AssetType != entities.AssetTypeCryptoWallet {
			continue
		}
		if ca, err := r.s.cryptoAsset(a.ID); err == nil {
			out = append(out, ca)
		}
	}
	return out, nil
}

// cryptoAsset must be called with the lock held
func (s *memStore) cryptoAsset(id uuid.UUID) (*entities.CryptoAsset, error) {
	ca, ok := s.cryptoAssets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	if a, ok := s.assets[id]; ok {
		ca.Asset = &a
	}
	return &ca, nil
}

// ---- beneficiaries

type memBeneficiaryRepo struct{ s *memStore }

func (r memBeneficiaryRepo) Create(_ context.Context, b *entities.Beneficiary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.beneficiaries[b.ID] = *b
	return nil
}

func (r memBeneficiaryRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Beneficiary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.beneficiaries[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &b, nil
}

func (r memBeneficiaryRepo) GetByOwnerAndEmail(_ context.Context, ownerID uuid.UUID, email string) (*entities.Beneficiary, error) {
	return r.first(func(b entities.Beneficiary) bool {
		return b.UserID == ownerID && entities.NormalizeEmail(b.Email) == entities.NormalizeEmail(email)
	})
}

func (r memBeneficiaryRepo) GetByAccessTokenHash(_ context.Context, tokenHash string) (*entities.Beneficiary, error) {
	return r.first(func(b entities.Beneficiary) bool {
		return b.AccessTokenHash.Valid && b.AccessTokenHash.String == tokenHash
	})
}

func (r memBeneficiaryRepo) first(match func(entities.Beneficiary) bool) (*entities.Beneficiary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.beneficiaries {
		if match(b) {
			found := b
			return &found, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memBeneficiaryRepo) ListByUserID(_ context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	return r.list(func(b entities.Beneficiary) bool { return b.UserID == ownerID }), nil
}

func (r memBeneficiaryRepo) ListActiveByUserID(_ context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	return r.list(func(b entities.Beneficiary) bool {
		return b.UserID == ownerID && b.Status == entities.BeneficiaryStatusActive
	}), nil
}

func (r memBeneficiaryRepo) list(match func(entities.Beneficiary) bool) []*entities.Beneficiary {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Beneficiary
	for _, b := range r.s.beneficiaries {
		if match(b) {
			found := b
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityLevel != out[j].PriorityLevel {
			return out[i].PriorityLevel < out[j].PriorityLevel
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r memBeneficiaryRepo) Update(_ context.Context, b *entities.Beneficiary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.beneficiaries[b.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.s.beneficiaries[b.ID] = *b
	return nil
}

func (r memBeneficiaryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.beneficiaries[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.s.beneficiaries, id)
	return nil
}

func (r memBeneficiaryRepo) SetAccessToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.beneficiaries[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	b.AccessTokenHash = null.StringFrom(tokenHash)
	b.TokenExpiresAt = null.TimeFrom(expiresAt)
	b.NotificationSent = true
	r.s.beneficiaries[id] = b
	return nil
}

func (r memBeneficiaryRepo) SetRegisteredByEmail(_ context.Context, email string, registered bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["beneficiary.SetRegisteredByEmail"]; err != nil {
		return 0, err
	}
	var n int64
	for id, b := range r.s.beneficiaries {
		if entities.NormalizeEmail(b.Email) == entities.NormalizeEmail(email) {
			b.IsRegistered = registered
			r.s.beneficiaries[id] = b
			n++
		}
	}
	return n, nil
}

func (r memBeneficiaryRepo) ClearExpiredAccessTokens(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, b := range r.s.beneficiaries {
		if b.TokenExpiresAt.Valid && !b.TokenExpiresAt.Time.After(now) {
			b.AccessTokenHash = null.String{}
			b.TokenExpiresAt = null.Time{}
			r.s.beneficiaries[id] = b
			n++
		}
	}
	return n, nil
}

// ---- allocations

type memAllocationRepo struct{ s *memStore }

func (r memAllocationRepo) Create(_ context.Context, a *entities.CryptoAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.allocations = append(r.s.allocations, *a)
	return nil
}

func (r memAllocationRepo) ListByCryptoAssetID(_ context.Context, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	return r.list(func(a entities.CryptoAllocation) bool { return a.CryptoAssetID == cryptoAssetID }), nil
}

func (r memAllocationRepo) ListByBeneficiaryID(_ context.Context, beneficiaryID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	return r.list(func(a entities.CryptoAllocation) bool { return a.BeneficiaryID == beneficiaryID }), nil
}

func (r memAllocationRepo) list(match func(entities.CryptoAllocation) bool) []*entities.CryptoAllocation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.CryptoAllocation, 0)
	for _, a := range r.s.allocations {
		if match(a) {
			found := a
			out = append(out, &found)
		}
	}
	return out
}

func (r memAllocationRepo) SumPercentage(_ context.Context, cryptoAssetID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, a := range r.s.allocations {
		if a.CryptoAssetID == cryptoAssetID {
			total = total.Add(a.Percentage)
		}
	}
	return total, nil
}

func (r memAllocationRepo) MarkDisbursed(_ context.Context, a *entities.CryptoAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["allocation.MarkDisbursed"]; err != nil {
		return err
	}
	for i, stored := range r.s.allocations {
		if stored.ID != a.ID {
			continue
		}
		if stored.IsDisbursed() {
			return domainerrors.ErrConflict
		}
		stored.AllocatedAmountUSD = a.AllocatedAmountUSD
		stored.AllocatedAmountCrypto = a.AllocatedAmountCrypto
		stored.DisbursementStatus = entities.DisbursementStatusDisbursed
		stored.MockTransactionID = a.MockTransactionID
		stored.DisbursedAt = a.DisbursedAt
		r.s.allocations[i] = stored
		return nil
	}
	return domainerrors.ErrConflict
}

// ---- verification requests

type memVerificationRepo struct{ s *memStore }

func (r memVerificationRepo) Create(_ context.Context, req *entities.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *req
	stored.Documents = nil
	r.s.requests[req.ID] = stored
	return nil
}

func (r memVerificationRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.VerificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	req.Documents = append([]entities.VerificationDocument(nil), req.Documents...)
	return &req, nil
}

func (r memVerificationRepo) List(_ context.Context, limit, offset int) ([]*entities.VerificationRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entities.VerificationRequest, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		found := req
		all = append(all, &found)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []*entities.VerificationRequest{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r memVerificationRepo) UpdateReview(_ context.Context, req *entities.VerificationRequest, from entities.VerificationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[req.ID]
	if !ok || stored.Status != from {
		return domainerrors.ErrConflict
	}
	stored.Status = req.Status
	stored.ReviewedBy = req.ReviewedBy
	stored.ReviewedAt = req.ReviewedAt
	stored.RejectionReason = req.RejectionReason
	stored.UpdatedAt = req.UpdatedAt
	r.s.requests[req.ID] = stored
	return nil
}

func (r memVerificationRepo) AddDocument(_ context.Context, doc *entities.VerificationDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[doc.RequestID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	req.Documents = append(append([]entities.VerificationDocument(nil), req.Documents...), *doc)
	r.s.requests[doc.RequestID] = req
	return nil
}

func (r memVerificationRepo) HasApprovedClaim(_ context.Context, userID, beneficiaryID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		if req.UserID == userID && req.BeneficiaryID == beneficiaryID && req.Status == entities.VerificationStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

// ---- access logs

type memAccessLogRepo struct{ s *memStore }

func (r memAccessLogRepo) Create(_ context.Context, log *entities.AccessLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["accessLog.Create"]; err != nil {
		return err
	}
	r.s.accessLogs = append(r.s.accessLogs, *log)
	return nil
}

func (r memAccessLogRepo) ListByBeneficiaryID(_ context.Context, beneficiaryID uuid.UUID) ([]*entities.AccessLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.AccessLog
	for _, l := range r.s.accessLogs {
		if l.BeneficiaryID == beneficiaryID {
			found := l
			out = append(out, &found)
		}
	}
	return out, nil
}

// ---- messages

type memMessageRepo struct{ s *memStore }

func (r memMessageRepo) Create(_ context.Context, m *entities.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages = append(r.s.messages, *m)
	return nil
}

func (r memMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memMessageRepo) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Message
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		if r.s.messages[i].UserID == userID {
			found := r.s.messages[i]
			out = append(out, &found)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r memMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.messages {
		if m.ID == id {
			r.s.messages = append(r.s.messages[:i:i], r.s.messages[i+1:]...)
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (r memMessageRepo) MarkDelivered(_ context.Context, userID uuid.UUID, condition entities.DeliveryCondition, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["message.MarkDelivered"]; err != nil {
		return 0, err
	}
	return r.s.deliver(func(m entities.Message) bool {
		return m.UserID == userID && m.DeliveryCondition == condition
	}, now), nil
}

func (r memMessageRepo) DeliverDueScheduled(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deliver(func(m entities.Message) bool {
		owner, ok := r.s.users[m.UserID]
		return ok && owner.IsDeceased() &&
			m.DeliveryCondition == entities.DeliveryScheduledDate &&
			m.ScheduledFor.Valid && !m.ScheduledFor.Time.After(now)
	}, now), nil
}

// deliver must be called with the lock held
func (s *memStore) deliver(match func(entities.Message) bool, now time.Time) int64 {
	var n int64
	for i, m := range s.messages {
		if m.Delivered || !match(m) {
			continue
		}
		s.messages[i].Delivered = true
		s.messages[i].DeliveredAt = null.TimeFrom(now)
		n++
	}
	return n
}

func (r memMessageRepo) ListDelivered(_ context.Context, userID, beneficiaryID uuid.UUID) ([]*entities.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Message
	for _, m := range r.s.messages {
		if m.UserID != userID || !m.Delivered {
			continue
		}
		if m.BeneficiaryID != nil && *m.BeneficiaryID != beneficiaryID {
			continue
		}
		found := m
		out = append(out, &found)
	}
	return out, nil
}
