package usecases

import (
	"context"
	"sync"
	"time"

	"heirloom.backend/internal/domain/entities"
	"heirloom.backend/pkg/crypto"
)

// Clock returns the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// Locker serializes work on a key across callers
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// mockTxTokenBytes yields 16 lowercase hex characters
const mockTxTokenBytes = 8

func cryptoAssetLockKey(id string) string {
	return "crypto-asset:" + id
}

func newMockTransactionID() (string, error) {
	token, err := crypto.GenerateRandomToken(mockTxTokenBytes)
	if err != nil {
		return "", err
	}
	return entities.MockTransactionPrefix + token, nil
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex used when Redis is not configured
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

// NewLocalLocker creates a new in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

// Lock blocks until key is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(key, slot)
		})
	}, nil
}

func (l *LocalLocker) release(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
