package inmemdb

import (
	"context"
	"time"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

type registrationStore struct {
	db *DB
}

var _ user.RegistrationStore = (*registrationStore)(nil)

func NewRegistrationStore(db *DB) *registrationStore {
	return &registrationStore{db: db}
}

func (store *registrationStore) Put(ctx context.Context, reg user.Registration) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	store.db.registrations[reg.Email] = &reg
	return nil
}

func (store *registrationStore) Get(ctx context.Context, email string) (user.Registration, error) {
	store.db.mutex.RLock()
	defer store.db.mutex.RUnlock()

	if reg, ok := store.db.registrations[email]; ok {
		return *reg, nil
	}
	return user.Registration{}, user.ErrNoRegistration
}

func (store *registrationStore) Delete(ctx context.Context, email string) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	delete(store.db.registrations, email)
	return nil
}

type resetThrottle struct {
	db       *DB
	cooldown time.Duration
	nowFunc  func() time.Time
}

var _ user.ResetThrottle = (*resetThrottle)(nil)

func NewResetThrottle(db *DB, cooldown time.Duration) *resetThrottle {
	return &resetThrottle{db: db, cooldown: cooldown, nowFunc: time.Now}
}

func (thr *resetThrottle) Reserve(ctx context.Context, email string) (bool, error) {
	thr.db.mutex.Lock()
	defer thr.db.mutex.Unlock()

	now := thr.nowFunc()
	if until, ok := thr.db.reservations[email]; ok && now.Before(until) {
		return false, nil
	}
	thr.db.reservations[email] = now.Add(thr.cooldown)
	return true, nil
}

// SetNow overrides the clock for tests.
func (thr *resetThrottle) SetNow(fn func() time.Time) { thr.nowFunc = fn }
