package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

const registrationKeyPrefix = "registration:"

// registrationStore stashes pending sign-ups until the verification link is
// confirmed. Entries expire with the verification token so stale sign-ups
// clean themselves up.
type registrationStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ user.RegistrationStore = (*registrationStore)(nil)

func NewRegistrationStore(client *redis.Client, ttl time.Duration) *registrationStore {
	return &registrationStore{client: client, ttl: ttl}
}

func (store *registrationStore) Put(ctx context.Context, reg user.Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return errors.Wrap(err, "encoding registration")
	}
	if err = store.client.Set(ctx, registrationKeyPrefix+reg.Email, data, store.ttl).Err(); err != nil {
		return errors.Wrap(err, "storing registration")
	}
	return nil
}

func (store *registrationStore) Get(ctx context.Context, email string) (user.Registration, error) {
	data, err := store.client.Get(ctx, registrationKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return user.Registration{}, user.ErrNoRegistration
	}
	if err != nil {
		return user.Registration{}, errors.Wrap(err, "reading registration")
	}
	var reg user.Registration
	if err = json.Unmarshal(data, &reg); err != nil {
		return user.Registration{}, errors.Wrap(err, "decoding registration")
	}
	return reg, nil
}

func (store *registrationStore) Delete(ctx context.Context, email string) error {
	if err := store.client.Del(ctx, registrationKeyPrefix+email).Err(); err != nil {
		return errors.Wrap(err, "deleting registration")
	}
	return nil
}
