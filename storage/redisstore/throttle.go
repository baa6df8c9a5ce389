package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/himanshhhhuv/studentinfo/core/user"
)

const resetCooldownKeyPrefix = "reset-cooldown:"

// resetThrottle rate-limits password reset emails per target address. The
// reservation is a SETNX with TTL, so the limit holds across processes and
// clocks itself down without a sweeper.
type resetThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

var _ user.ResetThrottle = (*resetThrottle)(nil)

func NewResetThrottle(client *redis.Client, cooldown time.Duration) *resetThrottle {
	return &resetThrottle{client: client, cooldown: cooldown}
}

func (thr *resetThrottle) Reserve(ctx context.Context, email string) (bool, error) {
	ok, err := thr.client.SetNX(ctx, resetCooldownKeyPrefix+email, 1, thr.cooldown).Result()
	if err != nil {
		return false, errors.Wrap(err, "reserving cooldown")
	}
	return ok, nil
}
