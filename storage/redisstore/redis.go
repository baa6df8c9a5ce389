// Package redisstore holds the ephemeral state that never belongs in the
// document store: pending registrations awaiting email verification, and the
// per-email password reset cooldown.
package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/himanshhhhuv/studentinfo/core"
)

const pingTimeout = 5 * time.Second

// Open connects to redis and pings it so a bad address fails fast at startup.
func Open(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}
