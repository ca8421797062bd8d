package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/logger"
)

// Deletes the key only while it still holds our token, so an expired lock
// re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes habits across processes sharing one store.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.DefaultLockTTL
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  constants.LockRetryInterval,
	}
}

func Key(habitID string) string {
	return constants.LockKeyPrefix + ":" + habitID
}

func (l *RedisLocker) Lock(ctx context.Context, habitID string) (func(), error) {
	key := Key(habitID)
	token := uuid.NewString()

	var ticker *time.Ticker
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apperrors.Persistence("acquire lock", err)
		}
		if ok {
			break
		}

		if ticker == nil {
			logger.Debug("Habit lock busy, waiting", "habit_id", habitID)
			ticker = time.NewTicker(l.retry)
			defer ticker.Stop()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be cancelled; release must still run.
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
			defer cancel()
			err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				logger.Warn("Failed to release habit lock", "habit_id", habitID, "error", err)
			}
		})
	}, nil
}
