package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("schedule lock not acquired")

// Locker guards the check-then-write critical section of booking a doctor's
// day, so two concurrent requests cannot both observe a window as free.
type Locker interface {
	WithScheduleLock(ctx context.Context, doctorID uint, date time.Time, fn func(ctx context.Context) error) error
}

type scheduleLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScheduleLocker creates a locker keyed per doctor and calendar date.
func NewScheduleLocker(client *redis.Client, ttl time.Duration) Locker {
	return &scheduleLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *scheduleLocker) WithScheduleLock(ctx context.Context, doctorID uint, date time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:schedule:%d:%s", doctorID, date.Format("2006-01-02"))
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire schedule lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *scheduleLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release schedule lock: %w", err)
	}
	return nil
}
