package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when a session-scoped lock is already held
var ErrBusy = errors.New("operation already in progress")

const lockTTL = 2 * time.Minute

// Lock takes the named busy flag of a session. The returned release func is
// safe to call more than once and only removes the lock it set.
func (s *Store) Lock(ctx context.Context, sid, name string) (func(), error) {
	key := ScopedKey(sid, "lock", name)
	owner := uuid.NewString()

	ok, err := s.kv.SetNX(ctx, key, owner, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to take lock %s: %w", name, err)
	}
	if !ok {
		return nil, ErrBusy
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Detached so a cancelled request still frees its flag
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		current, err := s.kv.Get(releaseCtx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return
		}
		if current == owner {
			_ = s.kv.Del(releaseCtx, key).Err()
		}
	}, nil
}
