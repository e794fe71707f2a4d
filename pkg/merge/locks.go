package merge

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when the per-player critical section cannot be
// acquired within the configured bound. Callers surface it as "try again".
var ErrLockTimeout = errors.New("merge: lock acquisition timed out")

// KeyedLocks serializes operations per player key. Entries are created
// lazily on first use and never removed; player-key cardinality is bounded
// and small, so the registry only grows to the size of the player base.
type KeyedLocks struct {
	locks sync.Map // key -> chan struct{}, capacity 1
}

// NewKeyedLocks creates an empty registry.
func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{}
}

func (k *KeyedLocks) slot(key string) chan struct{} {
	if ch, ok := k.locks.Load(key); ok {
		return ch.(chan struct{})
	}
	// LoadOrStore makes concurrent first-time access from the same key safe:
	// both callers end up with the same channel.
	ch, _ := k.locks.LoadOrStore(key, make(chan struct{}, 1))
	return ch.(chan struct{})
}

// Acquire takes the lock for a key, waiting at most timeout. On success it
// returns a release function; on timeout it returns ErrLockTimeout, and on
// context cancellation the context's error.
func (k *KeyedLocks) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	ch := k.slot(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
