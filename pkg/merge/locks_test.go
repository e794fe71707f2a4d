package merge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocksSerializesSameKey(t *testing.T) {
	locks := NewKeyedLocks()

	release, err := locks.Acquire(context.Background(), "player-1", time.Second)
	require.NoError(t, err)

	// Second acquisition for the same key must time out while held.
	_, err = locks.Acquire(context.Background(), "player-1", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()

	release2, err := locks.Acquire(context.Background(), "player-1", time.Second)
	require.NoError(t, err)
	release2()
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	locks := NewKeyedLocks()

	r1, err := locks.Acquire(context.Background(), "player-1", time.Second)
	require.NoError(t, err)
	defer r1()

	r2, err := locks.Acquire(context.Background(), "player-2", 20*time.Millisecond)
	require.NoError(t, err)
	r2()
}

func TestKeyedLocksConcurrentFirstUse(t *testing.T) {
	locks := NewKeyedLocks()

	// Many goroutines racing on the same never-seen key must all end up on
	// one channel: the counter below would be corrupted otherwise.
	const n = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(context.Background(), "fresh-key", 5*time.Second)
			if err != nil {
				return
			}
			counter++
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, n, counter)
}

func TestKeyedLocksContextCancellation(t *testing.T) {
	locks := NewKeyedLocks()

	release, err := locks.Acquire(context.Background(), "player-1", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = locks.Acquire(ctx, "player-1", 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
