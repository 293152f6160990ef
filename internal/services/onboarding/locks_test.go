package onboarding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLocks_SerializesOneSession(t *testing.T) {
	locks := newSessionLocks()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.acquire(ctx, "s1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locks.size(), "entries are dropped once released")
}

func TestSessionLocks_IndependentSessions(t *testing.T) {
	locks := newSessionLocks()
	ctx := context.Background()

	releaseA, err := locks.acquire(ctx, "a")
	require.NoError(t, err)
	releaseB, err := locks.acquire(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 2, locks.size())
	releaseA()
	releaseA()
	releaseB()
	assert.Zero(t, locks.size())
}

func TestSessionLocks_HonorsContext(t *testing.T) {
	locks := newSessionLocks()

	release, err := locks.acquire(context.Background(), "s1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locks.acquire(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locks.size())
}
