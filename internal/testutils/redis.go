package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// testRedisDB keeps test keys away from a developer's real sessions
const testRedisDB = 15

// localRedisAddr is where tests look for an already running Redis.
// SHIPYARD_TEST_REDIS_ADDR overrides it.
func localRedisAddr() string {
	if addr := os.Getenv("SHIPYARD_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// LocalRedisOrSkip connects to a running Redis, flushes the test database and
// skips the test when nothing answers.
func LocalRedisOrSkip(t *testing.T) redis.UniversalClient {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: localRedisAddr(), DB: testRedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", localRedisAddr(), err)
	}

	require.NoError(t, client.FlushDB(ctx).Err(), "failed to flush test redis database")
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

// WaitForRedis polls addr until it answers PING or timeout passes
func WaitForRedis(addr string, timeout time.Duration) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	deadline := time.Now().Add(timeout)
	var err error
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return err
}
