package onboardingsessions

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

const scanBatch = 100

// Scan walks every stored session with SCAN so it never blocks Redis the way
// KEYS would. Sessions that expire mid-scan are skipped. fn returning an error
// stops the walk.
func Scan(ctx context.Context, client redis.UniversalClient, fn func(*firstlogin.Session) error) error {
	repo := &redisRepository{client: client, sessionTTL: sessionTTL}

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, sessionKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return dnderr.Wrap(err, "failed to scan sessions")
		}

		for _, key := range keys {
			sess, err := repo.load(ctx, client, strings.TrimPrefix(key, sessionKeyPrefix))
			if dnderr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			if err := fn(sess); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
