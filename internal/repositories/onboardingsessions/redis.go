package onboardingsessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

const (
	// Key patterns
	sessionKeyPrefix  = "firstlogin:session:"
	activeKeyPattern  = "firstlogin:player:%s:active"
	playerSessionsKey = "firstlogin:player:%s:sessions"

	// Sessions outlive the dialogue so a finished negotiation can still be inspected
	sessionTTL = 30 * 24 * time.Hour

	// Update retries a WATCH that lost a race only this many times before reporting a conflict
	maxWatchRetries = 3
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client     redis.UniversalClient
	SessionTTL time.Duration
}

type redisRepository struct {
	client     redis.UniversalClient
	sessionTTL time.Duration
}

// NewRedisRepository creates a Redis-backed session repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = sessionTTL
	}

	return &redisRepository{
		client:     cfg.Client,
		sessionTTL: ttl,
	}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }
func activeKey(playerID string) string { return fmt.Sprintf(activeKeyPattern, playerID) }
func playerIndexKey(playerID string) string { return fmt.Sprintf(playerSessionsKey, playerID) }

func (r *redisRepository) Create(ctx context.Context, session *firstlogin.Session) error {
	if err := validateNew(session); err != nil {
		return err
	}

	session.Version = 1
	data, err := json.Marshal(session)
	if err != nil {
		return dnderr.Wrap(err, "failed to serialize session")
	}

	// The active slot is claimed first so two concurrent starts cannot both win
	if !session.IsComplete() {
		claimed, err := r.client.SetNX(ctx, activeKey(session.PlayerID), session.ID, r.sessionTTL).Result()
		if err != nil {
			return dnderr.Wrap(err, "failed to claim active session slot")
		}
		if !claimed {
			activeID, _ := r.client.Get(ctx, activeKey(session.PlayerID)).Result()
			return dnderr.SessionAlreadyActivef("player %s already has session %s", session.PlayerID, activeID).
				WithMeta("player_id", session.PlayerID).
				WithMeta("active_session_id", activeID)
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), string(data), r.sessionTTL)
		pipe.SAdd(ctx, playerIndexKey(session.PlayerID), session.ID)
		pipe.Expire(ctx, playerIndexKey(session.PlayerID), r.sessionTTL)
		return nil
	})
	if err != nil {
		// Give the slot back so the player is not locked out
		if !session.IsComplete() {
			r.client.Del(ctx, activeKey(session.PlayerID))
		}
		return dnderr.Wrapf(err, "failed to create session %s", session.ID)
	}

	return nil
}

func (r *redisRepository) Get(ctx context.Context, id string) (*firstlogin.Session, error) {
	return r.load(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisRepository) load(ctx context.Context, c getter, id string) (*firstlogin.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("session %s not found", id).WithMeta("session_id", id)
		}
		return nil, dnderr.Wrapf(err, "failed to get session %s", id)
	}

	var session firstlogin.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, dnderr.Wrapf(err, "failed to deserialize session %s", id)
	}
	return &session, nil
}

func (r *redisRepository) Update(ctx context.Context, session *firstlogin.Session) error {
	if session == nil {
		return dnderr.InvalidArgument("session cannot be nil")
	}

	key := sessionKey(session.ID)
	next := session.Clone()
	next.Version = session.Version + 1

	data, err := json.Marshal(next)
	if err != nil {
		return dnderr.Wrap(err, "failed to serialize session")
	}

	txf := func(tx *redis.Tx) error {
		stored, err := r.load(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if stored.Version != session.Version {
			return dnderr.Conflictf("session %s was modified (have version %d, stored %d)",
				session.ID, session.Version, stored.Version).
				WithMeta("session_id", session.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(data), r.sessionTTL)
			if next.IsComplete() {
				pipe.Del(ctx, activeKey(next.PlayerID))
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err = r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			var appErr *dnderr.Error
			if errors.As(err, &appErr) {
				return err
			}
			return dnderr.Wrapf(err, "failed to update session %s", session.ID)
		}

		session.Version = next.Version
		return nil
	}

	return dnderr.Conflictf("session %s kept changing during update", session.ID).
		WithMeta("session_id", session.ID)
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	activeID, err := r.client.Get(ctx, activeKey(session.PlayerID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return dnderr.Wrapf(err, "failed to read active session for %s", session.PlayerID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, playerIndexKey(session.PlayerID), id)
		if activeID == id {
			pipe.Del(ctx, activeKey(session.PlayerID))
		}
		return nil
	})
	if err != nil {
		return dnderr.Wrapf(err, "failed to delete session %s", id)
	}
	return nil
}

func (r *redisRepository) GetActiveByPlayer(ctx context.Context, playerID string) (*firstlogin.Session, error) {
	id, err := r.client.Get(ctx, activeKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("no active session for player %s", playerID).
				WithMeta("player_id", playerID)
		}
		return nil, dnderr.Wrapf(err, "failed to read active session for %s", playerID)
	}

	session, err := r.Get(ctx, id)
	if err != nil {
		if dnderr.IsNotFound(err) {
			// Session expired underneath its slot
			r.client.Del(ctx, activeKey(playerID))
			return nil, dnderr.NotFoundf("no active session for player %s", playerID).
				WithMeta("player_id", playerID)
		}
		return nil, err
	}
	return session, nil
}

func (r *redisRepository) ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.Session, error) {
	ids, err := r.client.SMembers(ctx, playerIndexKey(playerID)).Result()
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to list sessions for %s", playerID)
	}

	found := make([]*firstlogin.Session, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			session, err := r.Get(gctx, id)
			if err != nil {
				if dnderr.IsNotFound(err) {
					return nil
				}
				return err
			}
			found[i] = session
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*firstlogin.Session, 0, len(found))
	for _, s := range found {
		if s != nil {
			out = append(out, s)
		}
	}
	sortByCreated(out)
	return out, nil
}
