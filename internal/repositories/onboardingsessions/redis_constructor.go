package onboardingsessions

import "github.com/redis/go-redis/v9"

// NewRedis creates a Redis-backed session repository with default configuration
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client:     client,
		SessionTTL: sessionTTL,
	})
}
