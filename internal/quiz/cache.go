package quiz

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// TreeCache provides Redis-backed caching of a quiz's full question tree so
// the attempt flow does not rebuild it from Postgres on every poll.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ TreeCacher = (*TreeCache)(nil)

func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

func (c *TreeCache) key(quizID uuid.UUID) string {
	return "quiztree:" + quizID.String()
}

func (c *TreeCache) Get(ctx context.Context, quizID uuid.UUID) (*Quiz, error) {
	data, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var q Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *TreeCache) Set(ctx context.Context, q Quiz) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(q.ID), data, c.ttl).Err()
}

// Invalidate drops a cached tree after any authoring mutation.
func (c *TreeCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.client.Del(ctx, c.key(quizID)).Err()
}
