// Package cache keeps rendered comment lists in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"movie-comments/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// listsKey is the hash holding every cached list, one field per query.
	listsKey = "comments:lists"

	// genKey is bumped by every Invalidate. A list loaded under an older
	// generation is never written back.
	genKey = "comments:gen"
)

// CommentCache caches comment lists. A miss returns ok=false and no error.
//
// Callers read Generation before loading from the store and hand it to
// SetList, so a list loaded before a concurrent write cannot be cached
// after that write invalidated it.
type CommentCache interface {
	GetList(ctx context.Context, key string) ([]*entity.Comment, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, key string, gen int64, comments []*entity.Comment) error
	Invalidate(ctx context.Context) error
}

// AllKey and UserKey name the cached queries.
func AllKey() string { return "all" }

func UserKey(user string) string { return "user:" + user }

var errStale = errors.New("cache generation changed")

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) CommentCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "comments")),
	}
}

func (c *redisCache) GetList(ctx context.Context, key string) ([]*entity.Comment, bool, error) {
	raw, err := c.client.HGet(ctx, listsKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var comments []*entity.Comment
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	c.log.Debug("Cache hit", zap.String("key", key), zap.Int("count", len(comments)))
	return comments, true, nil
}

func (c *redisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// SetList stores comments under key only while the generation is still gen.
// A stale write is dropped silently.
func (c *redisCache) SetList(ctx context.Context, key string, gen int64, comments []*entity.Comment) error {
	raw, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, listsKey, key, raw)
			if c.ttl > 0 {
				pipe.Expire(ctx, listsKey, c.ttl)
			}
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		c.log.Debug("Stale list not cached", zap.String("key", key), zap.Int64("generation", gen))
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Del(ctx, listsKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Noop never caches anything.
type Noop struct{}

func (Noop) GetList(context.Context, string) ([]*entity.Comment, bool, error) { return nil, false, nil }

func (Noop) Generation(context.Context) (int64, error) { return 0, nil }

func (Noop) SetList(context.Context, string, int64, []*entity.Comment) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
