package query

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache keeps raw upstream payloads in Redis per viewer. Every stored key is
// also recorded in a per-(viewer, resource) index set so a whole-resource
// invalidation does not need to scan the keyspace.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
	graph Graph
	log   *log.Logger
}

// NewCache creates a cache using the provided Redis client and TTL. A nil
// client or a zero TTL disables caching; every Fetch goes upstream.
func NewCache(client *redis.Client, ttl time.Duration, graph Graph, logger *log.Logger) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	if graph == nil {
		graph = DefaultGraph()
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{redis: client, ttl: ttl, graph: graph, log: logger}
}

// Graph returns the invalidation graph in use.
func (c *Cache) Graph() Graph { return c.graph }

func (c *Cache) enabled() bool { return c != nil && c.redis != nil && c.ttl > 0 }

// Fetch returns the cached value of key for viewer, or calls load and caches
// its result. Errors from load are returned unchanged and never cached.
func Fetch[T any](ctx context.Context, c *Cache, viewer string, key Key, load func(context.Context) (T, error)) (T, error) {
	if data, ok := c.get(ctx, viewer, key); ok {
		var cached T
		if err := sonic.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.drop(ctx, viewer, key)
	}

	return Refresh(ctx, c, viewer, key, load)
}

// Refresh calls load and replaces the cached value of key with its result.
// A result is not cached when the resource was invalidated while load ran.
func Refresh[T any](ctx context.Context, c *Cache, viewer string, key Key, load func(context.Context) (T, error)) (T, error) {
	var gen int64
	tracked := false
	if c.enabled() {
		gen, tracked = c.generation(ctx, viewer, key.Resource)
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if tracked {
		if data, err := sonic.Marshal(v); err == nil {
			c.set(ctx, viewer, key, data, gen)
		}
	}
	return v, nil
}

var errStaleLoad = errors.New("resource invalidated during load")

// generation returns the invalidation counter of (viewer, r). The bool is
// false when Redis could not be read.
func (c *Cache) generation(ctx context.Context, viewer string, r Resource) (int64, bool) {
	n, err := c.redis.Get(ctx, genKey(viewer, r)).Int64()
	if err != nil && err != redis.Nil {
		c.log.WithError(err).WithField("resource", string(r)).Warn("query cache read failed")
		return 0, false
	}
	return n, true
}

func (c *Cache) get(ctx context.Context, viewer string, key Key) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.redis.Get(ctx, dataKey(viewer, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the upstream without failing.
			c.log.WithError(err).WithField("key", key.String()).Warn("query cache read failed")
		}
		return nil, false
	}
	return data, true
}

// set stores data unless the generation of the resource moved past gen.
func (c *Cache) set(ctx context.Context, viewer string, key Key, data []byte, gen int64) {
	rendered := key.String()
	idx := indexKey(viewer, key.Resource)
	g := genKey(viewer, key.Resource)
	err := c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, g).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dataKey(viewer, key), data, c.ttl)
			pipe.SAdd(ctx, idx, rendered)
			pipe.Expire(ctx, idx, c.ttl)
			return nil
		})
		return err
	}, g)
	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		c.log.WithField("key", rendered).Debug("query cache skipped stale load")
	default:
		c.log.WithError(err).WithField("key", rendered).Warn("query cache write failed")
	}
}

func (c *Cache) drop(ctx context.Context, viewer string, key Key) {
	_ = c.redis.Del(ctx, dataKey(viewer, key)).Err()
}

// Invalidate drops every cached read of viewer that m makes stale within
// scope.
func (c *Cache) Invalidate(ctx context.Context, viewer string, m Mutation, scope Scope) {
	c.InvalidateKeys(ctx, viewer, c.graph.Keys(m, scope)...)
}

// InvalidateKeys drops the cached reads of viewer covered by keys.
func (c *Cache) InvalidateKeys(ctx context.Context, viewer string, keys ...Key) {
	if c == nil || c.redis == nil {
		return
	}
	for _, key := range keys {
		c.bump(ctx, viewer, key.Resource)
		idx := indexKey(viewer, key.Resource)
		members, err := c.redis.SMembers(ctx, idx).Result()
		if err != nil {
			c.log.WithError(err).WithField("key", key.String()).Warn("query cache invalidation failed")
			continue
		}
		var stale []string
		for _, m := range members {
			if key.covers(m) {
				stale = append(stale, m)
			}
		}
		if len(stale) == 0 {
			continue
		}
		_, err = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del := make([]string, 0, len(stale))
			rem := make([]any, 0, len(stale))
			for _, s := range stale {
				del = append(del, dataPrefix(viewer)+s)
				rem = append(rem, s)
			}
			pipe.Del(ctx, del...)
			if len(stale) == len(members) {
				pipe.Del(ctx, idx)
			} else {
				pipe.SRem(ctx, idx, rem...)
			}
			return nil
		})
		if err != nil {
			c.log.WithError(err).WithField("key", key.String()).Warn("query cache invalidation failed")
		}
	}
}

// bump advances the generation of (viewer, r) so loads already in flight are
// not cached.
func (c *Cache) bump(ctx context.Context, viewer string, r Resource) {
	if c.ttl <= 0 {
		return
	}
	g := genKey(viewer, r)
	_, err := c.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, g)
		pipe.Expire(ctx, g, c.ttl)
		return nil
	})
	if err != nil {
		c.log.WithError(err).WithField("resource", string(r)).Warn("query cache invalidation failed")
	}
}

// Purge drops everything cached for viewer, e.g. on logout.
func (c *Cache) Purge(ctx context.Context, viewer string) {
	keys := make([]Key, 0, len(Resources()))
	for _, r := range Resources() {
		keys = append(keys, Key{Resource: r})
	}
	c.InvalidateKeys(ctx, viewer, keys...)
}

func dataPrefix(viewer string) string {
	return "query:" + viewer + ":"
}

func dataKey(viewer string, key Key) string {
	return dataPrefix(viewer) + key.String()
}

func indexKey(viewer string, r Resource) string {
	return "query-index:" + viewer + ":" + string(r)
}

func genKey(viewer string, r Resource) string {
	return "query-gen:" + viewer + ":" + string(r)
}
