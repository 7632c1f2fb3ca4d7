package feed

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is a raw feed body and the time it was downloaded.
type Snapshot struct {
	Body      []byte
	FetchedAt time.Time
}

// Cache stores feed snapshots keyed by feed URL.
type Cache interface {
	Get(ctx context.Context, url string) (Snapshot, bool, error)
	Put(ctx context.Context, url string, snap Snapshot, ttl time.Duration) error
}

// RedisCache keeps snapshots in Redis with a TTL.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache returns a RedisCache namespacing its keys under prefix.
func NewRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "feed"
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) key(url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("%s:%x", c.prefix, sum[:])
}

// Get returns the cached snapshot for url. A miss is (Snapshot{}, false, nil).
func (c *RedisCache) Get(ctx context.Context, url string) (Snapshot, bool, error) {
	bs, err := c.rdb.Get(ctx, c.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, ok := decodeSnapshot(bs)
	if !ok {
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Put stores snap for url, expiring after ttl.
func (c *RedisCache) Put(ctx context.Context, url string, snap Snapshot, ttl time.Duration) error {
	return c.rdb.SetEx(ctx, c.key(url), encodeSnapshot(snap), ttl).Err()
}

// encodeSnapshot packs: [8 bytes fetchedAt unix nanos][body]
func encodeSnapshot(s Snapshot) []byte {
	out := make([]byte, 8+len(s.Body))
	binary.BigEndian.PutUint64(out[:8], uint64(s.FetchedAt.UnixNano()))
	copy(out[8:], s.Body)
	return out
}

func decodeSnapshot(bs []byte) (Snapshot, bool) {
	if len(bs) < 8 {
		return Snapshot{}, false
	}
	ts := int64(binary.BigEndian.Uint64(bs[:8]))
	body := make([]byte, len(bs)-8)
	copy(body, bs[8:])
	return Snapshot{Body: body, FetchedAt: time.Unix(0, ts).UTC()}, true
}
