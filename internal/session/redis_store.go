package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/venuehub/venuehub/internal/utils"
)

// RedisStore keeps sessions as JSON strings keyed by the hash of their id.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store whose entries expire after ttl of inactivity.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "sess"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + utils.HashSessionID(id)
}

func (s *RedisStore) Create(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return errors.New("session: empty id")
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	return s.rdb.Set(ctx, s.key(sess.ID), payload, s.ttl).Err()
}

func (s *RedisStore) Touch(ctx context.Context, id string) (Session, error) {
	key := s.key(id)
	var get *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, key)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if errors.Is(err, redis.Nil) || (get != nil && errors.Is(get.Err(), redis.Nil)) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(get.Val()), &sess); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	sess.ID = id
	return sess, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
