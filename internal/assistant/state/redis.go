package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

const redisKeyPrefix = "assistant:state:"

// NewRedisClient dials addr and pings it before returning.
func NewRedisClient(addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps state as JSON values written with SET EX, so expiry is
// handled by Redis.
type RedisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) (*RedisStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{log: log.With("service", "RedisStateStore"), rdb: rdb, ttl: ttl}, nil
}

func redisKey(k Key) string { return redisKeyPrefix + k.Tenant + ":" + k.User }

func (s *RedisStore) Get(ctx context.Context, key Key) (*State, error) {
	raw, err := s.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Idle(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		// Undecodable values are dropped and the conversation starts over.
		s.log.Warn("Discarding undecodable assistant state", "key", key.String(), "error", err)
		_ = s.rdb.Del(ctx, redisKey(key)).Err()
		return Idle(), nil
	}
	if st.Kind == "" {
		st.Kind = KindIdle
	}
	return &st, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, st *State) error {
	if st == nil {
		return s.Clear(ctx, key)
	}
	cp := st.Clone()
	cp.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set state: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key Key) error {
	if err := s.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del state: %w", err)
	}
	return nil
}
