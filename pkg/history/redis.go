package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the state as a JSON string under one key, without
// expiry. Several machines pointing at the same Redis share a history.
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisStore stores the state for profile under "<prefix>state:<profile>".
// The client is not closed by Close.
func NewRedisStore(client *redis.Client, prefix, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{client: client, key: prefix + "state:" + profile}
}

// DialRedisStore connects to addr and verifies the connection. The returned
// store owns the client.
func DialRedisStore(ctx context.Context, opts *redis.Options, prefix, profile string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	s := NewRedisStore(client, prefix, profile)
	s.owned = true
	return s, nil
}

// Key returns the Redis key holding the state.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return &State{}, fmt.Errorf("%w: redis key %s: %v", ErrCorruptState, s.key, err)
	}
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
