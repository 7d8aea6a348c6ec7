package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/redis"
)

// redisKV is the slice of the redis wrapper the store needs.
type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(ownerID string) string
}

// RedisStore keeps each owner's cart as a JSON blob under a namespaced key
// with a sliding TTL. Abandoned carts expire on their own.
type RedisStore struct {
	kv  redisKV
	ttl time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "redis client is required")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart ttl must be positive")
	}
	return &RedisStore{kv: client, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context, ownerID string) (*State, error) {
	raw, err := r.kv.Get(ctx, r.kv.CartKey(ownerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart state")
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart state")
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, ownerID string, state *State) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart state")
	}
	if err := r.kv.Set(ctx, r.kv.CartKey(ownerID), string(raw), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart state")
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, ownerID string) error {
	if err := r.kv.Del(ctx, r.kv.CartKey(ownerID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart state")
	}
	return nil
}
