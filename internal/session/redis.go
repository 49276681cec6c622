package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/form"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 50

// RedisStore keeps sessions in redis as JSON with an expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects lazily to the redis server at addr.
func NewRedisStore(addr string, db int, prefix string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return NewRedisStoreWithClient(rdb, prefix, ttl)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = constants.DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return r.prefix + id, nil
}

// Load implements Store. A hit slides the expiry forward.
func (r *RedisStore) Load(ctx context.Context, id string) (form.State, bool, error) {
	key, err := r.key(id)
	if err != nil {
		return form.State{}, false, err
	}
	var data []byte
	if r.ttl > 0 {
		data, err = r.client.GetEx(ctx, key, r.ttl).Bytes()
	} else {
		data, err = r.client.Get(ctx, key).Bytes()
	}
	if errors.Is(err, redis.Nil) {
		return form.State{}, false, nil
	}
	if err != nil {
		return form.State{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	state, err := decodeState(data)
	if err != nil {
		return form.State{}, false, err
	}
	return state, true, nil
}

func decodeState(data []byte) (form.State, error) {
	var state form.State
	if err := json.Unmarshal(data, &state); err != nil {
		return form.State{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, id string, state form.State) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Update implements Store with an optimistic WATCH/MULTI transaction,
// retried while another client changes the key underneath it.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(form.State) form.State) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		var current form.State
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		default:
			if current, err = decodeState(data); err != nil {
				return err
			}
		}

		data, err = json.Marshal(fn(current))
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrConflict, id)
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
