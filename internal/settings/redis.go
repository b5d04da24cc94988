package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisHash    = "malview:settings"
	redisChannel = "malview:settings:changes"
)

// RedisBackend shares settings between processes: values live in one hash
// and every Put is announced on a channel, tagged with this instance's id so
// Watch can skip its own writes.
type RedisBackend struct {
	client *redis.Client
	origin string
}

type redisChange struct {
	Origin string          `json:"origin"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
}

func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	return &RedisBackend{client: rdb, origin: uuid.NewString()}, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	v, err := r.client.HGet(ctx, redisHash, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	return json.RawMessage(v), true, nil
}

func (r *RedisBackend) Put(ctx context.Context, key string, value json.RawMessage) error {
	if err := r.client.HSet(ctx, redisHash, key, string(value)).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	msg, err := json.Marshal(redisChange{Origin: r.origin, Key: key, Value: value})
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, redisChannel, msg).Err()
}

func (r *RedisBackend) Watch(ctx context.Context, fn func(string, json.RawMessage)) error {
	sub := r.client.Subscribe(ctx, redisChannel)
	defer func() {
		_ = sub.Close()
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var c redisChange
			if err := json.Unmarshal([]byte(m.Payload), &c); err != nil || c.Origin == r.origin {
				continue
			}
			fn(c.Key, c.Value)
		}
	}
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
