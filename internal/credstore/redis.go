package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront:cred"

// Redis stores cookies as a JSON value under "<prefix>:<visitorID>".
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client. An empty prefix uses the default.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(visitorID string) string {
	return r.prefix + ":" + visitorID
}

func (r *Redis) Load(ctx context.Context, visitorID string) ([]*http.Cookie, error) {
	data, err := r.client.Get(ctx, r.key(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: load %s: %w", visitorID, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("credstore: decode %s: %w", visitorID, err)
	}
	return fromStored(stored), nil
}

// Save replaces the visitor's cookies. A zero ttl keeps the key without
// expiry. Saving an empty cookie list deletes the key.
func (r *Redis) Save(ctx context.Context, visitorID string, cookies []*http.Cookie, ttl time.Duration) error {
	stored := toStored(cookies)
	if len(stored) == 0 {
		return r.Delete(ctx, visitorID)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("credstore: encode %s: %w", visitorID, err)
	}
	if err := r.client.Set(ctx, r.key(visitorID), data, ttl).Err(); err != nil {
		return fmt.Errorf("credstore: save %s: %w", visitorID, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, visitorID string) error {
	if err := r.client.Del(ctx, r.key(visitorID)).Err(); err != nil {
		return fmt.Errorf("credstore: delete %s: %w", visitorID, err)
	}
	return nil
}

// Ping checks connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
