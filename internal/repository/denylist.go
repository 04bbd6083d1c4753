package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records revoked token ids until their natural expiry, so a
// logged-out or rotated token stops working before its TTL runs out.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Close() error
}

type redisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist connects a TokenDenylist backed by Redis.
func NewRedisDenylist(addr, password string) (TokenDenylist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &redisDenylist{client: client}, nil
}

func denyKey(jti string) string {
	return "denylist:" + jti
}

func (d *redisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to record
	}
	return d.client.Set(ctx, denyKey(jti), "1", ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	res, err := d.client.Exists(ctx, denyKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

func (d *redisDenylist) Close() error {
	return d.client.Close()
}
