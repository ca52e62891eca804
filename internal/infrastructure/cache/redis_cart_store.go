package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/velo-register/internal/domain/entity"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
)

const defaultCartTTL = 12 * time.Hour

// RedisCartStore keeps carts as JSON under cart:<operator id>. Every save
// pushes the expiry forward, so an abandoned cart disappears after ttl.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domainRepo.CartStore = (*RedisCartStore)(nil)

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &RedisCartStore{client: client, ttl: ttl}
}

func (r *RedisCartStore) Load(ctx context.Context, operatorID int64) (*entity.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(operatorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (r *RedisCartStore) Save(ctx context.Context, operatorID int64, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(operatorID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Delete(ctx context.Context, operatorID int64) error {
	if err := r.client.Del(ctx, cartKey(operatorID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(operatorID int64) string {
	return "cart:" + strconv.FormatInt(operatorID, 10)
}
