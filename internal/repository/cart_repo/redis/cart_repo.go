package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"marketplace/internal/domain"
	redisInfra "marketplace/internal/infrastructure/redis"
	"marketplace/internal/repository/cart_repo"
)

type redisCartRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCartRepository(client *goredis.Client, ttl time.Duration) cart_repo.CartRepository {
	return &redisCartRepository{client: client, ttl: ttl}
}

func (r *redisCartRepository) Add(ctx context.Context, userID string, line domain.CartLine) error {
	key := redisInfra.CartKey(userID)

	existing, err := r.client.HGet(ctx, key, line.ListingID).Result()
	if err != nil && err != goredis.Nil {
		return fmt.Errorf("failed to read cart line: %w", err)
	}
	if err == nil {
		var current domain.CartLine
		if err := json.Unmarshal([]byte(existing), &current); err != nil {
			return fmt.Errorf("failed to decode cart line: %w", err)
		}
		line.Quantity += current.Quantity
		// Merging keeps the line at its original position in the cart.
		line.AddedAt = current.AddedAt
	}

	return r.writeLine(ctx, key, line)
}

func (r *redisCartRepository) Get(ctx context.Context, userID string) ([]domain.CartLine, error) {
	values, err := r.client.HGetAll(ctx, redisInfra.CartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(values))
	for _, raw := range values {
		var line domain.CartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("failed to decode cart line: %w", err)
		}
		lines = append(lines, line)
	}
	// HGetAll yields fields in arbitrary order; restore insertion order.
	domain.SortCartLines(lines)
	return lines, nil
}

func (r *redisCartRepository) SetQuantity(ctx context.Context, userID, listingID string, quantity int64) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, listingID)
	}

	key := redisInfra.CartKey(userID)
	raw, err := r.client.HGet(ctx, key, listingID).Result()
	if err == goredis.Nil {
		return domain.ErrInvalidCartLine
	}
	if err != nil {
		return fmt.Errorf("failed to read cart line: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return fmt.Errorf("failed to decode cart line: %w", err)
	}
	line.Quantity = quantity

	return r.writeLine(ctx, key, line)
}

func (r *redisCartRepository) Remove(ctx context.Context, userID, listingID string) error {
	if err := r.client.HDel(ctx, redisInfra.CartKey(userID), listingID).Err(); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

func (r *redisCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, redisInfra.CartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *redisCartRepository) writeLine(ctx context.Context, key string, line domain.CartLine) error {
	payload, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode cart line: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, line.ListingID, payload)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cart line: %w", err)
	}
	return nil
}
