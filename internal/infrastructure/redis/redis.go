package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

func NewClient(addr string, db int) (*rd.Client, error) {
	client := rd.NewClient(&rd.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// CartKey names the per-user cart hash.
func CartKey(userID string) string {
	return fmt.Sprintf("marketplace:cart:%s", userID)
}

// SessionKey maps a bearer token to its session record.
func SessionKey(token string) string {
	return fmt.Sprintf("marketplace:session:%s", token)
}

// RateLimitKey names the sliding-window set for one caller on one route group.
func RateLimitKey(scope, caller string) string {
	return fmt.Sprintf("marketplace:rate_limit:%s:%s", scope, caller)
}
