package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"marketplace/internal/domain"
	redisInfra "marketplace/internal/infrastructure/redis"
	"marketplace/internal/repository/session_repo"
)

type redisSessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *goredis.Client, ttl time.Duration) session_repo.SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

func (r *redisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisInfra.SessionKey(session.Token), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, redisInfra.SessionKey(token)).Result()
	if err == goredis.Nil {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(raw), session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, redisInfra.SessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
