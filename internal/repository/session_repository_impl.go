package repository

import (
	"context"
	"fmt"
	"time"

	domainRepo "inventory-tracker/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) domainRepo.SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(username, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", username, tokenID)
}

func (r *sessionRepository) Save(ctx context.Context, username, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(username, tokenID), "valid", ttl).Err()
}

func (r *sessionRepository) Exists(ctx context.Context, username, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(username, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepository) Delete(ctx context.Context, username, tokenID string) error {
	return r.client.Del(ctx, sessionKey(username, tokenID)).Err()
}
