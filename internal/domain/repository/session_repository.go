package repository

import (
	"context"
	"time"
)

// SessionRepository tracks which issued access tokens are still live.
type SessionRepository interface {
	Save(ctx context.Context, username, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, username, tokenID string) (bool, error)
	Delete(ctx context.Context, username, tokenID string) error
}
