package repository

import (
	"context"
	"sync"
	"time"

	domainRepo "inventory-tracker/internal/domain/repository"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. Sessions do not
// survive a restart.
func NewMemorySessionRepository() domainRepo.SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *memorySessionRepository) Save(_ context.Context, username, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionKey(username, tokenID)] = r.now().Add(ttl)
	return nil
}

func (r *memorySessionRepository) Exists(_ context.Context, username, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey(username, tokenID)
	expiresAt, ok := r.sessions[key]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expiresAt) {
		delete(r.sessions, key)
		return false, nil
	}
	return true, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, username, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey(username, tokenID))
	return nil
}
