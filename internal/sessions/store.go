// Package sessions keeps the in-progress quiz session of each user.
package sessions

import (
	"context"
	"sync"

	"github.com/vytor/anatomyflash/internal/quiz"
)

// Store holds at most one quiz session per user. Sessions never expire.
type Store interface {
	// Get returns nil, nil when the user has no session.
	Get(ctx context.Context, userID string) (*quiz.Session, error)
	Save(ctx context.Context, userID string, s quiz.Session) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]quiz.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]quiz.Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*quiz.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Save stores s as is. Transitions never mutate a session in place, so the
// stored value is not shared with later versions.
func (m *MemoryStore) Save(_ context.Context, userID string, s quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
