package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/rentauthsvc/domain"
)

// MockChallengeStore implements domain.ChallengeStore interface for testing.
// The default behavior is a working in-memory single-use store.
type MockChallengeStore struct {
	PutFunc     func(ctx context.Context, challenge *domain.Challenge, ttl time.Duration) error
	ConsumeFunc func(ctx context.Context, id string) (*domain.Challenge, error)

	mu         sync.Mutex
	challenges map[string]*domain.Challenge
}

// NewMockChallengeStore creates a new MockChallengeStore with default behaviors
func NewMockChallengeStore() *MockChallengeStore {
	return &MockChallengeStore{challenges: make(map[string]*domain.Challenge)}
}

// Put stores a challenge
func (m *MockChallengeStore) Put(ctx context.Context, challenge *domain.Challenge, ttl time.Duration) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, challenge, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[challenge.ID] = challenge
	return nil
}

// Consume fetches and deletes a challenge in one step
func (m *MockChallengeStore) Consume(ctx context.Context, id string) (*domain.Challenge, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	challenge, ok := m.challenges[id]
	if !ok {
		return nil, domain.ErrInvalidChallenge
	}
	delete(m.challenges, id)
	return challenge, nil
}

// Compile-time interface compliance verification
var _ domain.ChallengeStore = (*MockChallengeStore)(nil)
