package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/rentauthsvc/domain"
)

// ChallengeStoreImpl implements domain.ChallengeStore using Redis. A single
// Redis instance (or cluster) backs every service node, so challenges stay
// single-use under horizontal scaling, unlike an in-process map.
type ChallengeStoreImpl struct {
	client *redis.Client
	prefix string
}

// NewChallengeStore creates a new challenge store
func NewChallengeStore(client *redis.Client) domain.ChallengeStore {
	return &ChallengeStoreImpl{
		client: client,
		prefix: "challenge:",
	}
}

// Put implements domain.ChallengeStore. Redis TTL handles expiry sweeps.
func (s *ChallengeStoreImpl) Put(ctx context.Context, challenge *domain.Challenge, ttl time.Duration) error {
	key := s.prefix + challenge.ID
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Consume implements domain.ChallengeStore. GETDEL fetches and removes the
// challenge in one atomic step, so two concurrent verification attempts for
// the same challenge can never both observe it.
func (s *ChallengeStoreImpl) Consume(ctx context.Context, id string) (*domain.Challenge, error) {
	key := s.prefix + id
	data, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrInvalidChallenge
		}
		return nil, err
	}

	var challenge domain.Challenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &challenge, nil
}
