package tenant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store provides persistence for tenant profiles.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new tenant profile store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(tenantID string) string {
	return fmt.Sprintf("tenant:profile:%s", tenantID)
}

// Get retrieves a tenant profile. Returns ErrNotFound when the tenant has
// never been configured.
func (s *Store) Get(ctx context.Context, tenantID string) (Profile, error) {
	data, err := s.redis.Get(ctx, s.key(tenantID)).Bytes()
	if err == redis.Nil {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("tenant: get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("tenant: unmarshal profile: %w", err)
	}

	return p, nil
}

// Set saves a tenant profile.
func (s *Store) Set(ctx context.Context, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("tenant: marshal profile: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(p.TenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("tenant: set profile: %w", err)
	}

	return nil
}
