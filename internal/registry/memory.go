package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"brandguard-platform/models"
)

// MemoryRegistry is a mutex-guarded in-memory registry. It backs tests and
// single-process deployments without MongoDB.
type MemoryRegistry struct {
	mu       sync.RWMutex
	profiles map[string]models.ClientProfile
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{profiles: make(map[string]models.ClientProfile)}
}

func (r *MemoryRegistry) Register(_ context.Context, profile models.ClientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ClientID]; exists {
		return ErrDuplicateClient
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ClientID] = profile
	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, clientID string) (models.ClientProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[clientID]
	if !exists {
		return models.ClientProfile{}, ErrUnknownClient
	}
	return profile, nil
}

func (r *MemoryRegistry) Update(_ context.Context, profile models.ClientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.profiles[profile.ClientID]
	if !exists {
		return ErrUnknownClient
	}

	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now()
	r.profiles[profile.ClientID] = profile
	return nil
}

func (r *MemoryRegistry) Deregister(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[clientID]; !exists {
		return ErrUnknownClient
	}
	delete(r.profiles, clientID)
	return nil
}

func (r *MemoryRegistry) List(_ context.Context) ([]models.ClientProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]models.ClientProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ClientID < profiles[j].ClientID
	})
	return profiles, nil
}
