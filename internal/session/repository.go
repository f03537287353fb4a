package session

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("session not found")

type Repository interface {
	Get(userID int) (Profile, error)
	Put(profile Profile) error
	Clear(userID int) error
}

// InMemoryRepository keeps sessions in process memory. It backs local
// development and the test suite; production wires the Postgres variant.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int]Profile
}

func NewInMemoryRepository(seed []Profile) *InMemoryRepository {
	repo := &InMemoryRepository{profiles: make(map[int]Profile, len(seed))}
	for _, p := range seed {
		repo.profiles[p.UserID] = p
	}
	return repo
}

func (r *InMemoryRepository) Get(userID int) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Put(profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.UserID] = profile
	return nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.profiles, userID)
	return nil
}
