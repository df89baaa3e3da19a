package auth

import (
	"context"
	"sync"

	"shopfloor/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store for tests and local development.
type InMemory struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[int64]*User), nextID: 1}
}

func (s *InMemory) GetByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(ctx context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, sentinel.ErrConflict
		}
	}

	cp := *u
	cp.ID = s.nextID
	s.nextID++
	s.users[cp.ID] = &cp

	out := cp
	return &out, nil
}
