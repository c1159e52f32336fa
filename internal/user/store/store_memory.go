package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackportal/internal/user/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
)

// InMemory is a map-backed user store guarded by one mutex.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) CreateIfEmailAvailable(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return fmt.Errorf("email %s: %w", user.Email, sentinel.ErrAlreadyUsed)
	}
	if _, taken := s.users[user.ID]; taken {
		return fmt.Errorf("user id: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[userID]
	return &cp, nil
}

// List returns users ordered by email.
func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *InMemory) CountAdmins(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countAdminsLocked(), nil
}

func (s *InMemory) countAdminsLocked() int {
	n := 0
	for _, u := range s.users {
		if u.IsAdmin {
			n++
		}
	}
	return n
}

// UpdateAdmin runs guard and the write under the store lock.
func (s *InMemory) UpdateAdmin(_ context.Context, userID id.UserID, isAdmin bool, guard models.AdminGuard) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if guard != nil {
		snapshot := *u
		if err := guard(&snapshot, s.countAdminsLocked()); err != nil {
			return nil, err
		}
	}
	if u.IsAdmin != isAdmin {
		u.IsAdmin = isAdmin
		u.UpdatedAt = nowFunc()
	}
	cp := *u
	return &cp, nil
}
