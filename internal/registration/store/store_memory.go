// Package store persists project registrations in memory or PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
)

// InMemory keeps registrations per project. The map key pair is the
// uniqueness constraint.
type InMemory struct {
	mu        sync.RWMutex
	byProject map[id.ProjectID]map[id.UserID]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{byProject: make(map[id.ProjectID]map[id.UserID]time.Time)}
}

func (s *InMemory) Find(_ context.Context, projectID id.ProjectID, userID id.UserID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	createdAt, ok := s.byProject[projectID][userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.Registration{ProjectID: projectID, UserID: userID, CreatedAt: createdAt}, nil
}

func (s *InMemory) Insert(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(reg)
}

// InsertWithinCapacity inserts only while the project has fewer than limit
// registrations. A full project yields sentinel.ErrInvalidState.
func (s *InMemory) InsertWithinCapacity(_ context.Context, reg *models.Registration, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byProject[reg.ProjectID][reg.UserID]; exists {
		return fmt.Errorf("registration: %w", sentinel.ErrAlreadyUsed)
	}
	if len(s.byProject[reg.ProjectID]) >= limit {
		return fmt.Errorf("project full: %w", sentinel.ErrInvalidState)
	}
	return s.insertLocked(reg)
}

func (s *InMemory) insertLocked(reg *models.Registration) error {
	users, ok := s.byProject[reg.ProjectID]
	if !ok {
		users = make(map[id.UserID]time.Time)
		s.byProject[reg.ProjectID] = users
	}
	if _, exists := users[reg.UserID]; exists {
		return fmt.Errorf("registration: %w", sentinel.ErrAlreadyUsed)
	}
	users[reg.UserID] = reg.CreatedAt
	return nil
}

// Delete removes the registration if present and reports whether it did.
func (s *InMemory) Delete(_ context.Context, projectID id.ProjectID, userID id.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.byProject[projectID]
	if !ok {
		return false, nil
	}
	if _, exists := users[userID]; !exists {
		return false, nil
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(s.byProject, projectID)
	}
	return true, nil
}

// DeleteByProject drops every registration of a deleted project.
func (s *InMemory) DeleteByProject(_ context.Context, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byProject, projectID)
	return nil
}

func (s *InMemory) Count(_ context.Context, projectID id.ProjectID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byProject[projectID]), nil
}

// CountByProjects returns a count for every requested project, zero included.
func (s *InMemory) CountByProjects(_ context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.ProjectID]int, len(projectIDs))
	for _, projectID := range projectIDs {
		out[projectID] = len(s.byProject[projectID])
	}
	return out, nil
}

// ListByProject returns registrations oldest first.
func (s *InMemory) ListByProject(_ context.Context, projectID id.ProjectID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := s.byProject[projectID]
	out := make([]*models.Registration, 0, len(users))
	for userID, createdAt := range users {
		out = append(out, &models.Registration{ProjectID: projectID, UserID: userID, CreatedAt: createdAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID.String() < out[j].UserID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ProjectsForUser returns the set of projects userID is registered for.
func (s *InMemory) ProjectsForUser(_ context.Context, userID id.UserID) (map[id.ProjectID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.ProjectID]bool)
	for projectID, users := range s.byProject {
		if _, ok := users[userID]; ok {
			out[projectID] = true
		}
	}
	return out, nil
}
