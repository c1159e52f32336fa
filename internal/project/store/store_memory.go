// Package store persists projects in memory or PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackportal/internal/project/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
)

// InMemory is a map-backed project store.
type InMemory struct {
	mu       sync.RWMutex
	projects map[id.ProjectID]*models.Project
}

func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[id.ProjectID]*models.Project)}
}

func clone(p *models.Project) *models.Project {
	cp := *p
	if p.CreatorID != nil {
		creator := *p.CreatorID
		cp.CreatorID = &creator
	}
	return &cp
}

func (s *InMemory) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[project.ID]; exists {
		return fmt.Errorf("project %s: %w", project.ID, sentinel.ErrAlreadyUsed)
	}
	s.projects[project.ID] = clone(project)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func (s *InMemory) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.projects[project.ID] = clone(project)
	return nil
}

func (s *InMemory) Delete(_ context.Context, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.projects, projectID)
	return nil
}

// List returns projects newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, clone(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
