package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hackportal/internal/project/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
)

type ProjectStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestProjectStoreSuite(t *testing.T) {
	suite.Run(t, new(ProjectStoreSuite))
}

func (s *ProjectStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ProjectStoreSuite) newProject(title string, createdAt time.Time) *models.Project {
	creator := id.NewUserID()
	p, err := models.NewProject(id.NewProjectID(), &models.ProjectInput{
		Title:       title,
		Description: "desc",
		MinTeamSize: 1,
		MaxTeamSize: 3,
		Environment: models.EnvironmentExternal,
	}, &creator, createdAt)
	s.Require().NoError(err)
	return p
}

func (s *ProjectStoreSuite) TestCRUD() {
	p := s.newProject("Chatbot", time.Now())
	s.Require().NoError(s.store.Create(s.ctx, p))

	s.Run("stored values are isolated from the caller", func() {
		p.Title = "mutated"
		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Chatbot", found.Title)
	})

	s.Run("update", func() {
		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		found.MaxTeamSize = 6
		s.Require().NoError(s.store.Update(s.ctx, found))

		again, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(6, again.MaxTeamSize)
	})

	s.Run("delete then lookups miss", func() {
		s.Require().NoError(s.store.Delete(s.ctx, p.ID))
		_, err := s.store.FindByID(s.ctx, p.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.store.Delete(s.ctx, p.ID), sentinel.ErrNotFound)
		s.ErrorIs(s.store.Update(s.ctx, p), sentinel.ErrNotFound)
	})
}

func (s *ProjectStoreSuite) TestListNewestFirst() {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	older := s.newProject("older", base)
	newer := s.newProject("newer", base.Add(time.Hour))
	s.Require().NoError(s.store.Create(s.ctx, older))
	s.Require().NoError(s.store.Create(s.ctx, newer))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}
