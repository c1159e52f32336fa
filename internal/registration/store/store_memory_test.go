package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/sentinel"
)

type RegistrationStoreSuite struct {
	suite.Suite
	store   *InMemory
	ctx     context.Context
	project id.ProjectID
}

func TestRegistrationStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistrationStoreSuite))
}

func (s *RegistrationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.project = id.NewProjectID()
}

func (s *RegistrationStoreSuite) reg(userID id.UserID) *models.Registration {
	return &models.Registration{ProjectID: s.project, UserID: userID, CreatedAt: time.Now()}
}

func (s *RegistrationStoreSuite) TestInsertFindDelete() {
	user := id.NewUserID()
	s.Require().NoError(s.store.Insert(s.ctx, s.reg(user)))

	found, err := s.store.Find(s.ctx, s.project, user)
	s.Require().NoError(err)
	s.Equal(user, found.UserID)

	s.ErrorIs(s.store.Insert(s.ctx, s.reg(user)), sentinel.ErrAlreadyUsed)

	removed, err := s.store.Delete(s.ctx, s.project, user)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(s.ctx, s.project, user)
	s.Require().NoError(err)
	s.False(removed, "second delete is a no-op")

	_, err = s.store.Find(s.ctx, s.project, user)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistrationStoreSuite) TestConcurrentInsertSamePair() {
	user := id.NewUserID()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(s.ctx, s.reg(user))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyUsed) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
	n, err := s.store.Count(s.ctx, s.project)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RegistrationStoreSuite) TestInsertWithinCapacity() {
	const limit = 3
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, fullCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.InsertWithinCapacity(s.ctx, s.reg(id.NewUserID()), limit)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrInvalidState) {
				fullCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(limit), successCount.Load())
	s.Equal(int32(goroutines-limit), fullCount.Load())
}

func (s *RegistrationStoreSuite) TestCountsAndListings() {
	other := id.NewProjectID()
	alice, bob := id.NewUserID(), id.NewUserID()
	s.Require().NoError(s.store.Insert(s.ctx, s.reg(alice)))
	s.Require().NoError(s.store.Insert(s.ctx, s.reg(bob)))
	s.Require().NoError(s.store.Insert(s.ctx, &models.Registration{ProjectID: other, UserID: alice, CreatedAt: time.Now()}))

	counts, err := s.store.CountByProjects(s.ctx, []id.ProjectID{s.project, other, id.NewProjectID()})
	s.Require().NoError(err)
	s.Equal(2, counts[s.project])
	s.Equal(1, counts[other])
	s.Len(counts, 3, "unknown projects report zero")

	mine, err := s.store.ProjectsForUser(s.ctx, alice)
	s.Require().NoError(err)
	s.True(mine[s.project])
	s.True(mine[other])

	list, err := s.store.ListByProject(s.ctx, s.project)
	s.Require().NoError(err)
	s.Len(list, 2)

	s.Require().NoError(s.store.DeleteByProject(s.ctx, s.project))
	n, err := s.store.Count(s.ctx, s.project)
	s.Require().NoError(err)
	s.Zero(n)
}
