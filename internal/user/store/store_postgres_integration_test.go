//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hackportal/internal/user/models"
	"hackportal/internal/user/store"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "project_registrations", "projects", "users"))
}

func (s *PostgresStoreSuite) createUser(address string, admin bool) *models.User {
	u, err := models.NewUser(id.NewUserID(), address, "", time.Now())
	s.Require().NoError(err)
	u.IsAdmin = admin
	s.Require().NoError(s.store.CreateIfEmailAvailable(context.Background(), u))
	return u
}

func (s *PostgresStoreSuite) TestEmailUniquenessIsCaseInsensitive() {
	ctx := context.Background()
	s.createUser("case@final.co.il", false)

	dup := &models.User{ID: id.NewUserID(), Email: "CASE@final.co.il", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.ErrorIs(s.store.CreateIfEmailAvailable(ctx, dup), sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByEmail(ctx, "Case@Final.co.il")
	s.Require().NoError(err)
	s.Equal("case@final.co.il", found.Email)
}

// TestConcurrentDemotionKeepsOneAdmin races two demotions against row locks.
func (s *PostgresStoreSuite) TestConcurrentDemotionKeepsOneAdmin() {
	ctx := context.Background()
	first := s.createUser("first@final.co.il", true)
	second := s.createUser("second@final.co.il", true)

	guard := func(target *models.User, adminCount int) error {
		if target.IsAdmin && adminCount <= 1 {
			return dErrors.New(dErrors.CodeLastAdminProtected, "cannot remove the last admin")
		}
		return nil
	}

	var wg sync.WaitGroup
	var successCount, protectedCount atomic.Int32
	for _, target := range []id.UserID{first.ID, second.ID} {
		wg.Add(1)
		go func(target id.UserID) {
			defer wg.Done()
			_, err := s.store.UpdateAdmin(ctx, target, false, guard)
			switch {
			case err == nil:
				successCount.Add(1)
			case dErrors.HasCode(err, dErrors.CodeLastAdminProtected):
				protectedCount.Add(1)
			}
		}(target)
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(1), protectedCount.Load())
	n, err := s.store.CountAdmins(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestUpdateAdminUnknownUser() {
	_, err := s.store.UpdateAdmin(context.Background(), id.NewUserID(), true, nil)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
