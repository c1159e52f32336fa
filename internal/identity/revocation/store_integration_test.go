//go:build integration

package revocation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hackportal/internal/identity/revocation"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/testutil/containers"
)

type revocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type SharedTRLSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	postgres *containers.PostgresContainer
}

func TestSharedTRLSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SharedTRLSuite))
}

func (s *SharedTRLSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *SharedTRLSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))
	s.Require().NoError(s.postgres.TruncateTables(ctx, "token_revocations"))
}

func (s *SharedTRLSuite) lists() map[string]revocationList {
	return map[string]revocationList{
		"redis":    revocation.NewRedisTRL(s.redis.Client),
		"postgres": revocation.NewPostgresTRL(s.postgres.DB, nil),
	}
}

func (s *SharedTRLSuite) TestRevokeAndCheck() {
	ctx := context.Background()
	for name, trl := range s.lists() {
		s.Run(name, func() {
			revoked, err := trl.IsRevoked(ctx, name+"-jti")
			s.Require().NoError(err)
			s.False(revoked)

			s.Require().NoError(trl.RevokeToken(ctx, name+"-jti", time.Minute))
			s.Require().NoError(trl.RevokeToken(ctx, name+"-jti", time.Minute), "revoking twice is harmless")

			revoked, err = trl.IsRevoked(ctx, name+"-jti")
			s.Require().NoError(err)
			s.True(revoked)
		})
	}
}

func (s *SharedTRLSuite) TestRejectsNonPositiveTTL() {
	for name, trl := range s.lists() {
		s.Run(name, func() {
			err := trl.RevokeToken(context.Background(), "jti", 0)
			s.True(errors.Is(err, sentinel.ErrInvalidState))
		})
	}
}

func (s *SharedTRLSuite) TestPostgresPurgeExpired() {
	ctx := context.Background()
	now := time.Now()
	trl := revocation.NewPostgresTRL(s.postgres.DB, func() time.Time { return now })
	s.Require().NoError(trl.RevokeToken(ctx, "short", time.Second))
	s.Require().NoError(trl.RevokeToken(ctx, "long", time.Hour))

	now = now.Add(time.Minute)
	revoked, err := trl.IsRevoked(ctx, "short")
	s.Require().NoError(err)
	s.False(revoked, "expired entries no longer count")

	n, err := trl.PurgeExpired(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	revoked, err = trl.IsRevoked(ctx, "long")
	s.Require().NoError(err)
	s.True(revoked)
}
