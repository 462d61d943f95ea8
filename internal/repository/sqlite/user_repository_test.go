package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/repository/sqlite"
	"github.com/chunkrecall/trainer/internal/testutil"
)

type UserRepositorySuite struct {
	suite.Suite
	db       *sql.DB
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.users = sqlite.NewUserRepository(s.db)
	s.sessions = sqlite.NewSessionRepository(s.db)
}

func (s *UserRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *UserRepositorySuite) TestUpsertIsIdempotentPerUID() {
	ctx := context.Background()

	first, err := s.users.Upsert(ctx, "uid-1", "a@example.com", "A")
	s.Require().NoError(err)
	second, err := s.users.Upsert(ctx, "uid-1", "a+new@example.com", "A2")
	s.Require().NoError(err)

	s.Assert().Equal(first.ID, second.ID)
	s.Assert().Equal("a+new@example.com", second.Email)
	s.Assert().Equal("A2", second.DisplayName)
	s.Assert().Nil(second.LastLoginAt)

	byEmail, err := s.users.GetByEmail(ctx, "A+NEW@example.com")
	s.Require().NoError(err)
	s.Assert().Equal(first.ID, byEmail.ID)

	all, err := s.users.List(ctx)
	s.Require().NoError(err)
	s.Assert().Len(all, 1)
}

func (s *UserRepositorySuite) TestTouchLogin() {
	ctx := context.Background()
	u, err := s.users.Upsert(ctx, "uid-1", "a@example.com", "")
	s.Require().NoError(err)

	at := time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC)
	s.Require().NoError(s.users.TouchLogin(ctx, u.ID, at))

	got, err := s.users.Get(ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.LastLoginAt)
	s.Assert().True(at.Equal(*got.LastLoginAt))

	_, err = s.users.Get(ctx, 404)
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *UserRepositorySuite) TestSessionLifecycle() {
	ctx := context.Background()
	u, err := s.users.Upsert(ctx, "uid-1", "a@example.com", "")
	s.Require().NoError(err)

	now := time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC)
	s.Require().NoError(s.sessions.Create(ctx, models.Session{Token: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}))
	s.Require().NoError(s.sessions.Create(ctx, models.Session{Token: "stale", UserID: u.ID, ExpiresAt: now.Add(-time.Minute)}))

	s.Require().NoError(s.sessions.SetAPIKey(ctx, "live", "sk-test"))
	live, err := s.sessions.Get(ctx, "live")
	s.Require().NoError(err)
	s.Assert().Equal("sk-test", live.OpenAIAPIKey)
	s.Assert().True(now.Add(time.Hour).Equal(live.ExpiresAt))

	n, err := s.sessions.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	_, err = s.sessions.Get(ctx, "stale")
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.sessions.Delete(ctx, "live"))
	_, err = s.sessions.Get(ctx, "live")
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	s.Assert().ErrorIs(s.sessions.SetAPIKey(ctx, "live", "sk"), repository.ErrNotFound)
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}
