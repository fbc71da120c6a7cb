package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"promptvault/internal/auth"
	"promptvault/internal/db"
	"promptvault/internal/prompt"
)

// PostgresSuite runs the GORM stores against a real database. It drops and
// recreates the schema, so point PROMPTVAULT_TEST_DATABASE_URL at a
// throwaway database.
type PostgresSuite struct {
	suite.Suite
	ctx     context.Context
	users   *auth.UserStore
	prompts *prompt.Store
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("PROMPTVAULT_TEST_DATABASE_URL") == "" {
		t.Skip("PROMPTVAULT_TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupTest() {
	s.ctx = context.Background()
	gdb, err := db.Connect(s.ctx, os.Getenv("PROMPTVAULT_TEST_DATABASE_URL"), db.Options{MaxConns: 4})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close(gdb) })

	s.Require().NoError(gdb.Exec(`drop table if exists prompts, users, migrations cascade`).Error)
	// legacy single-user table
	s.Require().NoError(gdb.Exec(`create table prompts (id uuid primary key, content text not null)`).Error)

	s.Require().NoError(db.Migrate(gdb))
	s.Require().NoError(db.Migrate(gdb), "migrations are idempotent")
	s.True(gdb.Migrator().HasColumn("prompts", "user_id"), "legacy prompts table replaced")

	s.users = &auth.UserStore{DB: gdb}
	s.prompts = &prompt.Store{DB: gdb}
}

func (s *PostgresSuite) newUser(email string) uuid.UUID {
	u := &auth.User{Email: email, PasswordHash: "x"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u.ID
}

func (s *PostgresSuite) TestUserUniqueEmail() {
	s.newUser("a@b.com")
	err := s.users.Create(s.ctx, &auth.User{Email: "a@b.com", PasswordHash: "y"})
	s.ErrorIs(err, auth.ErrEmailTaken)

	u, err := s.users.FindByEmail(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.Require().NotNil(u)

	u, err = s.users.FindByEmail(s.ctx, "nobody@b.com")
	s.Require().NoError(err)
	s.Nil(u)
}

func (s *PostgresSuite) TestPromptRoundTrip() {
	owner := s.newUser("owner@b.com")
	other := s.newUser("other@b.com")
	now := time.Now().UTC().Truncate(time.Microsecond)

	older := &prompt.Prompt{ID: uuid.New(), UserID: owner, Content: "old", Title: "old",
		Tags: []string{"a", "a"}, CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)}
	newer := &prompt.Prompt{ID: uuid.New(), UserID: owner, Content: "new", Title: "new",
		CreatedAt: now, UpdatedAt: now}
	foreign := &prompt.Prompt{ID: uuid.New(), UserID: other, Content: "x", Title: "x",
		CreatedAt: now, UpdatedAt: now}
	for _, p := range []*prompt.Prompt{older, newer, foreign} {
		s.Require().NoError(s.prompts.Insert(s.ctx, p))
	}

	s.ErrorIs(s.prompts.Insert(s.ctx, older), prompt.ErrDuplicateID)

	list, err := s.prompts.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal([]string{"a", "a"}, []string(list[1].Tags))
	s.Nil(list[1].Context, "absent optionals stay NULL")
	s.Nil(list[1].Rating)

	got, err := s.prompts.GetByOwnerAndID(s.ctx, owner, older.ID)
	s.Require().NoError(err)
	s.Equal("old", got.Content)
	_, err = s.prompts.GetByOwnerAndID(s.ctx, other, older.ID)
	s.ErrorIs(err, prompt.ErrNotFound)

	s.NoError(s.prompts.DeleteByOwnerAndID(s.ctx, other, older.ID))
	list, err = s.prompts.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(list, 2)

	s.NoError(s.prompts.DeleteByOwnerAndID(s.ctx, owner, older.ID))
	s.NoError(s.prompts.DeleteByOwnerAndID(s.ctx, owner, older.ID))
	list, err = s.prompts.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresSuite) TestUpdateByOwner() {
	owner := s.newUser("owner@b.com")
	other := s.newUser("other@b.com")
	ctxText := "ctx"
	p := &prompt.Prompt{ID: uuid.New(), UserID: owner, Content: "c", Title: "t", Context: &ctxText}
	s.Require().NoError(s.prompts.Insert(s.ctx, p))

	_, err := s.prompts.UpdateByOwner(s.ctx, other, p.ID, func(*prompt.Prompt) error { return nil })
	s.ErrorIs(err, prompt.ErrNotFound)

	got, err := s.prompts.UpdateByOwner(s.ctx, owner, p.ID, func(row *prompt.Prompt) error {
		row.Content = "changed"
		row.Context = nil
		return nil
	})
	s.Require().NoError(err)
	s.Equal("changed", got.Content)

	list, err := s.prompts.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("changed", list[0].Content)
	s.Nil(list[0].Context)
}
