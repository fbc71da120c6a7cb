package prompt_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"promptvault/internal/apperr"
	"promptvault/internal/prompt"
	"promptvault/internal/prompt/prompttest"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

type ServiceSuite struct {
	suite.Suite
	repo  *prompttest.Repo
	svc   *prompt.Service
	clock time.Time
	mu    sync.Mutex
	ctx   context.Context
	u1    uuid.UUID
	u2    uuid.UUID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.repo = prompttest.NewRepo()
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.svc = prompt.NewService(s.repo, prompt.WithClock(s.now))
	s.ctx = context.Background()
	s.u1 = uuid.New()
	s.u2 = uuid.New()
}

func (s *ServiceSuite) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(d)
}

func (s *ServiceSuite) TestCreateNormalizes() {
	in := prompt.Draft{
		ID:          uuid.NewString(),
		OwnerID:     s.u2.String(),
		Content:     "  Refactor this loop  ",
		Context:     strp("   "),
		Description: strp(" from a code review "),
		Tags:        []string{"Coding, Debug debug"},
		AITool:      strp("Cursor"),
		Rating:      intp(4),
	}

	p, err := s.svc.Create(s.ctx, s.u1, in)
	s.Require().NoError(err)

	s.Equal(in.ID, p.ID.String())
	s.Equal(s.u1, p.UserID, "ownership is forced to the caller")
	s.Equal("Refactor this loop", p.Content)
	s.Equal("Refactor this loop", p.Title)
	s.Nil(p.Context)
	s.Equal("from a code review", *p.Description)
	s.Equal([]string{"coding", "debug", "debug"}, []string(p.Tags))
	s.Equal("Cursor", *p.AITool)
	s.Nil(p.UseCase)
	s.Equal(4, *p.Rating)
	s.Equal(s.clock, p.CreatedAt)
	s.Equal(s.clock, p.UpdatedAt)
}

func (s *ServiceSuite) TestCreateGeneratesID() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "x"})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, p.ID)
}

func (s *ServiceSuite) TestCreateKeepsClientCreatedAt() {
	earlier := s.clock.Add(-48 * time.Hour)
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "offline", CreatedAt: &earlier})
	s.Require().NoError(err)
	s.Equal(earlier, p.CreatedAt)
	s.Equal(s.clock, p.UpdatedAt)

	future := s.clock.Add(time.Hour)
	p, err = s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "skewed", CreatedAt: &future})
	s.Require().NoError(err)
	s.Equal(s.clock, p.CreatedAt, "createdAt never exceeds updatedAt")
}

func (s *ServiceSuite) TestCreateValidation() {
	cases := []prompt.Draft{
		{Content: "   "},
		{Content: "x", ID: "not-a-uuid"},
		{Content: "x", Rating: intp(0)},
		{Content: "x", Rating: intp(6)},
	}
	for _, d := range cases {
		_, err := s.svc.Create(s.ctx, s.u1, d)
		s.ErrorIs(err, apperr.ErrValidation, "draft %+v", d)
	}
	s.Equal(0, s.repo.Len(), "nothing persisted on validation failure")
}

func (s *ServiceSuite) TestCreateDuplicateID() {
	id := uuid.NewString()
	_, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{ID: id, Content: "first"})
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.u1, prompt.Draft{ID: id, Content: "second"})
	s.ErrorIs(err, prompt.ErrDuplicateID)
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *ServiceSuite) TestListOrderAndScope() {
	a, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "older"})
	s.Require().NoError(err)
	s.advance(time.Minute)
	b, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "newer"})
	s.Require().NoError(err)
	_, err = s.svc.Create(s.ctx, s.u2, prompt.Draft{Content: "someone else"})
	s.Require().NoError(err)

	list, err := s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(b.ID, list[0].ID)
	s.Equal(a.ID, list[1].ID)

	other, err := s.svc.List(s.ctx, s.u2)
	s.Require().NoError(err)
	s.Require().Len(other, 1)
	s.Equal("someone else", other[0].Content)
}

func (s *ServiceSuite) TestCreateThenListHasFreshUpdatedAt() {
	requestTime := s.now()
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "hello", Tags: []string{"Coding, Debug debug"}})
	s.Require().NoError(err)

	list, err := s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(p.ID, list[0].ID)
	s.False(list[0].UpdatedAt.Before(requestTime))
	s.Equal([]string{"coding", "debug", "debug"}, []string(list[0].Tags))
}

func (s *ServiceSuite) TestDeleteIsOwnerScopedAndIdempotent() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "mine"})
	s.Require().NoError(err)

	s.NoError(s.svc.Delete(s.ctx, s.u2, p.ID))
	list, err := s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Len(list, 1, "another user's delete is a no-op")

	s.NoError(s.svc.Delete(s.ctx, s.u1, p.ID))
	s.NoError(s.svc.Delete(s.ctx, s.u1, p.ID))
	s.NoError(s.svc.Delete(s.ctx, s.u1, uuid.New()))

	list, err = s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ServiceSuite) TestUpdate() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "draft", Rating: intp(2), AITool: strp("Claude")})
	s.Require().NoError(err)
	s.advance(time.Hour)

	tags := []string{"Writing"}
	got, err := s.svc.Update(s.ctx, s.u1, p.ID, prompt.Patch{
		Content: strp(" final "),
		Tags:    &tags,
		AITool:  strp(""),
		Rating:  intp(5),
	})
	s.Require().NoError(err)
	s.Equal("final", got.Content)
	s.Equal("draft", got.Title, "title untouched unless patched")
	s.Equal([]string{"writing"}, []string(got.Tags))
	s.Nil(got.AITool)
	s.Equal(5, *got.Rating)
	s.Equal(p.CreatedAt, got.CreatedAt)
	s.Equal(s.clock, got.UpdatedAt)

	got, err = s.svc.Update(s.ctx, s.u1, p.ID, prompt.Patch{ClearRating: true, Title: strp("")})
	s.Require().NoError(err)
	s.Nil(got.Rating)
	s.Equal("final", got.Title)
}

func (s *ServiceSuite) TestUpdateOwnerScoped() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "mine"})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, s.u2, p.ID, prompt.Patch{Content: strp("hijacked")})
	s.ErrorIs(err, prompt.ErrNotFound)
	s.ErrorIs(err, apperr.ErrNotFound)

	list, err := s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Equal("mine", list[0].Content)
}

func (s *ServiceSuite) TestGetIsOwnerScoped() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "mine", Tags: []string{"a"}})
	s.Require().NoError(err)

	got, err := s.svc.Get(s.ctx, s.u1, p.ID)
	s.Require().NoError(err)
	s.Equal(*p, *got)

	_, err = s.svc.Get(s.ctx, s.u2, p.ID)
	s.ErrorIs(err, prompt.ErrNotFound)
	_, err = s.svc.Get(s.ctx, s.u1, uuid.New())
	s.ErrorIs(err, apperr.ErrNotFound)

	got.Tags[0] = "changed"
	again, err := s.svc.Get(s.ctx, s.u1, p.ID)
	s.Require().NoError(err)
	s.Equal([]string{"a"}, []string(again.Tags))
}

func (s *ServiceSuite) TestUpdateValidationLeavesRowUntouched() {
	p, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "keep"})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, s.u1, p.ID, prompt.Patch{Content: strp("  "), Title: strp("new")})
	s.ErrorIs(err, apperr.ErrValidation)

	_, err = s.svc.Update(s.ctx, s.u1, p.ID, prompt.Patch{Rating: intp(9)})
	s.ErrorIs(err, apperr.ErrValidation)

	list, err := s.svc.List(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Equal("keep", list[0].Content)
	s.Equal("keep", list[0].Title)
}

func (s *ServiceSuite) TestExport() {
	_, err := s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "one"})
	s.Require().NoError(err)
	_, err = s.svc.Create(s.ctx, s.u2, prompt.Draft{Content: "two"})
	s.Require().NoError(err)

	exp, err := s.svc.Export(s.ctx, s.u1)
	s.Require().NoError(err)
	s.Equal(s.clock, exp.ExportedAt)
	s.Require().Len(exp.Prompts, 1)
	s.Equal("one", exp.Prompts[0].Content)
	s.Equal("prompt-library-2026-03-01.json", prompt.ExportFilename(exp.ExportedAt))
}

func (s *ServiceSuite) TestStoreErrorsPropagate() {
	boom := errors.New("connection reset")
	s.repo.Err = boom

	_, err := s.svc.List(s.ctx, s.u1)
	s.ErrorIs(err, boom)
	_, err = s.svc.Create(s.ctx, s.u1, prompt.Draft{Content: "x"})
	s.ErrorIs(err, boom)
	s.ErrorIs(s.svc.Delete(s.ctx, s.u1, uuid.New()), boom)
	_, err = s.svc.Get(s.ctx, s.u1, uuid.New())
	s.ErrorIs(err, boom)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "short", prompt.DefaultTitle("short"))

	exact := strings.Repeat("a", 60)
	assert.Equal(t, exact, prompt.DefaultTitle(exact))

	long := strings.Repeat("é", 61)
	got := prompt.DefaultTitle(long)
	require.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, strings.Repeat("é", 60)+"…", got)
}
