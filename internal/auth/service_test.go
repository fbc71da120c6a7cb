package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"promptvault/internal/apperr"
	"promptvault/internal/auth"
	"promptvault/internal/auth/authtest"
)

func newService(t *testing.T) (*auth.Service, *authtest.Users) {
	t.Helper()
	users := authtest.NewUsers()
	svc, err := auth.NewService(users, auth.NewJWT("test-secret", time.Hour), bcrypt.MinCost)
	require.NoError(t, err)
	return svc, users
}

func TestRegister_NormalizesEmailAndHashes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  A@B.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, auth.ComparePassword(u.PasswordHash, "secret1"))
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "A@B.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@b.COM", "another1")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 1, users.Len())
}

func TestRegister_PasswordLength(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "short@b.com", "12345")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, "ok@b.com", "123456")
	assert.NoError(t, err)
}

func TestRegister_ValidationBeforeUniqueness(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	// taken email with a short password reports the validation failure
	_, err = svc.Register(ctx, "a@b.com", "123")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NotErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "   ", "secret1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A@B.com", "secret1")
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "a@b.com", p.Email)

	_, err = svc.Authenticate(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestFindByEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	u, err := svc.FindByEmail(ctx, " A@B.COM")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "a@b.com", u.Email)

	u, err = svc.FindByEmail(ctx, "missing@b.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	p, err := svc.Authenticate(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	token, err := svc.IssueToken(p)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
