package auth

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"promptvault/internal/apperr"
)

const MinPasswordLen = 6

var (
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
)

// Service is the credential store and session issuer.
type Service struct {
	users UserRepository
	jwt   *JWT
	cost  int

	// compared against for unknown emails so both failure paths cost one bcrypt run
	dummyHash string
}

func NewService(users UserRepository, jwtSvc *JWT, cost int) (*Service, error) {
	dummy, err := HashPassword("promptvault-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{users: users, jwt: jwtSvc, cost: cost, dummyHash: dummy}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input before checking uniqueness, then stores a bcrypt
// hash of the password.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, MinPasswordLen)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.FindByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Principal{}, err
	}
	if u == nil {
		ComparePassword(s.dummyHash, password)
		return Principal{}, ErrInvalidCredentials
	}
	if !ComparePassword(u.PasswordHash, password) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{ID: u.ID, Email: u.Email}, nil
}

func (s *Service) IssueToken(p Principal) (string, error) {
	return s.jwt.Sign(p)
}

func (s *Service) ValidateToken(token string) (Principal, error) {
	return s.jwt.Verify(token)
}
