// Package authtest provides an in-memory auth.UserRepository for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"promptvault/internal/auth"
)

type Users struct {
	mu      sync.Mutex
	byEmail map[string]auth.User
}

func NewUsers() *Users {
	return &Users{byEmail: map[string]auth.User{}}
}

func (m *Users) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[u.Email]; ok {
		return auth.ErrEmailTaken
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.byEmail[u.Email] = *u
	return nil
}

func (m *Users) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Len reports how many users are stored.
func (m *Users) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}
