// Package prompttest provides an in-memory prompt.Repository for tests.
package prompttest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"promptvault/internal/prompt"
)

type Repo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]prompt.Prompt

	// Err, when set, is returned by every call.
	Err error
}

func NewRepo() *Repo {
	return &Repo{rows: map[uuid.UUID]prompt.Prompt{}}
}

func (r *Repo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]prompt.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := []prompt.Prompt{}
	for _, p := range r.rows {
		if p.UserID == ownerID {
			out = append(out, clone(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *Repo) GetByOwnerAndID(_ context.Context, ownerID, id uuid.UUID) (*prompt.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	p, ok := r.rows[id]
	if !ok || p.UserID != ownerID {
		return nil, prompt.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (r *Repo) Insert(_ context.Context, p *prompt.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.rows[p.ID]; ok {
		return prompt.ErrDuplicateID
	}
	r.rows[p.ID] = clone(*p)
	return nil
}

func (r *Repo) DeleteByOwnerAndID(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if p, ok := r.rows[id]; ok && p.UserID == ownerID {
		delete(r.rows, id)
	}
	return nil
}

func (r *Repo) UpdateByOwner(_ context.Context, ownerID, id uuid.UUID, apply func(*prompt.Prompt) error) (*prompt.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	p, ok := r.rows[id]
	if !ok || p.UserID != ownerID {
		return nil, prompt.ErrNotFound
	}
	p = clone(p)
	if err := apply(&p); err != nil {
		return nil, err
	}
	r.rows[id] = clone(p)
	return &p, nil
}

// Len reports the number of stored rows across all owners.
func (r *Repo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func clone(p prompt.Prompt) prompt.Prompt {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
