package prompt

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns the caller's prompts, most recently updated first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Prompt, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one of the caller's prompts.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Prompt, error) {
	return s.repo.GetByOwnerAndID(ctx, ownerID, id)
}

// Create validates the draft, forces ownership to ownerID and inserts it.
// The returned Prompt is exactly what was stored.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, d Draft) (*Prompt, error) {
	p, err := normalizeDraft(d, ownerID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (*Prompt, error) {
	now := s.now()
	return s.repo.UpdateByOwner(ctx, ownerID, id, func(p *Prompt) error {
		return applyPatch(p, patch, now)
	})
}

// Delete succeeds whether or not an owned row existed.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteByOwnerAndID(ctx, ownerID, id)
}

type Export struct {
	ExportedAt time.Time
	Prompts    []Prompt
}

// Export snapshots the caller's library for download.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID) (Export, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return Export{}, err
	}
	return Export{ExportedAt: s.now().UTC(), Prompts: rows}, nil
}

// ExportFilename is the attachment name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "prompt-library-" + t.UTC().Format("2006-01-02") + ".json"
}
