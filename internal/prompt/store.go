package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptvault/internal/apperr"
)

// ErrDuplicateID is returned when an insert reuses an existing prompt id.
var ErrDuplicateID = fmt.Errorf("%w: prompt id already exists", apperr.ErrConflict)

// ErrNotFound means no prompt with that id is owned by the caller.
var ErrNotFound = fmt.Errorf("%w: prompt not found", apperr.ErrNotFound)

// Repository is the owner-scoped prompt store. Every method filters by
// ownerID; rows of other users are invisible.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Prompt, error)
	// GetByOwnerAndID returns ErrNotFound for missing and foreign rows alike.
	GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*Prompt, error)
	Insert(ctx context.Context, p *Prompt) error
	DeleteByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) error
	// UpdateByOwner loads the owned row, lets apply mutate it and saves it
	// atomically. apply's error aborts the update.
	UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, apply func(*Prompt) error) (*Prompt, error)
}

// Store is the GORM/Postgres Repository.
type Store struct {
	DB *gorm.DB
}

func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Prompt, error) {
	var rows []Prompt
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*Prompt, error) {
	var p Prompt
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Insert is a plain INSERT; it never overwrites an existing row.
func (s *Store) Insert(ctx context.Context, p *Prompt) error {
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// DeleteByOwnerAndID removes at most one row. Missing or foreign ids are
// not an error.
func (s *Store) DeleteByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&Prompt{}).Error
}

func (s *Store) UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, apply func(*Prompt) error) (*Prompt, error) {
	var p Prompt
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := apply(&p); err != nil {
			return err
		}

		// Select("*") writes nil optionals back as NULL.
		return tx.Model(&p).Select("*").Omit("id", "user_id", "created_at").Updates(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
