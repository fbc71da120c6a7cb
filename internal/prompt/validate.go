package prompt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"promptvault/internal/apperr"
)

const (
	titleRunes = 60
	minRating  = 1
	maxRating  = 5
)

// DefaultTitle returns the first 60 runes of content, with an ellipsis when
// content was longer.
func DefaultTitle(content string) string {
	if utf8.RuneCountInString(content) <= titleRunes {
		return content
	}
	return string([]rune(content)[:titleRunes]) + "…"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{apperr.ErrValidation}, args...)...)
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func checkRating(r *int) error {
	if r != nil && (*r < minRating || *r > maxRating) {
		return invalid("rating must be between %d and %d", minRating, maxRating)
	}
	return nil
}

// normalizeDraft validates d and builds the row to insert. Ownership is
// always ownerID. createdAt is kept when supplied but never after now.
func normalizeDraft(d Draft, ownerID uuid.UUID, now time.Time) (*Prompt, error) {
	id := uuid.New()
	if s := strings.TrimSpace(d.ID); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			return nil, invalid("id must be a uuid")
		}
		id = parsed
	}

	content := strings.TrimSpace(d.Content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if err := checkRating(d.Rating); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = DefaultTitle(content)
	}

	createdAt := now
	if d.CreatedAt != nil && !d.CreatedAt.IsZero() && d.CreatedAt.Before(now) {
		createdAt = *d.CreatedAt
	}

	return &Prompt{
		ID:          id,
		UserID:      ownerID,
		Content:     content,
		Title:       title,
		Context:     optional(d.Context),
		Description: optional(d.Description),
		Tags:        NormalizeTags(d.Tags),
		AITool:      optional(d.AITool),
		UseCase:     optional(d.UseCase),
		Rating:      d.Rating,
		FromImage:   d.FromImage,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// applyPatch validates p against the current row and mutates it in place.
// Nothing is changed when validation fails.
func applyPatch(cur *Prompt, p Patch, now time.Time) error {
	next := *cur

	if p.Content != nil {
		next.Content = strings.TrimSpace(*p.Content)
		if next.Content == "" {
			return invalid("content is required")
		}
	}
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
		if next.Title == "" {
			next.Title = DefaultTitle(next.Content)
		}
	}
	if p.Context != nil {
		next.Context = optional(p.Context)
	}
	if p.Description != nil {
		next.Description = optional(p.Description)
	}
	if p.Tags != nil {
		next.Tags = NormalizeTags(*p.Tags)
	}
	if p.AITool != nil {
		next.AITool = optional(p.AITool)
	}
	if p.UseCase != nil {
		next.UseCase = optional(p.UseCase)
	}
	switch {
	case p.ClearRating:
		next.Rating = nil
	case p.Rating != nil:
		if err := checkRating(p.Rating); err != nil {
			return err
		}
		r := *p.Rating
		next.Rating = &r
	}
	if p.FromImage != nil {
		next.FromImage = *p.FromImage
	}

	next.UpdatedAt = now.UTC()
	*cur = next
	return nil
}
