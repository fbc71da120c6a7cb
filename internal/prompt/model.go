package prompt

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Prompt is one captured snippet. Optional columns are nil when absent so
// they persist as NULL.
type Prompt struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null"`
	Content     string         `gorm:"type:text;not null"`
	Title       string         `gorm:"type:text;not null"`
	Context     *string        `gorm:"type:text"`
	Description *string        `gorm:"type:text"`
	Tags        pq.StringArray `gorm:"type:text[];default:'{}'"`
	AITool      *string        `gorm:"column:ai_tool;type:text"`
	UseCase     *string        `gorm:"column:use_case;type:text"`
	Rating      *int
	FromImage   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"index;not null;default:now()"`
}

// Draft is a client-submitted prompt before validation. OwnerID is accepted
// so it can be ignored explicitly.
type Draft struct {
	ID          string
	OwnerID     string
	Content     string
	Title       string
	Context     *string
	Description *string
	Tags        []string
	AITool      *string
	UseCase     *string
	Rating      *int
	FromImage   bool
	CreatedAt   *time.Time
}

// Patch carries the fields to change on update; nil means unchanged. An
// empty string for an optional field clears it.
type Patch struct {
	Content     *string
	Title       *string
	Context     *string
	Description *string
	Tags        *[]string
	AITool      *string
	UseCase     *string
	Rating      *int
	ClearRating bool
	FromImage   *bool
}
