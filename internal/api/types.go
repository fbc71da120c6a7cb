// Package api defines the JSON shapes of the HTTP API, shared by the server
// handlers and the client.
package api

import (
	"time"

	"github.com/google/uuid"

	"promptvault/internal/prompt"
)

// Prompt is the wire form of a stored prompt. Absent optional fields are
// omitted rather than sent as null.
type Prompt struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Title       string    `json:"title"`
	Context     *string   `json:"context,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	AITool      *string   `json:"aiTool,omitempty"`
	UseCase     *string   `json:"useCase,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	FromImage   bool      `json:"fromImage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft is the create request body.
type Draft struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	Content     string     `json:"content"`
	Title       string     `json:"title,omitempty"`
	Context     *string    `json:"context,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	AITool      *string    `json:"aiTool,omitempty"`
	UseCase     *string    `json:"useCase,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	FromImage   bool       `json:"fromImage,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Patch is the update request body; omitted fields are left unchanged.
type Patch struct {
	Content     *string   `json:"content,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Context     *string   `json:"context,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	AITool      *string   `json:"aiTool,omitempty"`
	UseCase     *string   `json:"useCase,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	ClearRating bool      `json:"clearRating,omitempty"`
	FromImage   *bool     `json:"fromImage,omitempty"`
}

type Export struct {
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
	Prompts    []Prompt  `json:"prompts"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func FromPrompt(p prompt.Prompt) Prompt {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Prompt{
		ID:          p.ID.String(),
		Content:     p.Content,
		Title:       p.Title,
		Context:     p.Context,
		Description: p.Description,
		Tags:        tags,
		AITool:      p.AITool,
		UseCase:     p.UseCase,
		Rating:      p.Rating,
		FromImage:   p.FromImage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromPrompts(list []prompt.Prompt) []Prompt {
	out := make([]Prompt, 0, len(list))
	for _, p := range list {
		out = append(out, FromPrompt(p))
	}
	return out
}

// ToPrompt converts a wire prompt back to the domain type. Unparseable ids
// become uuid.Nil.
func ToPrompt(p Prompt) prompt.Prompt {
	id, _ := uuid.Parse(p.ID)
	return prompt.Prompt{
		ID:          id,
		Content:     p.Content,
		Title:       p.Title,
		Context:     p.Context,
		Description: p.Description,
		Tags:        p.Tags,
		AITool:      p.AITool,
		UseCase:     p.UseCase,
		Rating:      p.Rating,
		FromImage:   p.FromImage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d Draft) ToDraft() prompt.Draft {
	return prompt.Draft{
		ID:          d.ID,
		OwnerID:     d.UserID,
		Content:     d.Content,
		Title:       d.Title,
		Context:     d.Context,
		Description: d.Description,
		Tags:        d.Tags,
		AITool:      d.AITool,
		UseCase:     d.UseCase,
		Rating:      d.Rating,
		FromImage:   d.FromImage,
		CreatedAt:   d.CreatedAt,
	}
}

func (p Patch) ToPatch() prompt.Patch {
	return prompt.Patch{
		Content:     p.Content,
		Title:       p.Title,
		Context:     p.Context,
		Description: p.Description,
		Tags:        p.Tags,
		AITool:      p.AITool,
		UseCase:     p.UseCase,
		Rating:      p.Rating,
		ClearRating: p.ClearRating,
		FromImage:   p.FromImage,
	}
}
