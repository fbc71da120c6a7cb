package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"promptvault/internal/api"
	"promptvault/internal/apperr"
	"promptvault/internal/prompt"
)

// API is the subset of Client the controller drives.
type API interface {
	ListPrompts(ctx context.Context) ([]api.Prompt, error)
	CreatePrompt(ctx context.Context, d api.Draft) (api.Prompt, error)
	DeletePrompt(ctx context.Context, id string) error
}

// Form is what the capture surface collects. Tags is the raw input string.
type Form struct {
	Content     string
	Title       string
	Context     string
	Description string
	Tags        string
	AITool      string
	UseCase     string
	Rating      int
	FromImage   bool
}

// Controller holds the local copy of the caller's prompts. Save and Remove
// never touch the local list; call Refresh to observe their effect.
type Controller struct {
	api API
	now func() time.Time

	mu      sync.Mutex
	prompts []prompt.Prompt
	loading bool
	err     error
}

func NewController(a API) *Controller {
	return &Controller{api: a, now: time.Now}
}

// Refresh replaces the local list with the server's. On failure the list is
// left as it was and the error is returned; ErrAuthExpired is passed
// through untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	c.setLoading(true)
	rows, err := c.api.ListPrompts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	list := make([]prompt.Prompt, 0, len(rows))
	for _, r := range rows {
		list = append(list, api.ToPrompt(r))
	}
	c.prompts = list
	c.err = nil
	return nil
}

// Save validates the form locally and creates the prompt on the server.
func (c *Controller) Save(ctx context.Context, f Form) (api.Prompt, error) {
	d, err := c.draft(f)
	if err != nil {
		return api.Prompt{}, err
	}

	c.setLoading(true)
	p, err := c.api.CreatePrompt(ctx, d)
	c.finish(err)
	return p, err
}

func (c *Controller) Remove(ctx context.Context, id string) error {
	c.setLoading(true)
	err := c.api.DeletePrompt(ctx, id)
	c.finish(err)
	return err
}

func (c *Controller) draft(f Form) (api.Draft, error) {
	content := strings.TrimSpace(f.Content)
	if content == "" {
		return api.Draft{}, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}
	if f.Rating != 0 && (f.Rating < 1 || f.Rating > 5) {
		return api.Draft{}, fmt.Errorf("%w: rating must be between 1 and 5", apperr.ErrValidation)
	}

	now := c.now().UTC()
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = prompt.DefaultTitle(content)
	}

	d := api.Draft{
		ID:          uuid.NewString(),
		Content:     content,
		Title:       title,
		Context:     nonEmpty(f.Context),
		Description: nonEmpty(f.Description),
		Tags:        prompt.ParseTags(f.Tags),
		AITool:      nonEmpty(f.AITool),
		UseCase:     nonEmpty(f.UseCase),
		FromImage:   f.FromImage,
		CreatedAt:   &now,
	}
	if f.Rating != 0 {
		r := f.Rating
		d.Rating = &r
	}
	return d, nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Controller) finish(err error) {
	c.mu.Lock()
	c.loading = false
	c.err = err
	c.mu.Unlock()
}

// Prompts returns a copy of the local list.
func (c *Controller) Prompts() []prompt.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]prompt.Prompt(nil), c.prompts...)
}

// Filter applies f to the local list only; it never calls the server.
func (c *Controller) Filter(f prompt.Filter) []prompt.Prompt {
	return f.Apply(c.Prompts())
}

func (c *Controller) Tags() []string  { return prompt.DistinctTags(c.Prompts()) }
func (c *Controller) Tools() []string { return prompt.DistinctTools(c.Prompts()) }

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err is the error of the last operation, nil after a success.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
