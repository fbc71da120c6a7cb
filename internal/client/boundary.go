package client

import "errors"

// Boundary is the single place that reacts to ErrAuthExpired. Everything
// below it only returns errors.
type Boundary struct {
	// OnAuthExpired is handed the location to resume after signing in again.
	OnAuthExpired func(returnTo string)
}

// Run calls fn. If fn fails with ErrAuthExpired the hook fires with
// returnTo. The error is always returned so the caller knows its state was
// not updated.
func (b Boundary) Run(returnTo string, fn func() error) error {
	err := fn()
	if errors.Is(err, ErrAuthExpired) && b.OnAuthExpired != nil {
		b.OnAuthExpired(returnTo)
	}
	return err
}
