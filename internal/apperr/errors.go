// Package apperr holds the error taxonomy shared by the service and
// transport layers. Packages wrap these with fmt.Errorf("%w: ...") so the
// HTTP layer can classify failures with errors.Is.
package apperr

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)
