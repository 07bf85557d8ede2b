// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidDomain = errors.New("invalid domain format")

	// Record errors
	ErrEmptySubject = errors.New("result subject cannot be empty")
	ErrEmptySource  = errors.New("result source cannot be empty")
)
