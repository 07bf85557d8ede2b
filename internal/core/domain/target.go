// internal/core/domain/target.go
package domain

import (
	"fmt"

	"ctsubs/internal/platform/validator"
)

// ValidateTarget normaliza y valida el dominio a buscar.
// It is the validation collaborator the search session calls before
// leaving Idle; an error here means no session is created.
func ValidateTarget(raw string) (string, error) {
	target := validator.NormalizeDomain(raw)
	if target == "" {
		return "", ErrEmptyTarget
	}

	if !validator.IsPlausibleDomain(target) {
		return "", fmt.Errorf("%w: %s", ErrInvalidDomain, target)
	}

	return target, nil
}
