// internal/core/session/message.go
package session

import (
	"ctsubs/internal/platform/errors"
)

// UserMessage convierte un error de sesión en el texto mostrado al usuario.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var status *errors.StatusError
	var remote *errors.RemoteError
	switch {
	case errors.As(err, &status):
		return status.Error()
	case errors.As(err, &remote):
		return remote.Message
	case errors.IsTimeout(err):
		return "Search timed out"
	case errors.Is(err, errors.ErrStreamClosed):
		return "Connection error: stream closed before search completed"
	default:
		return "Connection error: " + rootCause(err).Error()
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
