// internal/platform/ui/presenter.go
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ctsubs/internal/core/ports"
)

// UIMode define el modo de visualización
type UIMode string

const (
	UIModePretty UIMode = "pretty" // pterm: spinner, badges y resumen (default)
	UIModeRaw    UIMode = "raw"    // una línea logfmt por notificación
	UIModeJSON   UIMode = "json"   // una línea JSON por notificación
	UIModeQuiet  UIMode = "quiet"  // sin salida
)

// ParseUIMode valida un nombre de modo.
func ParseUIMode(s string) (UIMode, error) {
	switch m := UIMode(strings.ToLower(strings.TrimSpace(s))); m {
	case UIModePretty, UIModeRaw, UIModeJSON, UIModeQuiet:
		return m, nil
	case "":
		return UIModePretty, nil
	default:
		return "", fmt.Errorf("unknown ui mode %q (pretty, raw, json, quiet)", s)
	}
}

// Options configura el presenter creado por New.
type Options struct {
	Mode UIMode
	Out  io.Writer
	// Spinner activa la animación del modo pretty; desactivar fuera de una TTY.
	Spinner bool
}

// New builds the Presenter for opts.Mode. Out defaults to stdout.
func New(opts Options) ports.Presenter {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	switch opts.Mode {
	case UIModeRaw:
		return NewRawPresenter(opts.Out, LogFormatText)
	case UIModeJSON:
		return NewRawPresenter(opts.Out, LogFormatJSON)
	case UIModeQuiet:
		return NewNoopPresenter()
	default:
		return NewPTermPresenter(opts.Out, opts.Spinner)
	}
}
