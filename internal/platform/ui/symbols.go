// internal/platform/ui/symbols.go
package ui

import (
	"github.com/pterm/pterm"

	"ctsubs/internal/core/domain"
)

// StateSymbol retorna el símbolo Unicode para cada estado de sesión
func StateSymbol(s domain.State) string {
	switch s {
	case domain.StateIdle:
		return "⏸"
	case domain.StateActive:
		return "⣾"
	case domain.StateCompleted:
		return "✓"
	case domain.StateCancelled:
		return "⊘"
	case domain.StateErrored:
		return "✗"
	default:
		return "?"
	}
}

// StateStyle retorna el estilo pterm para cada estado
func StateStyle(s domain.State) *pterm.Style {
	switch s {
	case domain.StateActive:
		return StyleActive
	case domain.StateCompleted:
		return StyleSuccess
	case domain.StateCancelled:
		return StyleWarning
	case domain.StateErrored:
		return StyleError
	default:
		return StyleSecondary
	}
}

// SourceBadge devuelve la etiqueta corta del source, coloreada.
func SourceBadge(k domain.SourceKind) string {
	label := "[" + k.Label() + "]"
	if k == domain.SourceCertificateTransparency {
		return StyleAccent.Sprint(label)
	}
	return StyleWarning.Sprint(label)
}

// Icons globales para diferentes elementos de la UI
var (
	IconTarget  = "🎯"
	IconResult  = "›"
	IconStats   = "📊"
	IconTime    = "⏱"
	IconSources = "🔌"
)
