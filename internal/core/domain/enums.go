// internal/core/domain/enums.go
package domain

import "strings"

// SourceKind es la procedencia de un resultado tal como la anuncia el servidor.
// The set is open: unknown labels are preserved verbatim.
type SourceKind string

const (
	// SourceCertificateTransparency results come from CT log queries
	SourceCertificateTransparency SourceKind = "Certificate Transparency"

	// SourceDNSEnumeration results come from DNS brute force / TXT records
	SourceDNSEnumeration SourceKind = "DNS Enumeration"
)

// ParseSourceKind normalizes a wire label into a SourceKind.
func ParseSourceKind(label string) SourceKind {
	trimmed := strings.TrimSpace(label)
	switch strings.ToLower(trimmed) {
	case "certificate transparency", "ct", "ct logs", "crtsh", "crt.sh":
		return SourceCertificateTransparency
	case "dns enumeration", "dns enum", "dns":
		return SourceDNSEnumeration
	default:
		return SourceKind(trimmed)
	}
}

// IsKnown reports whether the kind is one of the built-in variants.
func (k SourceKind) IsKnown() bool {
	return k == SourceCertificateTransparency || k == SourceDNSEnumeration
}

// Label devuelve la etiqueta corta usada al presentar resultados.
// Anything that is not certificate transparency is shown as DNS enumeration.
func (k SourceKind) Label() string {
	if k == SourceCertificateTransparency {
		return "CT Logs"
	}
	return "DNS Enum"
}

// String retorna la representación string del source.
func (k SourceKind) String() string {
	return string(k)
}

// State es el estado del ciclo de vida de una sesión de búsqueda.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCompleted
	StateCancelled
	StateErrored
)

// String convierte el estado a string
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions can happen for this session.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateErrored
}

// MarshalText lets State appear by name in JSON exports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
