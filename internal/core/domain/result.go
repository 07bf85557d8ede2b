// internal/core/domain/result.go
package domain

import (
	"strings"
	"time"
)

// Result is one discovered subdomain. Subject is the deduplication key.
type Result struct {
	Subject string     `json:"subdomain"`
	Source  SourceKind `json:"source"`
}

// NewResult builds a Result from wire fields.
func NewResult(subject, source string) (Result, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Result{}, ErrEmptySubject
	}
	if strings.TrimSpace(source) == "" {
		return Result{}, ErrEmptySource
	}
	return Result{Subject: subject, Source: ParseSourceKind(source)}, nil
}

// SearchResponse is the body of the one-shot search endpoint.
type SearchResponse struct {
	Domain     string   `json:"domain"`
	Subdomains []Result `json:"subdomains"`
	Error      string   `json:"error,omitempty"`
}

// Report es la foto final de una sesión, usada para exportar.
type Report struct {
	SessionID  string    `json:"session_id"`
	Domain     string    `json:"domain"`
	State      State     `json:"state"`
	Count      int       `json:"count"`
	Subdomains []Result  `json:"subdomains"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Duration   string    `json:"duration"`
}

// CountBySource agrupa los resultados por etiqueta de presentación.
func (r Report) CountBySource() map[string]int {
	out := make(map[string]int)
	for _, res := range r.Subdomains {
		out[res.Source.Label()]++
	}
	return out
}
