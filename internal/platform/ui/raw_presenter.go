// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"ctsubs/internal/core/domain"
)

// LogFormat define el formato de salida para el modo raw
type LogFormat string

const (
	LogFormatText LogFormat = "text" // Formato logfmt (default)
	LogFormatJSON LogFormat = "json" // Formato JSON estructurado
)

// RawPresenter implementa ports.Presenter para modo raw (una línea por evento, sin formato visual)
type RawPresenter struct {
	format    LogFormat
	out       io.Writer
	mu        sync.Mutex
	target    string
	startTime time.Time
	now       func() time.Time
}

// NewRawPresenter crea un nuevo RawPresenter
func NewRawPresenter(out io.Writer, format LogFormat) *RawPresenter {
	if out == nil {
		out = io.Discard
	}
	return &RawPresenter{
		format: format,
		out:    out,
		now:    time.Now,
	}
}

// log escribe un log en el formato configurado
func (r *RawPresenter) log(level, message string, fields map[string]any) {
	timestamp := r.now().UTC().Format(time.RFC3339)

	if r.format == LogFormatJSON {
		r.logJSON(timestamp, level, message, fields)
	} else {
		r.logText(timestamp, level, message, fields)
	}
}

// logText escribe en formato logfmt: timestamp LEVEL message key=value key2=value2
func (r *RawPresenter) logText(timestamp, level, message string, fields map[string]any) {
	parts := []string{timestamp, fmt.Sprintf("%-5s", level), message}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, r.formatValue(fields[k])))
	}

	fmt.Fprintln(r.out, strings.Join(parts, " "))
}

// logJSON escribe en formato JSON estructurado
func (r *RawPresenter) logJSON(timestamp, level, message string, fields map[string]any) {
	logEntry := map[string]any{
		"timestamp": timestamp,
		"level":     level,
		"message":   message,
	}

	if len(fields) > 0 {
		logEntry["data"] = fields
	}

	jsonBytes, _ := json.Marshal(logEntry)
	fmt.Fprintln(r.out, string(jsonBytes))
}

// formatValue formatea valores para logfmt (entrecomilla strings con espacios)
func (r *RawPresenter) formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \"") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (r *RawPresenter) OnStarted(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.target = target
	r.startTime = r.now()
	r.log("INFO", "search_started", map[string]any{
		"target": target,
		"format": string(r.format),
	})
}

func (r *RawPresenter) OnResult(result domain.Result, runningCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log("INFO", "result_found", map[string]any{
		"subdomain": result.Subject,
		"source":    result.Source.Label(),
		"count":     runningCount,
	})
}

func (r *RawPresenter) OnNoResults() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log("WARN", "search_no_results", map[string]any{
		"target": r.target,
	})
}

func (r *RawPresenter) OnCompleted(finalCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log("INFO", "search_completed", map[string]any{
		"target":   r.target,
		"count":    finalCount,
		"duration": r.elapsed(),
	})
}

func (r *RawPresenter) OnCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log("WARN", "search_cancelled", map[string]any{
		"target":   r.target,
		"duration": r.elapsed(),
	})
}

func (r *RawPresenter) OnError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log("ERROR", "search_failed", map[string]any{
		"target": r.target,
		"error":  message,
	})
}

// elapsed redondea a milisegundos; en JSON se serializa como string.
func (r *RawPresenter) elapsed() string {
	return r.now().Sub(r.startTime).Round(time.Millisecond).String()
}
