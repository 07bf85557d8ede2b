// internal/adapters/output/streaming.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ctsubs/internal/core/ports"
	"ctsubs/internal/platform/logx"
)

// EventWriter escribe cada notificación de la sesión como una línea JSON
// (ndjson) a medida que llega, de modo que una búsqueda interrumpida deja
// en disco todo lo descubierto hasta ese momento.
type EventWriter struct {
	mu      sync.Mutex
	f       *os.File
	enc     *json.Encoder
	path    string
	written int
	err     error
	logger  logx.Logger
}

// NewEventWriter crea <baseDir>/<dominio>/ctsubs_<dominio>_<ts>_events.jsonl.
func NewEventWriter(baseDir, target string, logger logx.Logger) (*EventWriter, error) {
	if baseDir == "" {
		baseDir = "."
	}
	dir := filepath.Join(baseDir, sanitizeDomainName(target))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("ctsubs_%s_%s_events.jsonl", sanitizeDomainName(target), time.Now().Format(timestampLayout))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create events file: %w", err)
	}

	return &EventWriter{
		f:      f,
		enc:    json.NewEncoder(f),
		path:   path,
		logger: logger.With("component", "event-writer"),
	}, nil
}

// Path devuelve la ruta del archivo de eventos.
func (w *EventWriter) Path() string { return w.path }

// Written devuelve cuántas notificaciones se escribieron.
func (w *EventWriter) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Write añade una notificación. Tras el primer error de escritura las
// siguientes se descartan; el error se devuelve en Close.
func (w *EventWriter) Write(n ports.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil || w.f == nil {
		return
	}
	if err := w.enc.Encode(n); err != nil {
		w.err = fmt.Errorf("failed to write event: %w", err)
		w.logger.Err(w.err, "file", w.path)
		return
	}
	w.written++
}

// Presenter adapta el writer al port de presentación.
func (w *EventWriter) Presenter() ports.Presenter {
	return ports.FuncPresenter{Sink: w.Write}
}

// Close cierra el archivo. Es idempotente.
func (w *EventWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return w.err
	}
	closeErr := w.f.Close()
	w.f = nil
	w.logger.Debug("events file closed", "file", w.path, "events", w.written)
	if w.err != nil {
		return w.err
	}
	return closeErr
}
