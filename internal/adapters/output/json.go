// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ctsubs/internal/core/domain"
)

// timestampLayout es el sufijo de fecha de los archivos exportados.
const timestampLayout = "20060102_150405"

// sanitizeDomainName convierte un nombre de dominio en un nombre de carpeta válido.
// Ejemplo: "example.com" -> "example_com"
func sanitizeDomainName(domain string) string {
	sanitized := strings.ReplaceAll(domain, ".", "_")
	// Remover cualquier otro carácter que no sea alfanumérico, guión bajo o guión
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}

// reportStamp usa el fin de la sesión; una sesión sin fin toma la hora actual.
func reportStamp(report domain.Report) string {
	ts := report.EndedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format(timestampLayout)
}

// ExportJSON escribe el reporte en <dir>/<dominio>/ctsubs_<dominio>_<ts>.json
// y devuelve la ruta del archivo creado.
func ExportJSON(dir string, report domain.Report) (string, error) {
	if dir == "" {
		dir = "."
	}

	// Crear subdirectorio específico para el dominio
	fullDir := filepath.Join(dir, sanitizeDomainName(report.Domain))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("ctsubs_%s_%s.json", sanitizeDomainName(report.Domain), reportStamp(report))
	path := filepath.Join(fullDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, report, true); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSON codifica el reporte en w. Subdomains nunca se serializa como null.
func WriteJSON(w io.Writer, report domain.Report, pretty bool) error {
	if report.Subdomains == nil {
		report.Subdomains = []domain.Result{}
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
