// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"

	"ctsubs/internal/core/domain"
)

// RenderTable imprime una tabla legible con los resultados del reporte.
func RenderTable(w io.Writer, report domain.Report) error {
	fmt.Fprintf(w, "\n=== ctsubs results: %s ===\n", report.Domain)
	fmt.Fprintf(w, "State: %s  Count: %d  Duration: %s\n\n", report.State, report.Count, report.Duration)

	if report.Error != "" {
		fmt.Fprintf(w, "❌ %s\n\n", report.Error)
	}

	if len(report.Subdomains) == 0 {
		fmt.Fprintln(w, "No subdomains discovered.")
		return nil
	}

	data := pterm.TableData{{"#", "SUBDOMAIN", "SOURCE"}}
	for i, r := range report.Subdomains {
		data = append(data, []string{fmt.Sprint(i + 1), r.Subject, r.Source.Label()})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(w, table)

	// Stats summary
	stats := report.CountBySource()
	labels := make([]string, 0, len(stats))
	for label := range stats {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintln(w, "\n📊 Results by source:")
	for _, label := range labels {
		fmt.Fprintf(w, "  - %s: %d\n", label, stats[label])
	}
	fmt.Fprintln(w)
	return nil
}
