// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Paleta de colores del cliente
var (
	// EmberOrange - nombre de la herramienta en el header
	EmberOrange = pterm.NewRGB(255, 107, 53)
)

// Estilos preconfigurados
var (
	// StylePrimary - headers y target
	StylePrimary = pterm.NewStyle(pterm.FgLightRed, pterm.Bold)

	// StyleSuccess - búsqueda completada
	StyleSuccess = pterm.NewStyle(pterm.FgGreen)

	// StyleWarning - sin resultados, cancelada, DNS Enum
	StyleWarning = pterm.NewStyle(pterm.FgYellow)

	// StyleError - fallo de transporte
	StyleError = pterm.NewStyle(pterm.FgRed, pterm.Bold)

	// StyleSecondary - texto secundario
	StyleSecondary = pterm.NewStyle(pterm.FgGray)

	// StyleActive - spinner
	StyleActive = pterm.NewStyle(pterm.FgLightRed)

	// StyleAccent - CT Logs
	StyleAccent = pterm.NewStyle(pterm.FgCyan)
)

// rgb aplica un color de la paleta (solo en terminales truecolor).
func rgb(c pterm.RGB, s string) string {
	return c.Sprint(s)
}
