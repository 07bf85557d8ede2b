// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"ctsubs/internal/core/domain"
)

// PTermPresenter implementa ports.Presenter usando pterm: un spinner
// mientras la búsqueda está activa, una línea por resultado con su badge
// de source y un resumen al terminar.
type PTermPresenter struct {
	mu sync.Mutex

	out         io.Writer
	withSpinner bool
	spinner     *pterm.SpinnerPrinter

	target    string
	startTime time.Time
	bySource  map[string]int
	now       func() time.Time
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter(out io.Writer, spinner bool) *PTermPresenter {
	return &PTermPresenter{
		out:         out,
		withSpinner: spinner,
		bySource:    make(map[string]int),
		now:         time.Now,
	}
}

// OnStarted muestra el header y arranca el spinner.
func (p *PTermPresenter) OnStarted(target string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	p.target = target
	p.startTime = p.now()
	p.bySource = make(map[string]int)

	header := fmt.Sprintf("%s %s %s", IconTarget, rgb(EmberOrange, "ctsubs"), StylePrimary.Sprint(target))
	pterm.Fprintln(p.out, header)

	text := p.spinnerText(0)
	if !p.withSpinner {
		pterm.Fprintln(p.out, StyleSecondary.Sprint(text))
		return
	}
	p.spinner, _ = pterm.DefaultSpinner.
		WithWriter(p.out).
		WithStyle(StyleActive).
		WithSequence("⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷").
		WithRemoveWhenDone(true).
		Start(text)
}

// OnResult imprime el subdominio con su badge y actualiza el contador.
func (p *PTermPresenter) OnResult(result domain.Result, runningCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bySource[result.Source.Label()]++
	pterm.Fprintln(p.out, fmt.Sprintf("  %s %s %s", IconResult, result.Subject, SourceBadge(result.Source)))
	if p.spinner != nil {
		p.spinner.UpdateText(p.spinnerText(runningCount))
	}
}

func (p *PTermPresenter) OnNoResults() {
	p.finish(domain.StateCompleted, "", 0)
}

func (p *PTermPresenter) OnCompleted(finalCount int) {
	p.finish(domain.StateCompleted, fmt.Sprintf("Search completed: %s", plural(finalCount, "subdomain")), finalCount)
}

func (p *PTermPresenter) OnCancelled() {
	p.finish(domain.StateCancelled, "Search stopped", -1)
}

func (p *PTermPresenter) OnError(message string) {
	p.finish(domain.StateErrored, message, -1)
}

// finish cierra el spinner y muestra el resumen. count < 0 omite el desglose.
func (p *PTermPresenter) finish(state domain.State, message string, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	line := StateStyle(state).Sprint(StateSymbol(state) + " " + message)
	if count == 0 {
		line = StyleWarning.Sprint("⚠ No subdomains found for " + p.target)
	}
	pterm.Fprintln(p.out, line)

	if count > 0 {
		pterm.Fprintln(p.out, p.summary())
	}
}

func (p *PTermPresenter) summary() string {
	labels := make([]string, 0, len(p.bySource))
	for label := range p.bySource {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	for _, label := range labels {
		fmt.Fprintf(&b, "%s %s: %d\n", IconSources, label, p.bySource[label])
	}
	fmt.Fprintf(&b, "%s Duration: %s", IconTime, formatDuration(p.now().Sub(p.startTime)))

	return pterm.DefaultBox.
		WithTitle(IconStats + " Summary").
		WithTitleTopLeft().
		WithBoxStyle(pterm.NewStyle(pterm.FgGray)).
		Sprint(b.String())
}

func (p *PTermPresenter) spinnerText(count int) string {
	return fmt.Sprintf("Searching %s... (%s)", p.target, plural(count, "subdomain"))
}

func (p *PTermPresenter) stopSpinner() {
	if p.spinner == nil {
		return
	}
	_ = p.spinner.Stop()
	p.spinner = nil
}
