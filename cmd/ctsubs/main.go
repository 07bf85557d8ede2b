// cmd/ctsubs/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"ctsubs/internal/adapters/output"
	"ctsubs/internal/adapters/transport"
	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
	"ctsubs/internal/core/session"
	"ctsubs/internal/platform/config"
	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/httpclient"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/platform/metrics"
	"ctsubs/internal/platform/ui"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes
const (
	exitOK          = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run ejecuta una búsqueda completa y devuelve el exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. Config (defaults -> YAML -> ENV -> flags)
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		config.PrintHelp(stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Try: ctsubs --help")
		return exitUsage
	}

	switch {
	case cfg.PrintVersion:
		config.PrintVersion(stdout, version, commit, date)
		return exitOK
	case cfg.PrintConfig:
		out, err := cfg.ToYAML()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailed
		}
		fmt.Fprint(stdout, out)
		return exitOK
	}

	if cfg.Target == "" {
		fmt.Fprintln(stderr, "Error: target domain is required")
		fmt.Fprintln(stderr, "Usage: ctsubs [options] <domain>")
		return exitUsage
	}
	target, err := domain.ValidateTarget(cfg.Target)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	uiMode, err := ui.ParseUIMode(cfg.UI)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// 2. Shared logger (stderr; stdout queda para resultados)
	logger := logx.NewWithWriter(stderr, logx.ParseLevel(cfg.LogLevel))
	logger.Debug("ctsubs starting",
		"version", version,
		"commit", commit,
		"server", cfg.Server,
		"mode", string(cfg.Mode),
		"ui", string(uiMode),
	)

	// 3. Transport
	hcCfg := httpclient.DefaultConfig()
	hcCfg.UserAgent = cfg.UserAgent
	hcCfg.ProxyURL = cfg.ProxyURL
	hcCfg.BrowserTLS = cfg.BrowserTLS
	hcCfg.MaxRetries = cfg.Retries
	hc, err := httpclient.New(hcCfg, logger)
	if err != nil {
		logger.Err(err, "phase", "httpclient")
		return exitUsage
	}
	client, err := transport.New(cfg.Server, hc, logger)
	if err != nil {
		logger.Err(err, "phase", "transport")
		return exitUsage
	}

	// 4. Metrics
	ctx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	rec := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := rec.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Err(err, "phase", "metrics")
			}
		}()
	}

	// 5. Presenters
	presenters := ports.MultiPresenter{ui.New(ui.Options{
		Mode:    uiMode,
		Out:     stdout,
		Spinner: isTerminal(stdout),
	})}
	if cfg.Events {
		ew, err := output.NewEventWriter(cfg.OutputDir, target, logger)
		if err != nil {
			logger.Err(err, "phase", "output")
			return exitFailed
		}
		defer func() {
			if err := ew.Close(); err != nil {
				logger.Err(err, "phase", "output")
			}
			logger.Info("events written", "file", ew.Path(), "events", ew.Written())
		}()
		presenters = append(presenters, ew.Presenter())
	}

	controller := session.NewController(session.Options{
		Transport: client,
		Presenter: presenters,
		Logger:    logger,
		Metrics:   rec,
	})

	// 6. Signals -> Cancel
	var interrupted atomic.Bool
	stopSignals := watchSignals(func() {
		interrupted.Store(true)
		controller.Cancel()
	})
	defer stopSignals()

	// 7. Search
	var s *session.Session
	if cfg.Mode == config.ModeOneShot {
		s, err = controller.Lookup(ctx, target, client)
	} else {
		s, err = controller.Start(ctx, target)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	wd := session.NewWatchdog(controller, s, cfg.Timeout())
	defer wd.Stop()

	// ctx cancelado lleva la sesión a Cancelled; hay que esperar a que llegue
	<-s.Done()
	state := s.State()
	report := s.Report()

	// 8. Outputs
	if err := writeOutputs(cfg, report, stdout); err != nil {
		logger.Err(err, "phase", "output")
		return exitFailed
	}

	logger.Debug("ctsubs finished", "state", state.String(), "results", report.Count, "duration", report.Duration)

	switch {
	case state == domain.StateCompleted:
		return exitOK
	case state == domain.StateCancelled || interrupted.Load():
		return exitInterrupted
	default:
		return exitFailed
	}
}

// writeOutputs decides and executes outputs based on config.
func writeOutputs(cfg config.Config, report domain.Report, stdout io.Writer) error {
	if cfg.OutputDir != "" {
		if _, err := output.ExportJSON(cfg.OutputDir, report); err != nil {
			return fmt.Errorf("json output: %w", err)
		}
	}

	if cfg.Table {
		if err := output.RenderTable(stdout, report); err != nil {
			return fmt.Errorf("table output: %w", err)
		}
	}
	return nil
}

// watchSignals llama a onSignal en el primer SIGINT/SIGTERM.
// The returned function stops signal delivery and the watcher goroutine.
func watchSignals(onSignal func()) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			onSignal()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
