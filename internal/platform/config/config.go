// internal/platform/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/validator"
)

// Mode selecciona el endpoint de búsqueda.
type Mode string

const (
	ModeStream  Mode = "stream"  // POST /api/stream, resultados incrementales
	ModeOneShot Mode = "oneshot" // POST /api/search, una sola respuesta JSON
)

type Config struct {
	// App
	Server       string `yaml:"server"`
	Target       string `yaml:"target"`
	Mode         Mode   `yaml:"mode"`
	TimeoutS     int    `yaml:"timeout"` // segundos (0 = sin timeout)
	PrintVersion bool   `yaml:"-"`
	PrintConfig  bool   `yaml:"-"`
	ConfigPath   string `yaml:"-"`

	// UI / logging
	UI       string `yaml:"ui"`
	LogLevel string `yaml:"log_level"`

	// IO
	OutputDir string `yaml:"output_dir"` // vacío = sin export JSON
	Events    bool   `yaml:"events"`     // ndjson de notificaciones en OutputDir
	Table     bool   `yaml:"table"`

	// Network
	UserAgent  string `yaml:"user_agent"`
	ProxyURL   string `yaml:"proxy"`
	BrowserTLS bool   `yaml:"browser_tls"`
	Retries    int    `yaml:"retries"`

	// Metrics
	MetricsAddr string `yaml:"metrics_addr"` // vacío = deshabilitado
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Server:    "http://localhost:9382",
		Mode:      ModeStream,
		TimeoutS:  0,
		UI:        "pretty",
		LogLevel:  "info",
		UserAgent: "ctsubs/1.0",
		Retries:   0,
	}
}

// Load construye la configuración: defaults -> YAML (--config) -> ENV -> FLAGS.
// args excluye el nombre del programa. Con --help devuelve pflag.ErrHelp.
func Load(args []string) (Config, error) {
	fs, fv := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	path := fv.ConfigPath
	if !fs.Changed("config") {
		path = getenv("CTSUBS_CONFIG", "")
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ConfigPath = path
	}

	if err := loadFromEnv(&cfg); err != nil {
		return Config{}, err
	}

	applyFlags(fs, fv, &cfg)

	// El target también se acepta como argumento posicional
	if !fs.Changed("target") && fs.NArg() > 0 {
		cfg.Target = fs.Arg(0)
	}

	normalize(&cfg)
	return cfg, cfg.Validate()
}

// LoadFile mezcla un archivo YAML sobre cfg. Las claves ausentes conservan su valor.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// newFlagSet declara los flags sobre una copia de los defaults.
func newFlagSet() (*pflag.FlagSet, *Config) {
	fv := DefaultConfig()
	fs := pflag.NewFlagSet("ctsubs", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.StringVarP(&fv.Target, "target", "t", fv.Target, "Target domain (e.g., example.com)")
	fs.StringVarP(&fv.Server, "server", "s", fv.Server, "Base URL of the discovery server")
	fs.StringVarP((*string)(&fv.Mode), "mode", "m", string(fv.Mode), "Search mode: stream or oneshot")
	fs.IntVarP(&fv.TimeoutS, "timeout", "T", fv.TimeoutS, "Search timeout in seconds (0 = none)")
	fs.StringVarP(&fv.ConfigPath, "config", "c", "", "YAML configuration file")

	fs.StringVarP(&fv.UI, "ui", "u", fv.UI, "Output mode: pretty, raw, json or quiet")
	fs.StringVarP(&fv.LogLevel, "log-level", "l", fv.LogLevel, "Log level: debug, info, warn or error")

	fs.StringVarP(&fv.OutputDir, "out", "o", fv.OutputDir, "Directory for the JSON export (empty = no export)")
	fs.BoolVarP(&fv.Events, "events", "e", fv.Events, "Also write every notification as ndjson under --out")
	fs.BoolVar(&fv.Table, "table", fv.Table, "Print a results table when the search ends")

	fs.StringVar(&fv.UserAgent, "user-agent", fv.UserAgent, "User-Agent header")
	fs.StringVarP(&fv.ProxyURL, "proxy", "p", fv.ProxyURL, "HTTP(S) proxy URL (optional)")
	fs.BoolVar(&fv.BrowserTLS, "browser-tls", fv.BrowserTLS, "Use a browser TLS fingerprint for https servers")
	fs.IntVarP(&fv.Retries, "retries", "r", fv.Retries, "Retries for connection errors and 429/5xx before the stream opens")

	fs.StringVar(&fv.MetricsAddr, "metrics-addr", fv.MetricsAddr, "Serve Prometheus metrics on this address (e.g., :9090)")

	fs.BoolVar(&fv.PrintConfig, "print-config", false, "Print the effective configuration as YAML and exit")
	fs.BoolVarP(&fv.PrintVersion, "version", "v", false, "Print version and exit")

	return fs, &fv
}

// applyFlags copia sólo los flags indicados explícitamente.
func applyFlags(fs *pflag.FlagSet, fv *Config, cfg *Config) {
	setters := map[string]func(){
		"target":       func() { cfg.Target = fv.Target },
		"server":       func() { cfg.Server = fv.Server },
		"mode":         func() { cfg.Mode = fv.Mode },
		"timeout":      func() { cfg.TimeoutS = fv.TimeoutS },
		"ui":           func() { cfg.UI = fv.UI },
		"log-level":    func() { cfg.LogLevel = fv.LogLevel },
		"out":          func() { cfg.OutputDir = fv.OutputDir },
		"events":       func() { cfg.Events = fv.Events },
		"table":        func() { cfg.Table = fv.Table },
		"user-agent":   func() { cfg.UserAgent = fv.UserAgent },
		"proxy":        func() { cfg.ProxyURL = fv.ProxyURL },
		"browser-tls":  func() { cfg.BrowserTLS = fv.BrowserTLS },
		"retries":      func() { cfg.Retries = fv.Retries },
		"metrics-addr": func() { cfg.MetricsAddr = fv.MetricsAddr },
		"print-config": func() { cfg.PrintConfig = fv.PrintConfig },
		"version":      func() { cfg.PrintVersion = fv.PrintVersion },
	}
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := setters[f.Name]; ok {
			set()
		}
	})
}

// loadFromEnv carga configuración desde variables de entorno CTSUBS_*.
func loadFromEnv(cfg *Config) error {
	if v := getenv("CTSUBS_SERVER", ""); v != "" {
		cfg.Server = v
	}
	if v := getenv("CTSUBS_TARGET", ""); v != "" {
		cfg.Target = v
	}
	if v := getenv("CTSUBS_MODE", ""); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := getenv("CTSUBS_UI", ""); v != "" {
		cfg.UI = v
	}
	if v := getenv("CTSUBS_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("CTSUBS_OUTPUT_DIR", ""); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("CTSUBS_USER_AGENT", ""); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv("CTSUBS_PROXY_URL", ""); v != "" {
		cfg.ProxyURL = v
	}
	if v := getenv("CTSUBS_METRICS_ADDR", ""); v != "" {
		cfg.MetricsAddr = v
	}

	var err error
	if v := getenv("CTSUBS_TIMEOUT", ""); v != "" {
		if cfg.TimeoutS, err = parseInt("CTSUBS_TIMEOUT", v); err != nil {
			return err
		}
	}
	if v := getenv("CTSUBS_RETRIES", ""); v != "" {
		if cfg.Retries, err = parseInt("CTSUBS_RETRIES", v); err != nil {
			return err
		}
	}
	if v := getenv("CTSUBS_EVENTS", ""); v != "" {
		cfg.Events = parseBool(v)
	}
	if v := getenv("CTSUBS_TABLE", ""); v != "" {
		cfg.Table = parseBool(v)
	}
	if v := getenv("CTSUBS_BROWSER_TLS", ""); v != "" {
		cfg.BrowserTLS = parseBool(v)
	}
	return nil
}

func normalize(c *Config) {
	c.Target = validator.NormalizeDomain(c.Target)
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		c.Mode = ModeStream
	}
	c.UI = strings.ToLower(strings.TrimSpace(c.UI))
	if c.TimeoutS < 0 {
		c.TimeoutS = 0
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
}

// Validate comprueba los valores que no dependen del dominio objetivo.
// El target se valida al arrancar la sesión.
func (c Config) Validate() error {
	if !validator.IsURL(c.Server) {
		return errors.Wrapf(errors.ErrInvalidInput, "server must be an http(s) URL, got %q", c.Server)
	}
	switch c.Mode {
	case ModeStream, ModeOneShot:
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown mode %q (stream, oneshot)", c.Mode)
	}
	if c.Events && c.OutputDir == "" {
		return errors.Wrap(errors.ErrInvalidInput, "--events requires --out")
	}
	return nil
}

// ToYAML serializa la configuración efectiva (útil para --print-config).
func (c Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Timeout devuelve un time.Duration útil si prefieres trabajar con duración.
func (c Config) Timeout() time.Duration {
	if c.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutS) * time.Second
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(key, v string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "%s: %q is not an integer", key, v)
	}
	return i, nil
}
