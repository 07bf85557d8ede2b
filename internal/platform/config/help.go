// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
ctsubs - Streaming subdomain discovery client

USAGE:
  ctsubs [options] <domain>
  ctsubs -t <domain> [options]

CORE OPTIONS:
  -t, --target string      Target domain (or first positional argument)
  -s, --server string      Discovery server base URL (default: "http://localhost:9382")
  -m, --mode string        stream (POST /api/stream) or oneshot (POST /api/search) (default: stream)
  -T, --timeout int        Search timeout in seconds, 0=no timeout (default: 0)
  -c, --config string      YAML configuration file

OUTPUT OPTIONS:
  -u, --ui string          pretty, raw, json or quiet (default: pretty)
  -l, --log-level string   debug, info, warn or error; logs go to stderr (default: info)
  -o, --out string         Write <out>/<domain>/ctsubs_<domain>_<ts>.json when the search ends
  -e, --events             Also write every notification as ndjson under --out
      --table              Print a results table when the search ends

NETWORK OPTIONS:
  -p, --proxy string       HTTP(S) proxy URL for outbound requests (optional)
      --user-agent string  User-Agent header (default: "ctsubs/1.0")
      --browser-tls        Present a browser TLS fingerprint to https servers
  -r, --retries int        Retries on connection errors and 429/502/503/504 (default: 0)

METRICS:
      --metrics-addr string  Serve /metrics and /healthz on this address (e.g., :9090)

INFO:
      --print-config       Print the effective configuration as YAML and exit
  -v, --version            Print version information and exit
  -h, --help               Show this help message

EXAMPLES:
  Stream results for a domain:
    ctsubs example.com

  One-shot search against a remote server, with a table:
    ctsubs -s https://recon.internal:9382 -m oneshot --table example.com

  Machine-readable output with a 60s limit:
    ctsubs -u json -T 60 example.com

  Keep an export and the event log:
    ctsubs -o results -e example.com

ENVIRONMENT VARIABLES:
  CTSUBS_SERVER, CTSUBS_TARGET, CTSUBS_MODE, CTSUBS_TIMEOUT, CTSUBS_UI,
  CTSUBS_LOG_LEVEL, CTSUBS_OUTPUT_DIR, CTSUBS_EVENTS, CTSUBS_TABLE,
  CTSUBS_USER_AGENT, CTSUBS_PROXY_URL, CTSUBS_BROWSER_TLS, CTSUBS_RETRIES,
  CTSUBS_METRICS_ADDR, CTSUBS_CONFIG

  Precedence: defaults < config file < environment < flags.

EXIT CODES:
  0    search completed (with or without results)
  1    search failed (connection, HTTP status, timeout)
  2    invalid arguments or target
  130  interrupted
`

// PrintHelp escribe el mensaje de ayuda.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion escribe la información de versión.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "ctsubs %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
