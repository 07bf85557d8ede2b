// Package httpclient provides the HTTP client used to reach the discovery server:
// connection and header timeouts, retries before a response is streamed,
// optional proxy and an optional browser TLS fingerprint.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"

	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/logx"
)

// Client wraps http.Client with retry logic and stream-friendly timeouts.
type Client struct {
	httpClient *http.Client
	logger     logx.Logger
	config     Config
}

// Config holds the configuration for the HTTP client.
//
// There is no overall request timeout: a search stream may stay open for
// minutes. Use ResponseHeaderTimeout and an external watchdog instead.
type Config struct {
	// DialTimeout bounds TCP connection setup.
	// Default: 15 seconds
	DialTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for the response headers.
	// Default: 30 seconds
	ResponseHeaderTimeout time.Duration

	// MaxRetries is the number of extra attempts on network errors and
	// retryable statuses. Retries never happen once a 2xx body is returned.
	// Default: 0
	MaxRetries int

	// RetryBackoff is the initial backoff duration for retries.
	// Default: 500 milliseconds
	RetryBackoff time.Duration

	// MaxRetryBackoff is the maximum backoff duration between retries.
	// Default: 5 seconds
	MaxRetryBackoff time.Duration

	// UserAgent is the User-Agent header value.
	// Default: "ctsubs/1.0"
	UserAgent string

	// ProxyURL overrides the proxy taken from the environment.
	ProxyURL string

	// BrowserTLS dials HTTPS with a Safari ClientHello (uTLS), HTTP/1.1 only.
	BrowserTLS bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DialTimeout:           15 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		MaxRetries:            0,
		RetryBackoff:          500 * time.Millisecond,
		MaxRetryBackoff:       5 * time.Second,
		UserAgent:             "ctsubs/1.0",
	}
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) (*Client, error) {
	def := DefaultConfig()
	if config.DialTimeout <= 0 {
		config.DialTimeout = def.DialTimeout
	}
	if config.ResponseHeaderTimeout <= 0 {
		config.ResponseHeaderTimeout = def.ResponseHeaderTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = def.RetryBackoff
	}
	if config.MaxRetryBackoff <= 0 {
		config.MaxRetryBackoff = def.MaxRetryBackoff
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = logx.Discard()
	}

	proxy := http.ProxyFromEnvironment
	if config.ProxyURL != "" {
		u, err := url.Parse(config.ProxyURL)
		if err != nil || u.Host == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid proxy url %q", config.ProxyURL)
		}
		proxy = http.ProxyURL(u)
	}

	dialer := &net.Dialer{Timeout: config.DialTimeout, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		Proxy:                 proxy,
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		// gzip/br se decodifican en el transporte de la aplicación
		DisableCompression: true,
	}
	if config.BrowserTLS {
		base.ForceAttemptHTTP2 = false
		base.DialTLSContext = safariTLSDialer(dialer)
	}

	return &Client{
		httpClient: &http.Client{Transport: base},
		logger:     logger.With("component", "httpclient"),
		config:     config,
	}, nil
}

// Request performs an HTTP request with retry logic. body may be nil; it is
// replayed on every attempt. Network failures are returned as
// *errors.TransportError. The caller owns the response body.
func (c *Client) Request(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "failed to create request for %s %s: %v", method, url, err)
		}

		req.Header.Set("User-Agent", c.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		c.logger.Debug("HTTP request",
			"method", method,
			"url", url,
			"attempt", attempt+1,
			"max_attempts", c.config.MaxRetries+1,
		)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Warn("HTTP request failed",
				"method", method,
				"url", url,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", duration.Milliseconds(),
			)
			lastErr = errors.Transport(method+" "+url, unwrapURLError(err))

			if ctx.Err() != nil || !c.shouldRetry(attempt, err, nil) {
				return nil, lastErr
			}
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, lastErr
			}
			continue
		}

		c.logger.Debug("HTTP response received",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)

		if !isRetryableStatus(resp) || !c.shouldRetry(attempt, nil, resp) {
			return resp, nil
		}

		drainAndClose(resp)
		lastErr = StatusErrorFor(resp)
		c.logger.Warn("HTTP request returned retryable status",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)

		if err := c.backoff(ctx, attempt); err != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// PostJSON sends body as application/json with the given Accept header.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, accept string) (*http.Response, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       accept,
	}
	return c.Request(ctx, http.MethodPost, url, body, headers)
}

// isRetryableStatus checks if an HTTP status code should trigger a retry.
func isRetryableStatus(resp *http.Response) bool {
	if resp == nil {
		return false
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return true
	default:
		return false
	}
}

func (c *Client) shouldRetry(attempt int, err error, resp *http.Response) bool {
	if attempt >= c.config.MaxRetries {
		return false
	}
	if err != nil {
		return true
	}
	return isRetryableStatus(resp)
}

// backoff implements exponential backoff capped at MaxRetryBackoff.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
	if backoff > c.config.MaxRetryBackoff {
		backoff = c.config.MaxRetryBackoff
	}

	c.logger.Debug("backing off before retry",
		"attempt", attempt+1,
		"backoff_ms", backoff.Milliseconds(),
	)

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckStatus returns a *errors.StatusError for non-2xx responses.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return StatusErrorFor(resp)
}

// StatusErrorFor builds the status error of resp ("HTTP 502: Bad Gateway").
func StatusErrorFor(resp *http.Response) *errors.StatusError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &errors.StatusError{Code: resp.StatusCode, Status: text}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{header_timeout=%s, max_retries=%d, browser_tls=%t}",
		c.config.ResponseHeaderTimeout,
		c.config.MaxRetries,
		c.config.BrowserTLS,
	)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// unwrapURLError quita el envoltorio *url.Error (ya tenemos método y URL).
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}

func safariTLSDialer(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		plainConn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		host, _, _ := net.SplitHostPort(addr)
		uConn := utls.UClient(plainConn, &utls.Config{ServerName: host}, utls.HelloSafari_Auto)
		if err := forceHTTP11ALPN(uConn); err != nil {
			_ = plainConn.Close()
			return nil, err
		}
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = plainConn.Close()
			return nil, err
		}
		if negotiated := uConn.ConnectionState().NegotiatedProtocol; negotiated != "" && negotiated != "http/1.1" {
			_ = uConn.Close()
			return nil, fmt.Errorf("unexpected ALPN protocol negotiated: %s", negotiated)
		}
		return uConn, nil
	}
}

func forceHTTP11ALPN(uConn *utls.UConn) error {
	if err := uConn.BuildHandshakeState(); err != nil {
		return err
	}
	for _, ext := range uConn.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			return nil
		}
	}
	return nil
}
