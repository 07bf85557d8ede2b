package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/testutil"
)

func newClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg, logx.Discard())
	testutil.AssertNoError(t, err, "client should build")
	return c
}

func TestNew(t *testing.T) {
	t.Run("applies defaults for zero values", func(t *testing.T) {
		client := newClient(t, Config{})

		testutil.AssertEqual(t, client.config.ResponseHeaderTimeout, 30*time.Second, "header timeout")
		testutil.AssertEqual(t, client.config.DialTimeout, 15*time.Second, "dial timeout")
		testutil.AssertEqual(t, client.config.RetryBackoff, 500*time.Millisecond, "backoff")
		testutil.AssertEqual(t, client.config.UserAgent, "ctsubs/1.0", "user agent")
		testutil.AssertEqual(t, client.httpClient.Timeout, time.Duration(0), "no overall timeout for streams")
	})

	t.Run("rejects invalid proxy", func(t *testing.T) {
		_, err := New(Config{ProxyURL: "::not a url"}, nil)
		testutil.AssertTrue(t, errors.IsInvalidInput(err), "invalid proxy should be invalid input")
	})

	t.Run("accepts proxy and browser tls", func(t *testing.T) {
		client := newClient(t, Config{ProxyURL: "http://127.0.0.1:8080", BrowserTLS: true})
		tr := client.httpClient.Transport.(*http.Transport)
		testutil.AssertNotNil(t, tr.DialTLSContext, "browser tls dialer installed")
		testutil.AssertFalse(t, tr.ForceAttemptHTTP2, "http/1.1 only")
		testutil.AssertContains(t, client.String(), "browser_tls=true", "String")
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	testutil.AssertEqual(t, config.MaxRetries, 0, "no retries by default")
	testutil.AssertEqual(t, config.MaxRetryBackoff, 5*time.Second, "max backoff")
	testutil.AssertFalse(t, config.BrowserTLS, "browser tls off")
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Method, http.MethodPost, "method should be POST")
		testutil.AssertEqual(t, r.Header.Get("Content-Type"), "application/json", "content type")
		testutil.AssertEqual(t, r.Header.Get("Accept"), "text/event-stream", "accept")
		testutil.AssertEqual(t, r.Header.Get("User-Agent"), "ctsubs-test", "user agent")

		body, _ := io.ReadAll(r.Body)
		testutil.AssertEqual(t, string(body), `{"domain":"example.com"}`, "body should match")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newClient(t, Config{UserAgent: "ctsubs-test"})

	resp, err := client.PostJSON(context.Background(), server.URL, []byte(`{"domain":"example.com"}`), "text/event-stream")
	testutil.AssertNoError(t, err, "request should succeed")

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	testutil.AssertNoError(t, err, "should read body")
	testutil.AssertEqual(t, string(body), "ok", "body")
}

func TestClient_Retry(t *testing.T) {
	t.Run("retries on 503 and replays body", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			testutil.AssertEqual(t, string(body), "payload", "body replayed")
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newClient(t, Config{MaxRetries: 3, RetryBackoff: 5 * time.Millisecond})

		resp, err := client.Request(context.Background(), http.MethodPost, server.URL, []byte("payload"), nil)
		testutil.AssertNoError(t, err, "should succeed after retries")
		testutil.AssertEqual(t, resp.StatusCode, http.StatusOK, "final status")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3), "attempts")
		resp.Body.Close()
	})

	t.Run("does not retry on 404", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newClient(t, Config{MaxRetries: 3, RetryBackoff: 5 * time.Millisecond})

		resp, err := client.Request(context.Background(), http.MethodGet, server.URL, nil, nil)
		testutil.AssertNoError(t, err, "request should complete")
		testutil.AssertEqual(t, resp.StatusCode, http.StatusNotFound, "status")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(1), "no retry on 404")
		resp.Body.Close()
	})

	t.Run("returns last retryable response when retries are exhausted", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newClient(t, Config{MaxRetries: 2, RetryBackoff: 5 * time.Millisecond})

		resp, err := client.Request(context.Background(), http.MethodGet, server.URL, nil, nil)
		testutil.AssertNoError(t, err, "response is handed back")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3), "1 + 2 retries")
		testutil.AssertError(t, CheckStatus(resp), "status still fails")
		resp.Body.Close()
	})

	t.Run("network error is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := newClient(t, Config{})

		_, err := client.Request(context.Background(), http.MethodGet, url, nil, nil)
		testutil.AssertError(t, err, "closed server should fail")
		testutil.AssertTrue(t, errors.Is(err, errors.ErrTransport), "transport error")
	})
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := newClient(t, Config{MaxRetries: 3, RetryBackoff: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Request(ctx, http.MethodGet, server.URL, nil, nil)
	testutil.AssertError(t, err, "should fail on deadline")
	testutil.AssertTrue(t, time.Since(start) < 500*time.Millisecond, "should not keep retrying after ctx is done")
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		status     string
		wantMsg    string
	}{
		{"200 OK", http.StatusOK, "200 OK", ""},
		{"204 No Content", http.StatusNoContent, "204 No Content", ""},
		{"502 Bad Gateway", http.StatusBadGateway, "502 Bad Gateway", "HTTP 502: Bad Gateway"},
		{"404 without text", http.StatusNotFound, "404", "HTTP 404: Not Found"},
		{"custom reason", http.StatusInternalServerError, "500 Search backend down", "HTTP 500: Search backend down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(&http.Response{StatusCode: tt.statusCode, Status: tt.status})

			if tt.wantMsg == "" {
				testutil.AssertNoError(t, err, "2xx is not an error")
				return
			}
			testutil.AssertError(t, err, "non-2xx is an error")
			testutil.AssertEqual(t, err.Error(), tt.wantMsg, "message")
			testutil.AssertTrue(t, errors.Is(err, errors.ErrUnexpectedStatus), "matches ErrUnexpectedStatus")
		})
	}

	testutil.AssertError(t, CheckStatus(nil), "nil response")
}
