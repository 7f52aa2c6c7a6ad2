// Package httpkit provides shared HTTP transport construction for all
// outbound calls. It enforces consistent dial, TLS, and response
// timeouts and good-citizen defaults so every XML-RPC endpoint client
// rides on the same connection settings.
package httpkit

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/nugget/odoo-mcp/internal/buildinfo"
)

// Default timeouts and connection pool limits for the shared transport.
const (
	// DefaultDialTimeout is the maximum time to establish a TCP connection.
	DefaultDialTimeout = 10 * time.Second

	// DefaultKeepAlive is the interval between TCP keep-alive probes.
	DefaultKeepAlive = 30 * time.Second

	// DefaultTLSHandshakeTimeout is the maximum time for the TLS handshake.
	DefaultTLSHandshakeTimeout = 10 * time.Second

	// DefaultResponseTimeout is the maximum time to wait for response
	// headers after a request is fully written. Odoo method calls run
	// server-side for the duration of this window.
	DefaultResponseTimeout = 30 * time.Second

	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultMaxIdleConns is the total number of idle connections across all hosts.
	DefaultMaxIdleConns = 10

	// DefaultMaxIdleConnsPerHost is the per-host idle connection limit.
	DefaultMaxIdleConnsPerHost = 5
)

// Option configures a RoundTripper built by NewRoundTripper.
type Option func(*config)

type config struct {
	responseTimeout       time.Duration
	userAgent             string
	skipUserAgent         bool
	tlsInsecureSkipVerify bool
}

// WithResponseTimeout bounds how long a single request waits for the
// server to start responding. This is the per-attempt timeout for
// remote method calls; a zero value keeps the default.
func WithResponseTimeout(d time.Duration) Option {
	return func(c *config) { c.responseTimeout = d }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) { c.userAgent = ua }
}

// WithoutUserAgent disables the automatic User-Agent roundtripper.
func WithoutUserAgent() Option {
	return func(c *config) { c.skipUserAgent = true }
}

// WithTLSInsecureSkipVerify skips TLS certificate verification.
// Use only for self-hosted instances with self-signed certificates.
func WithTLSInsecureSkipVerify() Option {
	return func(c *config) { c.tlsInsecureSkipVerify = true }
}

// NewTransport creates an http.Transport with sensible defaults.
// This is the foundation for all outbound connections.
func NewTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   DefaultDialTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseTimeout,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		ForceAttemptHTTP2:     true,
	}
}

// NewRoundTripper builds an http.RoundTripper on the shared transport
// defaults, suitable for handing to an XML-RPC client.
func NewRoundTripper(opts ...Option) http.RoundTripper {
	cfg := &config{
		userAgent: buildinfo.UserAgent(),
	}
	for _, o := range opts {
		o(cfg)
	}

	t := NewTransport()
	if cfg.responseTimeout > 0 {
		t.ResponseHeaderTimeout = cfg.responseTimeout
	}
	if cfg.tlsInsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	var rt http.RoundTripper = t
	if !cfg.skipUserAgent {
		rt = &userAgentTransport{
			base: t,
			ua:   cfg.userAgent,
		}
	}
	return rt
}

// userAgentTransport injects the User-Agent header on every request
// unless one is already set.
type userAgentTransport struct {
	base http.RoundTripper
	ua   string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		// Clone the request to avoid mutating the original, per RoundTripper contract.
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(req)
}
