// Package odoo implements an XML-RPC client for the Odoo external API.
//
// A Client owns one authenticated session: the numeric uid returned by
// the server and the secret used to obtain it, both required on every
// subsequent call. Connect replaces the session wholesale; there is no
// pooling and no multiplexing. Remote calls go through a retrying
// executor with linear backoff.
package odoo

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/nugget/odoo-mcp/internal/config"
	"github.com/nugget/odoo-mcp/internal/httpkit"
)

// Endpoint paths of the two Odoo XML-RPC services, relative to the
// base URL. The common service handles version and authentication;
// the object service handles model method calls.
const (
	commonPath = "/xmlrpc/2/common"
	objectPath = "/xmlrpc/2/object"
)

// Config holds the connection settings for one session. Values are
// fixed once the client is constructed.
type Config struct {
	// URL of the Odoo server. A missing scheme gets an http:// prefix
	// and a trailing slash is stripped.
	URL      string
	Database string
	Username string
	Password string
	// APIKey authenticates instead of Password (Odoo 14+).
	APIKey string
	// Timeout bounds a single request attempt.
	Timeout time.Duration
	// MaxRetries is the total number of attempts per remote call.
	MaxRetries int
	// RetryDelay is the base backoff delay; attempt n waits n*RetryDelay.
	RetryDelay time.Duration
	// InsecureSkipTLS disables certificate verification.
	InsecureSkipTLS bool
}

// Secret returns the credential sent on every call: the password if
// set, otherwise the API key.
func (c Config) Secret() string {
	if c.Password != "" {
		return c.Password
	}
	return c.APIKey
}

func (c *Config) applyDefaults() {
	c.URL = normalizeURL(c.URL)
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
}

// normalizeURL ensures the URL has a scheme and no trailing slash.
func normalizeURL(raw string) string {
	if raw != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// endpoint is the one-method surface this package needs from an
// XML-RPC connection. *xmlrpc.Client satisfies it; tests substitute
// fakes.
type endpoint interface {
	Call(serviceMethod string, args any, reply any) error
}

// ConnectInfo describes a freshly established session.
type ConnectInfo struct {
	UID           int64
	ServerVersion any
	Database      string
}

// Client is an Odoo XML-RPC session client. The zero value is not
// usable; construct with NewClient. Safe for concurrent use: Connect
// is serialized by a mutex, and data operations snapshot the session
// under the same lock before calling out.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex // guards the session fields below
	uid    int64
	secret string
	common endpoint
	object endpoint

	// Test seams. dial builds an endpoint for a service URL; sleep
	// waits between retry attempts.
	dial  func(url string) (endpoint, error)
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a session client from cfg. The connection is not
// established until Connect is called.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	c := &Client{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
	c.dial = c.dialEndpoint
	return c
}

func (c *Client) dialEndpoint(url string) (endpoint, error) {
	opts := []httpkit.Option{
		httpkit.WithResponseTimeout(c.cfg.Timeout),
	}
	if c.cfg.InsecureSkipTLS {
		opts = append(opts, httpkit.WithTLSInsecureSkipVerify())
	}
	return xmlrpc.NewClient(url, httpkit.NewRoundTripper(opts...))
}

// IsConnected reports whether a session has been established.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid != 0
}

// Connect establishes the common and object endpoints, fetches the
// server version, and authenticates with (database, username, secret).
// On success the session state is replaced outright; any prior session
// is discarded. A falsy uid from the server yields an *AuthError.
//
// Concurrent Connect calls are serialized so two authentications can
// never interleave and leave mixed uid/secret state.
func (c *Client) Connect(ctx context.Context) (*ConnectInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	common, err := c.dial(c.cfg.URL + commonPath)
	if err != nil {
		return nil, err
	}
	object, err := c.dial(c.cfg.URL + objectPath)
	if err != nil {
		return nil, err
	}

	var version any
	if err := c.callWithRetry(ctx, common, "version", nil, &version); err != nil {
		return nil, err
	}

	secret := c.cfg.Secret()
	var uidRaw any
	authArgs := []any{c.cfg.Database, c.cfg.Username, secret}
	if err := c.callWithRetry(ctx, common, "authenticate", authArgs, &uidRaw); err != nil {
		return nil, err
	}

	uid, ok := asInt64(uidRaw)
	if !ok || uid == 0 {
		return nil, &AuthError{Database: c.cfg.Database, Username: c.cfg.Username}
	}

	c.uid = uid
	c.secret = secret
	c.common = common
	c.object = object

	c.logger.Info("authenticated",
		"url", c.cfg.URL,
		"database", c.cfg.Database,
		"username", c.cfg.Username,
		"uid", uid,
	)

	return &ConnectInfo{
		UID:           uid,
		ServerVersion: version,
		Database:      c.cfg.Database,
	}, nil
}

// session snapshots the authenticated state. ok is false when Connect
// has not succeeded yet.
func (c *Client) session() (uid int64, secret string, object endpoint, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid == 0 {
		return 0, "", nil, false
	}
	return c.uid, c.secret, c.object, true
}

// Execute invokes an arbitrary method on a model via execute_kw. The
// wire parameters are (database, uid, secret, model, method, args...,
// kwargs) with the kwargs map appended only when non-empty. Fails fast
// with ErrNotAuthenticated before any network I/O if no session is
// established.
func (c *Client) Execute(ctx context.Context, model, method string, args []any, kwargs map[string]any) (any, error) {
	uid, secret, object, ok := c.session()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	params := []any{c.cfg.Database, uid, secret, model, method}
	params = append(params, args...)
	if len(kwargs) > 0 {
		params = append(params, kwargs)
	}

	var result any
	if err := c.callWithRetry(ctx, object, "execute_kw", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchOptions are the optional arguments to Search and SearchRead.
// Zero-valued options are omitted from the call entirely; the server
// distinguishes "absent" from "explicit default". Offset is always
// sent.
type SearchOptions struct {
	Offset int
	Limit  int
	Order  string
}

func (o SearchOptions) kwargs() map[string]any {
	kw := map[string]any{"offset": o.Offset}
	if o.Limit > 0 {
		kw["limit"] = o.Limit
	}
	if o.Order != "" {
		kw["order"] = o.Order
	}
	return kw
}

// Search returns the ids of records matching domain.
func (c *Client) Search(ctx context.Context, model string, domain []any, opts SearchOptions) ([]int64, error) {
	result, err := c.Execute(ctx, model, "search", []any{domain}, opts.kwargs())
	if err != nil {
		return nil, err
	}
	return toInt64s(result)
}

// Read fetches records by id. When fields is nil all fields are
// returned.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kw := map[string]any{}
	if len(fields) > 0 {
		kw["fields"] = fields
	}
	result, err := c.Execute(ctx, model, "read", []any{ids}, kw)
	if err != nil {
		return nil, err
	}
	return toRecords(result)
}

// SearchRead combines search and read in one round trip.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, fields []string, opts SearchOptions) ([]map[string]any, error) {
	kw := opts.kwargs()
	if len(fields) > 0 {
		kw["fields"] = fields
	}
	result, err := c.Execute(ctx, model, "search_read", []any{domain}, kw)
	if err != nil {
		return nil, err
	}
	return toRecords(result)
}

// Create inserts a new record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	result, err := c.Execute(ctx, model, "create", []any{values}, nil)
	if err != nil {
		return 0, err
	}
	id, ok := asInt64(result)
	if !ok {
		return 0, &unexpectedTypeError{method: "create", value: result}
	}
	return id, nil
}

// Write updates the given records with values.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) (bool, error) {
	result, err := c.Execute(ctx, model, "write", []any{ids, values}, nil)
	if err != nil {
		return false, err
	}
	return asBool(result), nil
}

// Unlink deletes the given records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) (bool, error) {
	result, err := c.Execute(ctx, model, "unlink", []any{ids}, nil)
	if err != nil {
		return false, err
	}
	return asBool(result), nil
}

// callWithRetry runs one remote call with up to MaxRetries attempts.
// Failed attempts wait RetryDelay*attempt (1-based linear backoff, no
// jitter, no cap) before the next try. Every error is treated as
// retryable, including permanent ones from the far end; after the last
// attempt the final error is returned unchanged so callers see the
// true failure. Cancelling ctx aborts a pending backoff wait, not an
// in-flight attempt.
func (c *Client) callWithRetry(ctx context.Context, ep endpoint, method string, args any, reply any) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		start := time.Now()
		err := ep.Call(method, args, reply)
		if err == nil {
			c.logger.Log(ctx, config.LevelTrace, "rpc call",
				"method", method,
				"attempt", attempt,
				"elapsed", time.Since(start),
			)
			return nil
		}

		lastErr = err
		c.logger.Warn("rpc attempt failed",
			"method", method,
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"error", err,
		)

		if attempt < c.cfg.MaxRetries {
			if werr := c.sleep(ctx, time.Duration(attempt)*c.cfg.RetryDelay); werr != nil {
				return werr
			}
		}
	}
	return lastErr
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
