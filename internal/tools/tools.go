// Package tools defines the Odoo operations exposed to the MCP host
// and the dispatcher that routes invocations onto the live session.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nugget/odoo-mcp/internal/odoo"
)

// Session is the slice of the Odoo client the tools call. It is
// satisfied by *odoo.Client; tests install fakes.
type Session interface {
	IsConnected() bool
	Search(ctx context.Context, model string, domain []any, opts odoo.SearchOptions) ([]int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error)
	SearchRead(ctx context.Context, model string, domain []any, fields []string, opts odoo.SearchOptions) ([]map[string]any, error)
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values map[string]any) (bool, error)
	Unlink(ctx context.Context, model string, ids []int64) (bool, error)
	Execute(ctx context.Context, model, method string, args []any, kwargs map[string]any) (any, error)
}

// Definition is the static, host-facing description of one tool.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Tool is one callable operation: a descriptor for discovery plus an
// execution function against an authenticated session.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, s Session, args map[string]any) (string, error)
}

// Connector establishes a new authenticated session from cfg. The
// dispatcher uses it when handling odoo_authenticate.
type Connector func(ctx context.Context, cfg odoo.Config) (Session, *odoo.ConnectInfo, error)

// Registry holds the fixed tool catalog and the current session.
type Registry struct {
	logger  *slog.Logger
	connect Connector
	tools   map[string]Tool
	order   []string

	mu      sync.Mutex
	session Session
}

// NewRegistry builds the catalog. connect is invoked by the
// odoo_authenticate tool to replace the current session.
func NewRegistry(connect Connector, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		logger:  logger,
		connect: connect,
		tools:   make(map[string]Tool),
	}
	for _, t := range []Tool{
		authenticateTool{},
		searchTool{},
		readTool{},
		createTool{},
		updateTool{},
		deleteTool{},
		executeTool{},
		listModelsTool{},
		getFieldsTool{},
	} {
		def := t.Definition()
		r.tools[def.Name] = t
		r.order = append(r.order, def.Name)
	}
	return r
}

// SetSession installs an already-connected session, used for startup
// auto-connect from configuration.
func (r *Registry) SetSession(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = s
}

func (r *Registry) currentSession() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Definitions returns the catalog in registration order, independent
// of any session.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch routes one invocation to the matching tool and always
// returns a text payload. Ordinary failures — unknown tool, missing
// session, execution errors — come back as "Error: ..." text rather
// than a protocol-level fault, so the host can surface them as normal
// tool results.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	log := r.logger.With("tool", name, "call_id", uuid.NewString())

	if name == authenticateName {
		return r.authenticate(ctx, log, args)
	}

	tool, ok := r.tools[name]
	if !ok {
		log.Warn("unknown tool requested")
		return fmt.Sprintf("Error: Unknown tool %s", name)
	}

	s := r.currentSession()
	if s == nil || !s.IsConnected() {
		return "Error: Not authenticated. Please use odoo_authenticate first."
	}

	result, err := tool.Execute(ctx, s, args)
	if err != nil {
		log.Error("tool execution failed", "error", err)
		return "Error: " + err.Error()
	}
	log.Debug("tool executed")
	return result
}

// authenticate builds a fresh session configuration from the tool
// arguments and replaces the current session outright.
func (r *Registry) authenticate(ctx context.Context, log *slog.Logger, args map[string]any) string {
	url := stringArg(args, "url")
	database := stringArg(args, "database")
	if url == "" {
		return "Error: url is required"
	}
	if database == "" {
		return "Error: database is required"
	}

	cfg := odoo.Config{
		URL:      url,
		Database: database,
		Username: stringArg(args, "username"),
		Password: stringArg(args, "password"),
		APIKey:   stringArg(args, "api_key"),
	}

	s, info, err := r.connect(ctx, cfg)
	if err != nil {
		log.Error("authentication failed", "url", url, "database", database, "error", err)
		return "Error: " + err.Error()
	}
	r.SetSession(s)
	log.Info("session established", "database", info.Database, "uid", info.UID)

	return FormatResult(struct {
		Success  bool   `json:"success"`
		UID      int64  `json:"uid"`
		Database string `json:"database"`
	}{true, info.UID, info.Database})
}

// FormatResult renders a tool result as pretty-printed JSON, the
// uniform output contract for every tool.
func FormatResult(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Argument helpers. MCP arguments arrive as JSON-decoded values, so
// numbers are float64 and arrays are []any.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func requireString(args map[string]any, key string) (string, error) {
	s := stringArg(args, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func intArg(args map[string]any, key string, def int) int {
	switch n := args[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func listArg(args map[string]any, key string) []any {
	l, _ := args[key].([]any)
	return l
}

func mapArg(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func stringsArg(args map[string]any, key string) []string {
	items, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func idsArg(args map[string]any, key string) ([]int64, error) {
	items, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			ids = append(ids, int64(n))
		case int64:
			ids = append(ids, n)
		case int:
			ids = append(ids, int64(n))
		default:
			return nil, fmt.Errorf("%s must be a list of integers", key)
		}
	}
	return ids, nil
}
