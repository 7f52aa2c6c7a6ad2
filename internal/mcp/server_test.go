package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nugget/odoo-mcp/internal/odoo"
	"github.com/nugget/odoo-mcp/internal/tools"
)

func testRegistry() *tools.Registry {
	return tools.NewRegistry(func(ctx context.Context, cfg odoo.Config) (tools.Session, *odoo.ConnectInfo, error) {
		return nil, nil, errors.New("no server in tests")
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewServer(t *testing.T) {
	if srv := NewServer(testRegistry()); srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestNewToolCarriesRawSchema(t *testing.T) {
	for _, def := range testRegistry().Definitions() {
		tool := newTool(def)
		if tool.Name != def.Name {
			t.Errorf("tool name = %q, want %q", tool.Name, def.Name)
		}
		var schema map[string]any
		if err := json.Unmarshal(tool.RawInputSchema, &schema); err != nil {
			t.Fatalf("%s: raw schema is not JSON: %v", def.Name, err)
		}
		if schema["type"] != "object" {
			t.Errorf("%s: schema type = %v, want object", def.Name, schema["type"])
		}
	}
}
