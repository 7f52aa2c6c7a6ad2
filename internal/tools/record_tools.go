package tools

import (
	"context"
	"fmt"

	"github.com/nugget/odoo-mcp/internal/odoo"
)

const authenticateName = "odoo_authenticate"

// authenticateTool declares the credential contract: username plus
// either a password or an API key. Execution is handled by the
// dispatcher, which creates the session as a side effect; the tool
// itself never runs against an existing session.
type authenticateTool struct{}

func (authenticateTool) Definition() Definition {
	return Definition{
		Name:        authenticateName,
		Description: "Authenticate with an Odoo instance",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Odoo server URL (e.g., https://mycompany.odoo.com)",
				},
				"database": map[string]any{
					"type":        "string",
					"description": "Database name",
				},
				"username": map[string]any{
					"type":        "string",
					"description": "Username for authentication",
				},
				"password": map[string]any{
					"type":        "string",
					"description": "Password for authentication",
				},
				"api_key": map[string]any{
					"type":        "string",
					"description": "API key for authentication (Odoo 14+, use instead of password)",
				},
			},
			"required": []string{"url", "database"},
			"oneOf": []any{
				map[string]any{"required": []string{"username", "password"}},
				map[string]any{"required": []string{"username", "api_key"}},
			},
		},
	}
}

func (authenticateTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	// Dispatch intercepts odoo_authenticate before tool execution.
	return FormatResult(map[string]any{"success": true}), nil
}

// searchTool wraps search_read rather than bare search: full records
// in a single round trip are the more useful default.
type searchTool struct{}

func (searchTool) Definition() Definition {
	return Definition{
		Name:        "odoo_search",
		Description: "Search for records in an Odoo model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name (e.g., 'res.partner', 'sale.order')",
				},
				"domain": map[string]any{
					"type":        "array",
					"description": "Search domain (e.g., [['is_company', '=', True]])",
					"items":       map[string]any{"type": "array"},
				},
				"fields": map[string]any{
					"type":        "array",
					"description": "Fields to return (optional)",
					"items":       map[string]any{"type": "string"},
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of records to return",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Number of records to skip",
					"default":     0,
				},
				"order": map[string]any{
					"type":        "string",
					"description": "Sort order (e.g., 'name asc')",
				},
			},
			"required": []string{"model", "domain"},
		},
	}
}

func (searchTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	domain, ok := args["domain"].([]any)
	if !ok {
		return "", fmt.Errorf("domain is required")
	}

	records, err := s.SearchRead(ctx, model, domain, stringsArg(args, "fields"), odoo.SearchOptions{
		Offset: intArg(args, "offset", 0),
		Limit:  intArg(args, "limit", 0),
		Order:  stringArg(args, "order"),
	})
	if err != nil {
		return "", err
	}
	return FormatResult(records), nil
}

type readTool struct{}

func (readTool) Definition() Definition {
	return Definition{
		Name:        "odoo_read",
		Description: "Read specific records by their IDs",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"ids": map[string]any{
					"type":        "array",
					"description": "List of record IDs",
					"items":       map[string]any{"type": "integer"},
				},
				"fields": map[string]any{
					"type":        "array",
					"description": "Fields to return (optional)",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []string{"model", "ids"},
		},
	}
}

func (readTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	ids, err := idsArg(args, "ids")
	if err != nil {
		return "", err
	}

	records, err := s.Read(ctx, model, ids, stringsArg(args, "fields"))
	if err != nil {
		return "", err
	}
	return FormatResult(records), nil
}

type createTool struct{}

func (createTool) Definition() Definition {
	return Definition{
		Name:        "odoo_create",
		Description: "Create a new record in an Odoo model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"values": map[string]any{
					"type":        "object",
					"description": "Field values for the new record",
				},
			},
			"required": []string{"model", "values"},
		},
	}
}

func (createTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	values := mapArg(args, "values")
	if values == nil {
		return "", fmt.Errorf("values is required")
	}

	id, err := s.Create(ctx, model, values)
	if err != nil {
		return "", err
	}
	return FormatResult(struct {
		Success bool   `json:"success"`
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}{true, id, fmt.Sprintf("Created record with ID %d", id)}), nil
}

type updateTool struct{}

func (updateTool) Definition() Definition {
	return Definition{
		Name:        "odoo_update",
		Description: "Update existing records in an Odoo model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"ids": map[string]any{
					"type":        "array",
					"description": "List of record IDs to update",
					"items":       map[string]any{"type": "integer"},
				},
				"values": map[string]any{
					"type":        "object",
					"description": "Field values to update",
				},
			},
			"required": []string{"model", "ids", "values"},
		},
	}
}

func (updateTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	ids, err := idsArg(args, "ids")
	if err != nil {
		return "", err
	}
	values := mapArg(args, "values")
	if values == nil {
		return "", fmt.Errorf("values is required")
	}

	success, err := s.Write(ctx, model, ids, values)
	if err != nil {
		return "", err
	}
	return FormatResult(struct {
		Success bool    `json:"success"`
		IDs     []int64 `json:"ids"`
		Message string  `json:"message"`
	}{success, ids, fmt.Sprintf("Updated %d record(s)", len(ids))}), nil
}

type deleteTool struct{}

func (deleteTool) Definition() Definition {
	return Definition{
		Name:        "odoo_delete",
		Description: "Delete records from an Odoo model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"ids": map[string]any{
					"type":        "array",
					"description": "List of record IDs to delete",
					"items":       map[string]any{"type": "integer"},
				},
			},
			"required": []string{"model", "ids"},
		},
	}
}

func (deleteTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	ids, err := idsArg(args, "ids")
	if err != nil {
		return "", err
	}

	success, err := s.Unlink(ctx, model, ids)
	if err != nil {
		return "", err
	}
	return FormatResult(struct {
		Success bool    `json:"success"`
		IDs     []int64 `json:"ids"`
		Message string  `json:"message"`
	}{success, ids, fmt.Sprintf("Deleted %d record(s)", len(ids))}), nil
}
