package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/nugget/odoo-mcp/internal/odoo"
)

// executeTool is the escape hatch: arbitrary method invocation with
// caller-supplied positional and keyword arguments passed through
// verbatim. No validation beyond model and method being present.
type executeTool struct{}

func (executeTool) Definition() Definition {
	return Definition{
		Name:        "odoo_execute",
		Description: "Execute arbitrary methods on Odoo models (advanced use)",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"method": map[string]any{
					"type":        "string",
					"description": "Method name to execute",
				},
				"args": map[string]any{
					"type":        "array",
					"description": "Positional arguments for the method",
					"items":       map[string]any{},
				},
				"kwargs": map[string]any{
					"type":        "object",
					"description": "Keyword arguments for the method",
				},
			},
			"required": []string{"model", "method"},
		},
	}
}

func (executeTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}
	method, err := requireString(args, "method")
	if err != nil {
		return "", err
	}

	result, err := s.Execute(ctx, model, method, listArg(args, "args"), mapArg(args, "kwargs"))
	if err != nil {
		return "", err
	}
	return FormatResult(result), nil
}

// listModelsTool enumerates the model registry (ir.model), applies an
// optional case-insensitive substring filter across the technical and
// display names, and sorts by technical name.
type listModelsTool struct{}

func (listModelsTool) Definition() Definition {
	return Definition{
		Name:        "odoo_list_models",
		Description: "List all available models in the Odoo instance",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filter": map[string]any{
					"type":        "string",
					"description": "Optional filter for model names",
				},
			},
		},
	}
}

func (listModelsTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	ids, err := s.Search(ctx, "ir.model", []any{}, odoo.SearchOptions{})
	if err != nil {
		return "", err
	}

	models, err := s.Read(ctx, "ir.model", ids, []string{"model", "name", "info"})
	if err != nil {
		return "", err
	}

	if filter := strings.ToLower(stringArg(args, "filter")); filter != "" {
		filtered := models[:0]
		for _, m := range models {
			technical, _ := m["model"].(string)
			display, _ := m["name"].(string)
			if strings.Contains(strings.ToLower(technical), filter) ||
				strings.Contains(strings.ToLower(display), filter) {
				filtered = append(filtered, m)
			}
		}
		models = filtered
	}

	sort.Slice(models, func(i, j int) bool {
		a, _ := models[i]["model"].(string)
		b, _ := models[j]["model"].(string)
		return a < b
	})

	return FormatResult(models), nil
}

type getFieldsTool struct{}

func (getFieldsTool) Definition() Definition {
	return Definition{
		Name:        "odoo_get_fields",
		Description: "Get field definitions for a specific Odoo model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model name",
				},
				"attributes": map[string]any{
					"type":        "array",
					"description": "Specific field attributes to return (optional)",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []string{"model"},
		},
	}
}

func (getFieldsTool) Execute(ctx context.Context, s Session, args map[string]any) (string, error) {
	model, err := requireString(args, "model")
	if err != nil {
		return "", err
	}

	kwargs := map[string]any{}
	if attrs := stringsArg(args, "attributes"); attrs != nil {
		kwargs["attributes"] = attrs
	}

	fields, err := s.Execute(ctx, model, "fields_get", nil, kwargs)
	if err != nil {
		return "", err
	}
	return FormatResult(fields), nil
}
