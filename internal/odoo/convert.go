package odoo

import "fmt"

// XML-RPC decoding yields any-typed values: int64 for integers, bool
// for booleans, []any for arrays, and map[string]any for structs. The
// helpers below coerce those into the shapes the typed operations
// promise.

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func toInt64s(v any) ([]int64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &unexpectedTypeError{method: "search", value: v}
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, ok := asInt64(item)
		if !ok {
			return nil, &unexpectedTypeError{method: "search", value: item}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toRecords(v any) ([]map[string]any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &unexpectedTypeError{method: "read", value: v}
	}
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &unexpectedTypeError{method: "read", value: item}
		}
		records = append(records, rec)
	}
	return records, nil
}

// unexpectedTypeError reports a server response that does not match
// the method's documented shape.
type unexpectedTypeError struct {
	method string
	value  any
}

func (e *unexpectedTypeError) Error() string {
	return fmt.Sprintf("%s: unexpected response type %T", e.method, e.value)
}
