package cli

import (
	"fmt"
	"reflect"
)

// Accessors for the loosely typed rows the directory backend returns.
// Every accessor degrades to a zero value instead of failing, so row
// handling never branches on decode errors.

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func asSlice(value any) []any {
	switch values := value.(type) {
	case nil:
		return nil
	case []any:
		return values
	case []map[string]any:
		out := make([]any, len(values))
		for idx, row := range values {
			out[idx] = row
		}
		return out
	case []string:
		out := make([]any, len(values))
		for idx, item := range values {
			out[idx] = item
		}
		return out
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = rv.Index(idx).Interface()
	}
	return out
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func asBool(value any) bool {
	b, _ := value.(bool)
	return b
}

// asInt checks float64 first: JSON numbers in backend rows always
// decode to it.
func asInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
