package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one record as sent to or read from the backend, keyed by column.
type Row map[string]any

// String returns the column as text; missing or NULL columns yield "".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer and whether a usable value was present.
func (r Row) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return int64(n), true
	case []byte:
		return Row{key: string(v)}.Int64(key)
	default:
		return 0, false
	}
}

// Float64 returns the column as a float and whether a usable value was present.
func (r Row) Float64(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		return Row{key: string(v)}.Float64(key)
	default:
		return 0, false
	}
}

// Strings decodes a JSON array column. Arrays of objects contribute their
// "id" member, so both ["a","b"] and [{"id":"a"}] yield [a b].
func (r Row) Strings(key string) []string {
	var raw []any
	switch v := r[key].(type) {
	case nil:
		return nil
	case []any:
		raw = v
	case []string:
		return append([]string(nil), v...)
	default:
		text := strings.TrimSpace(Row{key: v}.String(key))
		if text == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil
		}
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if id, ok := v["id"].(string); ok && strings.TrimSpace(id) != "" {
				out = append(out, strings.TrimSpace(id))
			}
		}
	}
	return out
}
