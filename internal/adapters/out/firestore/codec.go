// internal/adapters/out/firestore/codec.go
package firestore

import (
	"time"
)

// Firestore hands numbers back as int64 or float64 depending on how
// they were written; these helpers absorb both.

func getStr(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getFloat(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func getBool(data map[string]any, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getTime(data map[string]any, key string) (time.Time, bool) {
	if v, ok := data[key].(time.Time); ok {
		return v.UTC(), true
	}
	return time.Time{}, false
}

func getStrSlice(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
