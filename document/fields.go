package document

import (
	"encoding/json"
	"reflect"
	"time"
)

// Fields is the dynamic payload of a document. Values are one of:
// nil, bool, int64, float64, string, time.Time, map[string]any or []any.
// Other numeric kinds are accepted and widened by the accessors.
type Fields map[string]any

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case Fields:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// String returns the string stored under key.
func (f Fields) String(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok
}

// Int64 returns the integer stored under key, widening other numeric kinds.
func (f Fields) Int64(key string) (int64, bool) {
	n, ok := toFloat(f[key])
	if !ok {
		return 0, false
	}
	return int64(n), true
}

// Float64 returns the number stored under key.
func (f Fields) Float64(key string) (float64, bool) {
	return toFloat(f[key])
}

// Bool returns the boolean stored under key.
func (f Fields) Bool(key string) (bool, bool) {
	b, ok := f[key].(bool)
	return b, ok
}

// Time returns the timestamp stored under key. RFC 3339 strings are parsed.
func (f Fields) Time(key string) (time.Time, bool) {
	switch t := f[key].(type) {
	case time.Time:
		return t, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		return ts, err == nil
	}
	return time.Time{}, false
}

// Map returns the nested map stored under key.
func (f Fields) Map(key string) (Fields, bool) {
	switch t := f[key].(type) {
	case map[string]any:
		return Fields(t), true
	case Fields:
		return t, true
	}
	return nil, false
}

// List returns the nested list stored under key.
func (f Fields) List(key string) ([]any, bool) {
	l, ok := f[key].([]any)
	return l, ok
}

// Normalize converts decoded JSON payloads into the canonical variant kinds.
// json.Number values become int64 when integral, float64 otherwise.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func valueEqual(a, b any) bool {
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, v := range at {
			if bv, ok := bt[k]; !ok || !valueEqual(v, bv) {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valueEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case time.Time:
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}
