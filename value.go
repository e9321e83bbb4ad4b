// FILE: lixenwraith/hparams/value.go
package hparams

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind classifies a default value for command-line parsing.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindList
	KindMapping
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	default:
		return "string"
	}
}

// kindOf classifies a canonical value. Values with no command-line
// representation (nil, timestamps, ...) are treated as strings.
func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case []any:
		return KindList
	case map[string]any, *View:
		return KindMapping
	default:
		return KindString
	}
}

// scalarKindOf is kindOf restricted to scalar kinds, used for list elements.
func scalarKindOf(v any) Kind {
	switch k := kindOf(v); k {
	case KindList, KindMapping:
		return KindString
	default:
		return k
	}
}

// NormalizeValue coerces a string into the most specific scalar it spells:
// a case-insensitive boolean literal, a float if it contains a decimal point,
// an integer otherwise. Strings that parse as none of these, and all
// non-string values, are returned unchanged.
func NormalizeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	trimmed := strings.TrimSpace(s)
	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		return s
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	return s
}

// Normalize applies NormalizeValue to every top-level value of doc in place.
// Nested mappings are left as they are; use NormalizeDeep to descend into them.
func Normalize(doc map[string]any) map[string]any {
	for key, value := range doc {
		doc[key] = NormalizeValue(value)
	}
	return doc
}

// NormalizeDeep is Normalize applied recursively to nested mappings and to
// the elements of lists.
func NormalizeDeep(doc map[string]any) map[string]any {
	for key, value := range doc {
		doc[key] = normalizeDeepValue(value)
	}
	return doc
}

func normalizeDeepValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return NormalizeDeep(val)
	case []any:
		for i := range val {
			val[i] = normalizeDeepValue(val[i])
		}
		return val
	default:
		return NormalizeValue(v)
	}
}

// coerce converts a command-line token into a value of the given scalar kind.
func coerce(token string, kind Kind) (any, error) {
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int value: %q", token)
		}
		return i, nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value: %q", token)
		}
		return f, nil
	case KindBool:
		// Only reachable for list elements; bool flags take no value
		b, err := strconv.ParseBool(token)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value: %q", token)
		}
		return b, nil
	case KindMapping, KindList:
		return nil, fmt.Errorf("a %s cannot be set from the command line", kind)
	default:
		return token, nil
	}
}

// canonicalize unifies the representations produced by the different
// document parsers: all integers become int64, json.Number becomes int64 or
// float64, arrays become []any and string-keyed maps become map[string]any.
// Strings are never touched here.
func canonicalize(v any) any {
	switch val := v.(type) {
	case nil, bool, int64, float64, string:
		return val
	case int:
		return int64(val)
	case int8, int16, int32:
		return reflect.ValueOf(val).Int()
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(val).Uint()
		if u > uint64(^uint64(0)>>1) {
			return float64(u)
		}
		return int64(u)
	case float32:
		return float64(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = canonicalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = canonicalize(item)
		}
		return out
	case []any:
		for i := range val {
			val[i] = canonicalize(val[i])
		}
		return val
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = canonicalize(item)
		}
		return out
	default:
		return val
	}
}
