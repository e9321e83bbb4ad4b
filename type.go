// File: lixenwraith/hparams/type.go
package hparams

import (
	"fmt"
	"reflect"
	"strconv"
)

// String retrieves a string value by dot path.
// Attempts conversion from common types if the stored value isn't already a string.
func (v *View) String(path string) (string, error) {
	val, err := v.GetPath(path)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil // Treat nil as empty string for convenience
	}

	switch s := val.(type) {
	case string:
		return s, nil
	case *View:
		return "", fmt.Errorf("cannot convert mapping to string for path %s", path)
	case fmt.Stringer:
		return s.String(), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Int retrieves an integer value by dot path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (v *View) Int(path string) (int64, error) {
	val, err := v.GetPath(path)
	if err != nil {
		return 0, err
	}
	return toInt(val, path)
}

// Float retrieves a float value by dot path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (v *View) Float(path string) (float64, error) {
	val, err := v.GetPath(path)
	if err != nil {
		return 0, err
	}
	return toFloat(val, path)
}

// Bool retrieves a boolean value by dot path.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (v *View) Bool(path string) (bool, error) {
	val, err := v.GetPath(path)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is nil, cannot convert to bool", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		s := rv.String()
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", s, path, err)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
}

// Strings retrieves a list by dot path with every element rendered as a string.
func (v *View) Strings(path string) ([]string, error) {
	list, err := v.list(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, item := range list {
		if s, ok := item.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%v", item)
		}
	}
	return out, nil
}

// Ints retrieves a list of integers by dot path.
func (v *View) Ints(path string) ([]int64, error) {
	list, err := v.list(path)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(list))
	for i, item := range list {
		n, err := toInt(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Floats retrieves a list of floats by dot path.
func (v *View) Floats(path string) ([]float64, error) {
	list, err := v.list(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, err := toFloat(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (v *View) list(path string) ([]any, error) {
	val, err := v.GetPath(path)
	if err != nil {
		return nil, err
	}
	list, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("value for path %s is %T, not a list", path, val)
	}
	return list, nil
}

func toInt(val any, path string) (int64, error) {
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to int", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(rv.Float()), nil
	case reflect.String:
		s := rv.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil { // Base 0 for "0xFF"
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return int64(f), nil
			}
			return 0, fmt.Errorf("cannot convert string %q to int for path %s: %w", s, path, err)
		}
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int for path %s", val, path)
}

func toFloat(val any, path string) (float64, error) {
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to float", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.String:
		s := rv.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		} else {
			return 0, fmt.Errorf("cannot convert string %q to float for path %s: %w", s, path, err)
		}
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to float for path %s", val, path)
}
