// FILE: lixenwraith/hparams/view.go
package hparams

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// View exposes a configuration mapping through both key-style (Lookup) and
// attribute-style (Get/Set/Delete) access. Nested mappings are wrapped into
// *View on first attribute read and the wrapper is stored back in place, so
// every later read of the same key returns the identical *View.
//
// A View owns its mapping. All methods are safe for concurrent use; a nested
// View guards its own mapping.
type View struct {
	data  map[string]any
	mutex sync.RWMutex
}

// Wrap returns a View over m. Wrapping a *View returns it unchanged, and a
// nil map yields an empty View.
func Wrap(m any) *View {
	switch v := m.(type) {
	case *View:
		return v
	case map[string]any:
		if v == nil {
			v = make(map[string]any)
		}
		return &View{data: v}
	default:
		return &View{data: make(map[string]any)}
	}
}

// New creates an empty View.
func New() *View {
	return Wrap(nil)
}

// Get is attribute access: it returns the value for key, wrapping a nested
// mapping into a cached *View. An absent key fails with ErrAttributeResolution.
func (v *View) Get(key string) (any, error) {
	v.mutex.RLock()
	value, exists := v.data[key]
	v.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAttributeResolution, key)
	}

	if _, isMap := value.(map[string]any); !isMap {
		return value, nil
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	// Another caller may have wrapped or replaced it between the locks
	current, exists := v.data[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAttributeResolution, key)
	}
	if m, isMap := current.(map[string]any); isMap {
		current = Wrap(m)
		v.data[key] = current
	}
	return current, nil
}

// MustGet is Get that panics on a missing key.
func (v *View) MustGet(key string) any {
	value, err := v.Get(key)
	if err != nil {
		panic(err)
	}
	return value
}

// Lookup is key-style access: it returns the stored value as is, without
// wrapping nested mappings.
func (v *View) Lookup(key string) (any, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	value, exists := v.data[key]
	return value, exists
}

// Has reports whether key is present.
func (v *View) Has(key string) bool {
	_, exists := v.Lookup(key)
	return exists
}

// Set stores value under key. Attribute and key access share the same
// underlying mapping, so the value is visible through both.
func (v *View) Set(key string, value any) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.data[key] = value
}

// Delete removes key. An absent key fails with ErrAttributeResolution.
func (v *View) Delete(key string) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if _, exists := v.data[key]; !exists {
		return fmt.Errorf("%w: %s", ErrAttributeResolution, key)
	}
	delete(v.data, key)
	return nil
}

// Sub returns the nested View under key.
func (v *View) Sub(key string) (*View, error) {
	value, err := v.Get(key)
	if err != nil {
		return nil, err
	}
	sub, ok := value.(*View)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %T, not a mapping", ErrAttributeResolution, key, value)
	}
	return sub, nil
}

// GetPath resolves a dot-separated path such as "optimizer.lr" through
// nested views.
func (v *View) GetPath(path string) (any, error) {
	segments := strings.Split(path, ".")
	current := v
	for i, segment := range segments {
		if i == len(segments)-1 {
			return current.Get(segment)
		}
		next, err := current.Sub(segment)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		current = next
	}
	return nil, fmt.Errorf("%w: empty path", ErrAttributeResolution)
}

// SetPath sets a dot-separated path, creating intermediate views as needed.
// An intermediate segment holding a non-mapping value is replaced.
func (v *View) SetPath(path string, value any) error {
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}

	current := v
	for _, segment := range segments[:len(segments)-1] {
		next, err := current.Sub(segment)
		if err != nil {
			next = New()
			current.Set(segment, next)
		}
		current = next
	}
	current.Set(segments[len(segments)-1], value)
	return nil
}

// Keys returns the top-level keys in sorted order.
func (v *View) Keys() []string {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	keys := make([]string, 0, len(v.data))
	for key := range v.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level keys.
func (v *View) Len() int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return len(v.data)
}

// ToMap returns a deep copy of the mapping with every nested View unwrapped
// back into a plain map[string]any.
func (v *View) ToMap() map[string]any {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	out := make(map[string]any, len(v.data))
	for key, value := range v.data {
		out[key] = unwrapValue(value)
	}
	return out
}

// Clone creates a deep copy of the view. Use it to hand a private copy to a
// goroutine that needs to mutate configuration.
func (v *View) Clone() *View {
	return Wrap(v.ToMap())
}

// Flatten returns every leaf under dot-notation paths.
func (v *View) Flatten() map[string]any {
	return flattenMap(v.ToMap(), "")
}

// Debug renders every leaf as a sorted "path: value" line.
func (v *View) Debug() string {
	flat := v.Flatten()
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		b.WriteString(fmt.Sprintf("%s: %v\n", path, flat[path]))
	}
	return b.String()
}

func unwrapValue(value any) any {
	switch val := value.(type) {
	case *View:
		return val.ToMap()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = unwrapValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = unwrapValue(item)
		}
		return out
	default:
		return val
	}
}
