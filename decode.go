// FILE: lixenwraith/hparams/decode.go
package hparams

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ScanTag is the struct tag Scan uses to map keys to fields.
const ScanTag = "yaml"

// Scan decodes the mapping under basePath (dot-separated, "" for the root)
// into target, which must be a non-nil pointer to a struct or map. Input is
// weakly typed, so "5" decodes into an int field and "1m" into a
// time.Duration.
func (v *View) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	section := v.ToMap()
	basePath = strings.TrimSuffix(basePath, ".")
	if basePath != "" {
		value, err := v.GetPath(basePath)
		if err != nil {
			return fmt.Errorf("scan %q: %w", basePath, err)
		}
		sub, ok := value.(*View)
		if !ok {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, value)
		}
		section = sub.ToMap()
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          ScanTag,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}
