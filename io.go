// File: lixenwraith/hparams/io.go
package hparams

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Encode writes the mapping to w in the given format (yaml, toml or json).
func (v *View) Encode(w io.Writer, format string) error {
	data := v.ToMap()

	switch format {
	case FormatYAML, "", FormatAuto:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return encoder.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Save writes the mapping to path atomically, choosing the format from the
// file extension (YAML when the extension is not recognized).
func (v *View) Save(path string) error {
	format := detectFileFormat(path)
	if format == "" {
		format = FormatYAML
	}

	var buf bytes.Buffer
	if err := v.Encode(&buf, format); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}
