// FILE: lixenwraith/hparams/loader.go
package hparams

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported document formats.
const (
	FormatAuto = "auto"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// LoadDocument reads and parses the configuration document at path, detecting
// the format from the file extension and falling back to content sniffing.
func LoadDocument(path string) (map[string]any, error) {
	return loadDocument(path, FormatAuto)
}

// loadDocument reads and parses a document. Any failure wraps ErrDocumentLoad
// and no partial document is returned.
func loadDocument(path, format string) (map[string]any, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty document path", ErrDocumentLoad)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file '%s' does not exist", ErrDocumentLoad, path)
		}
		return nil, fmt.Errorf("%w: failed to read '%s': %w", ErrDocumentLoad, path, err)
	}

	if format == "" || format == FormatAuto {
		format = detectFileFormat(path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
	}

	doc, err := parseDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrDocumentLoad, path, err)
	}
	return doc, nil
}

// parseDocument decodes raw bytes in the given format into a canonical mapping.
func parseDocument(data []byte, format string) (map[string]any, error) {
	var raw any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		m := make(map[string]any)
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		raw = m
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Keep integers distinguishable from floats
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to determine document format")
	}

	if raw == nil {
		return nil, fmt.Errorf("document is empty")
	}

	doc, ok := canonicalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %T", raw)
	}
	return doc, nil
}

// applyEnv replaces the raw value of every top-level key that has a matching
// environment variable. Env values are strings and go through normalization
// like any other document string.
func applyEnv(doc map[string]any, prefix string) map[string]string {
	applied := make(map[string]string)
	for key := range doc {
		envVar := envName(prefix, key)
		if value, exists := os.LookupEnv(envVar); exists {
			doc[key] = value
			applied[key] = envVar
		}
	}
	return applied
}

// envName maps a top-level key to its environment variable name.
func envName(prefix, key string) string {
	env := strings.ReplaceAll(key, ".", "_")
	env = strings.ReplaceAll(env, "-", "_")
	return prefix + strings.ToUpper(env)
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first, YAML is a superset of it
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		if _, isMap := yamlTest.(map[string]any); isMap {
			return FormatYAML
		}
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	return ""
}
