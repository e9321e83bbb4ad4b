// FILE: lixenwraith/hparams/io_test.go
package hparams

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaveRoundTrip tests that a saved view loads back to the same values
func TestSaveRoundTrip(t *testing.T) {
	v := Wrap(map[string]any{
		"lr":     0.05,
		"epochs": int64(20),
		"debug":  true,
		"flags":  []any{int64(4), int64(5)},
		"model":  map[string]any{"name": "mlp", "depth": int64(3)},
	})
	_, err := v.Sub("model")
	require.NoError(t, err)

	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "hparams"+ext)
			require.NoError(t, v.Save(path))

			doc, err := LoadDocument(path)
			require.NoError(t, err)
			assert.Equal(t, v.ToMap(), doc)
		})
	}
}

func TestEncode(t *testing.T) {
	v := Wrap(map[string]any{"b": int64(1), "a": map[string]any{"c": "x"}})

	var buf bytes.Buffer
	require.NoError(t, v.Encode(&buf, FormatYAML))
	assert.Equal(t, "a:\n  c: x\nb: 1\n", buf.String())

	buf.Reset()
	require.NoError(t, v.Encode(&buf, FormatJSON))
	assert.JSONEq(t, `{"a": {"c": "x"}, "b": 1}`, buf.String())

	assert.Error(t, v.Encode(&buf, "ini"))
}

// TestScan tests decoding into structs at the root and at a sub-path
func TestScan(t *testing.T) {
	v := Wrap(map[string]any{
		"name": "run",
		"train": map[string]any{
			"batch_size": "32",
			"timeout":    "1m30s",
			"metrics":    "loss,acc",
		},
	})

	var train struct {
		BatchSize int           `yaml:"batch_size"`
		Timeout   time.Duration `yaml:"timeout"`
		Metrics   []string      `yaml:"metrics"`
	}
	require.NoError(t, v.Scan("train", &train))
	assert.Equal(t, 32, train.BatchSize)
	assert.Equal(t, 90*time.Second, train.Timeout)
	assert.Equal(t, []string{"loss", "acc"}, train.Metrics)

	var root map[string]any
	require.NoError(t, v.Scan("", &root))
	assert.Equal(t, "run", root["name"])

	assert.Error(t, v.Scan("name", &train), "scalar path")
	assert.ErrorIs(t, v.Scan("missing", &train), ErrAttributeResolution)
	assert.Error(t, v.Scan("", train), "non-pointer target")
}
