// FILE: lixenwraith/hparams/discovery_test.go
package hparams

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedDiscovery(dirs ...string) FileDiscoveryOptions {
	opts := DefaultDiscoveryOptions("train")
	opts.Paths = dirs
	opts.UseXDG = false
	opts.UseCurrentDir = false
	return opts
}

// TestFileDiscovery tests the document source precedence
func TestFileDiscovery(t *testing.T) {
	searchDir := t.TempDir()
	searched := filepath.Join(searchDir, "train.toml")
	require.NoError(t, os.WriteFile(searched, []byte("epochs = 1\n"), 0644))

	flagDoc := writeDoc(t, "flag.yaml", "epochs: 2\n")
	envDoc := writeDoc(t, "env.yaml", "epochs: 3\n")
	explicit := writeDoc(t, "explicit.yaml", "epochs: 4\n")

	epochsOf := func(t *testing.T, b *Builder) int64 {
		t.Helper()
		cfg, err := b.Build()
		require.NoError(t, err)
		n, err := cfg.Int("epochs")
		require.NoError(t, err)
		return n
	}

	t.Run("SearchPath", func(t *testing.T) {
		b := NewBuilder().WithArgs(nil).WithFileDiscovery(isolatedDiscovery(searchDir))
		assert.Equal(t, int64(1), epochsOf(t, b))
	})

	t.Run("ExplicitBeatsSearch", func(t *testing.T) {
		b := NewBuilder().WithArgs(nil).WithFile(explicit).WithFileDiscovery(isolatedDiscovery(searchDir))
		assert.Equal(t, int64(4), epochsOf(t, b))
	})

	t.Run("EnvBeatsExplicit", func(t *testing.T) {
		t.Setenv("TRAIN_CONFIG", envDoc)
		b := NewBuilder().WithArgs(nil).WithFile(explicit).WithFileDiscovery(isolatedDiscovery(searchDir))
		assert.Equal(t, int64(3), epochsOf(t, b))
	})

	t.Run("FlagBeatsEnv", func(t *testing.T) {
		t.Setenv("TRAIN_CONFIG", envDoc)
		b := NewBuilder().
			WithArgs([]string{"--config", flagDoc, "--epochs", "7"}).
			WithFileDiscovery(isolatedDiscovery(searchDir))
		assert.Equal(t, int64(7), epochsOf(t, b), "the flag is removed before override parsing")
	})

	t.Run("FlagEqualsForm", func(t *testing.T) {
		b := NewBuilder().
			WithArgs([]string{"--config=" + flagDoc}).
			WithFileDiscovery(isolatedDiscovery(searchDir))
		assert.Equal(t, int64(2), epochsOf(t, b))
	})

	t.Run("NothingFound", func(t *testing.T) {
		_, err := NewBuilder().WithArgs(nil).WithFileDiscovery(isolatedDiscovery(t.TempDir())).Build()
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestExtractFlag(t *testing.T) {
	remaining, value := extractFlag([]string{"--config", "a.yaml", "--lr", "1", "--config=b.yaml"}, "--config")
	assert.Equal(t, "b.yaml", value)
	assert.Equal(t, []string{"--lr", "1"}, remaining)

	remaining, value = extractFlag([]string{"--lr", "1"}, "")
	assert.Equal(t, "", value)
	assert.Equal(t, []string{"--lr", "1"}, remaining)

	remaining, value = extractFlag([]string{"--config"}, "--config")
	assert.Equal(t, "", value)
	assert.Equal(t, []string{"--config"}, remaining)
}

func TestXDGSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-home")
	t.Setenv("XDG_CONFIG_DIRS", "/opt/a"+string(os.PathListSeparator)+"/opt/b")

	assert.Equal(t, []string{
		filepath.Join("/tmp/xdg-home", "train"),
		filepath.Join("/opt/a", "train"),
		filepath.Join("/opt/b", "train"),
	}, xdgSearchPaths("train"))

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/u")
	t.Setenv("XDG_CONFIG_DIRS", "")
	assert.Equal(t, []string{
		filepath.Join("/home/u", ".config", "train"),
		filepath.Join("/etc/xdg", "train"),
		filepath.Join("/etc", "train"),
	}, xdgSearchPaths("train"))
}

func TestFindDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "train.yaml"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.json"), []byte("{}"), 0644))

	assert.Equal(t, filepath.Join(dir, "train.json"), findDocument([]string{dir}, "train", []string{".yaml", ".json"}), "directories are skipped")
	assert.Equal(t, "", findDocument([]string{dir}, "eval", []string{".yaml"}))
}
