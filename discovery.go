// FILE: lixenwraith/hparams/discovery.go
package hparams

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions controls where Build looks for the document when no
// path is fixed up front.
type FileDiscoveryOptions struct {
	Name       string   // base name without extension, e.g. "train"
	Extensions []string // tried in order for every directory
	Paths      []string // searched before the current and XDG directories

	// EnvVar holds an explicit document path, e.g. TRAIN_CONFIG.
	EnvVar string

	// CLIFlag names the document on the command line, e.g. "--config". The
	// flag and its value are removed before override parsing.
	CLIFlag string

	UseXDG        bool
	UseCurrentDir bool
}

// DefaultDiscoveryOptions looks for <app>.{yaml,yml,toml,json} and honors
// --config and <APP>_CONFIG.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".yaml", ".yml", ".toml", ".json"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery enables document discovery at build time. Precedence is
// the CLI flag, then the environment variable, then a WithFile path, then the
// search directories.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// discover sets b.file and returns args without the document flag.
func (b *Builder) discover(opts FileDiscoveryOptions, args []string) []string {
	args, path := extractFlag(args, opts.CLIFlag)

	switch {
	case path != "":
		b.file = path
	case opts.EnvVar != "" && os.Getenv(opts.EnvVar) != "":
		b.file = os.Getenv(opts.EnvVar)
	case b.file == "":
		// Left empty when nothing matches; build reports ErrConfigNotFound
		b.file = findDocument(opts.searchDirs(), opts.Name, opts.Extensions)
	}
	return args
}

func (opts FileDiscoveryOptions) searchDirs() []string {
	dirs := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, xdgSearchPaths(opts.Name)...)
	}
	return dirs
}

// findDocument returns the first regular file dir/name+ext, or "".
func findDocument(dirs []string, name string, extensions []string) string {
	for _, dir := range dirs {
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}

// extractFlag removes "flag value" or "flag=value" from args. The last
// occurrence wins.
func extractFlag(args []string, flag string) ([]string, string) {
	if flag == "" {
		return args, ""
	}

	var value string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == flag && i+1 < len(args):
			value = args[i+1]
			i++
		case strings.HasPrefix(arg, flag+"="):
			value = strings.TrimPrefix(arg, flag+"=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, value
}

// xdgSearchPaths lists the per-user then the system config directories for
// app, following the XDG base directory conventions.
func xdgSearchPaths(app string) []string {
	home := os.Getenv("XDG_CONFIG_HOME")
	if home == "" {
		if userHome := os.Getenv("HOME"); userHome != "" {
			home = filepath.Join(userHome, ".config")
		}
	}

	system := []string{"/etc/xdg", "/etc"}
	if dirs := os.Getenv("XDG_CONFIG_DIRS"); dirs != "" {
		system = filepath.SplitList(dirs)
	}

	var paths []string
	if home != "" {
		paths = append(paths, filepath.Join(home, app))
	}
	for _, dir := range system {
		paths = append(paths, filepath.Join(dir, app))
	}
	return paths
}
