// File: lixenwraith/hparams/builder.go
package hparams

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrorHandling defines how Build reports command-line failures. The values
// mirror the constants of the standard flag package.
type ErrorHandling int

const (
	// ContinueOnError returns the error to the caller.
	ContinueOnError ErrorHandling = iota
	// ExitOnError prints usage and the error of a bad command line, then
	// exits with status 2 (status 0 for -h/--help). Document and validation
	// errors are still returned.
	ExitOnError
)

// osExit is swapped in tests.
var osExit = os.Exit

// ValidatorFunc validates a fully resolved configuration.
type ValidatorFunc func(v *View) error

// Builder provides a fluent interface for resolving a configuration
type Builder struct {
	file          string
	format        string
	args          []string
	prog          string
	envPrefix     string
	useEnv        bool
	deepNormalize bool
	handling      ErrorHandling
	output        io.Writer
	logger        *zap.Logger
	validators    []ValidatorFunc
	discovery     *FileDiscoveryOptions
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		format:     FormatAuto,
		args:       os.Args[1:],
		prog:       filepath.Base(os.Args[0]),
		handling:   ContinueOnError,
		output:     os.Stderr,
		logger:     zap.NewNop(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the configuration document path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the document format instead of detecting it
func (b *Builder) WithFormat(format string) *Builder {
	b.format = format
	return b
}

// WithArgs sets the command-line arguments, excluding the program name
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithProgram sets the program name shown in usage text
func (b *Builder) WithProgram(name string) *Builder {
	b.prog = name
	return b
}

// WithEnvPrefix lets PREFIX_KEY environment variables replace top-level
// document values before normalization
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	b.useEnv = true
	return b
}

// WithNestedNormalization normalizes strings inside nested mappings and
// lists too. By default only top-level strings are normalized.
func (b *Builder) WithNestedNormalization() *Builder {
	b.deepNormalize = true
	return b
}

// WithErrorHandling sets how command-line failures are reported
func (b *Builder) WithErrorHandling(h ErrorHandling) *Builder {
	b.handling = h
	return b
}

// WithOutput sets where usage and errors are printed under ExitOnError
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// WithLogger sets the logger used to trace resolution
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build loads the document, normalizes it, overlays command-line overrides
// and returns the merged configuration as a View.
func (b *Builder) Build() (*View, error) {
	view, schema, err := b.build()
	if err != nil && b.handling == ExitOnError && isCommandLineError(err) {
		b.exit(schema, err)
	}
	return view, err
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *View {
	view, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return view
}

// BuildAndScan builds and decodes the final configuration into target
func (b *Builder) BuildAndScan(target any) (*View, error) {
	view, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := view.Scan("", target); err != nil {
		return nil, fmt.Errorf("failed to scan final config into target: %w", err)
	}
	return view, nil
}

func (b *Builder) build() (*View, Schema, error) {
	args := b.args
	if b.discovery != nil {
		args = b.discover(*b.discovery, args)
	}
	if b.file == "" {
		return nil, nil, ErrConfigNotFound
	}

	doc, err := loadDocument(b.file, b.format)
	if err != nil {
		return nil, nil, err
	}
	log := b.logger.With(zap.String("file", b.file))
	log.Debug("document loaded", zap.Int("keys", len(doc)))

	if b.useEnv {
		for key, envVar := range applyEnv(doc, b.envPrefix) {
			log.Debug("environment override", zap.String("key", key), zap.String("env", envVar))
		}
	}

	if b.deepNormalize {
		NormalizeDeep(doc)
	} else {
		Normalize(doc)
	}

	schema := BuildSchema(doc)
	flat, supplied, err := schema.parse(args)
	if err != nil {
		return nil, schema, err
	}
	if len(supplied) > 0 {
		log.Debug("command-line overrides applied", zap.Strings("keys", sortedKeys(supplied)))
	}

	view := Wrap(Merge(doc, flat))

	var errs []error
	for _, validator := range b.validators {
		if err := validator(view); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, schema, fmt.Errorf("configuration validation failed: %w", err)
	}

	return view, schema, nil
}

func isCommandLineError(err error) bool {
	return errors.Is(err, ErrArgumentParse) || errors.Is(err, ErrHelp)
}

// exit reports err the way a command-line parser does and terminates.
func (b *Builder) exit(schema Schema, err error) {
	if errors.Is(err, ErrHelp) {
		fmt.Fprint(b.output, schema.Usage(b.prog))
		osExit(0)
		return
	}
	if schema != nil {
		fmt.Fprintln(b.output, schema.UsageLine(b.prog))
	}
	msg := strings.TrimPrefix(err.Error(), ErrArgumentParse.Error()+": ")
	fmt.Fprintf(b.output, "%s: error: %s\n", b.prog, msg)
	osExit(2)
}

// Merge overlays flat onto doc in place: every key of flat replaces the
// document value, and keys only in doc keep their value untouched.
func Merge(doc, flat map[string]any) map[string]any {
	if doc == nil {
		doc = make(map[string]any, len(flat))
	}
	for key, value := range flat {
		doc[key] = value
	}
	return doc
}
