// File: lixenwraith/hparams/convenience.go
package hparams

import (
	"fmt"
	"os"
)

// Load resolves the document at path with args as command-line overrides
// and returns the merged View. Errors are returned, never printed.
func Load(path string, args []string) (*View, error) {
	return NewBuilder().
		WithFile(path).
		WithArgs(args).
		Build()
}

// MustLoad resolves the document at path against os.Args[1:]. A bad
// command line prints usage and exits the process; any other failure panics.
func MustLoad(path string) *View {
	view, err := NewBuilder().
		WithFile(path).
		WithErrorHandling(ExitOnError).
		Build()
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return view
}

// Resolve runs the normalize, override and merge passes over an already
// loaded document. doc is modified in place.
func Resolve(doc map[string]any, args []string) (*View, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrDocumentLoad)
	}
	doc, ok := canonicalize(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document root must be a mapping", ErrDocumentLoad)
	}
	Normalize(doc)

	flat, err := BuildSchema(doc).Parse(args)
	if err != nil {
		return nil, err
	}
	return Wrap(Merge(doc, flat)), nil
}

// Usage returns the usage text of the override flags derived from the
// document at path.
func Usage(prog, path string) (string, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return "", err
	}
	return BuildSchema(Normalize(doc)).Usage(prog), nil
}

// Dump writes the view to stdout in YAML format
func Dump(v *View) error {
	return v.Encode(os.Stdout, FormatYAML)
}
