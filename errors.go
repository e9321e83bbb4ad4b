// FILE: lixenwraith/hparams/errors.go
package hparams

import "errors"

var (
	// ErrDocumentLoad is returned when the configuration document is missing,
	// unreadable, or not a mapping in one of the supported formats.
	ErrDocumentLoad = errors.New("document load failed")

	// ErrConfigNotFound is returned when file discovery finds no document and no
	// explicit path was given.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrArgumentParse is returned when command-line tokens do not match the
	// argument schema derived from the document defaults.
	ErrArgumentParse = errors.New("argument parse failed")

	// ErrHelp is returned when -h or --help is present on the command line.
	ErrHelp = errors.New("help requested")

	// ErrAttributeResolution is returned when a key is absent from a View.
	ErrAttributeResolution = errors.New("attribute not found")
)
