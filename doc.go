// File: lixenwraith/hparams/doc.go

// Package hparams resolves experiment hyperparameters from a configuration
// document (YAML, TOML or JSON) and command-line overrides derived from the
// document itself.
//
// Resolution runs in four passes:
//  1. Load: the document is parsed into a mapping.
//  2. Normalize: top-level string values are coerced to the most specific
//     scalar they spell ("true" -> bool, "0.5" -> float64, "10" -> int64).
//  3. Override: one --<key> flag is derived per top-level key from the type
//     of its default, and os.Args is parsed against those flags.
//  4. Merge: the parsed values replace the document defaults and the result
//     is wrapped in a View.
//
// Quick Start:
//
//	cfg, err := hparams.Load("train.yaml", os.Args[1:])
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lr, _ := cfg.Float("lr")
//	opt, _ := cfg.Sub("optimizer")
//	cfg.Set("log_path", "/runs/run3")
//
// Command line, for a document with lr: 0.01, epochs: 10, layers: [64, 32]
// and debug: false:
//
//	train --lr 0.05 --epochs 20 --layers 128 64 32 --debug
//
// Boolean keys are presence flags and can only switch a value to true.
// List keys take one or more values, each parsed like the first default
// element. Everything else takes exactly one value of the default's type.
// Unique prefixes of a flag are accepted.
//
// Nested mappings are not normalized unless the builder is given
// WithNestedNormalization, and they cannot be overridden from the command
// line.
package hparams
