// Command hparams resolves a configuration document against command-line
// overrides and prints the merged result.
//
//	hparams --config train.yaml --lr 0.05 --layers 128 64
//
// Without --config the document is taken from $HPARAMS_CONFIG, then from
// hparams.{yaml,yml,toml,json} in the current directory or the XDG config
// directories. $HPARAMS_OUTPUT selects the output format (yaml, toml, json).
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/lixenwraith/hparams"
)

func main() {
	logger := zap.NewNop()
	if os.Getenv("HPARAMS_DEBUG") != "" {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to create logger: %v", err)
		}
		logger = dev
	}
	defer logger.Sync()

	cfg, err := hparams.NewBuilder().
		WithProgram("hparams").
		WithFileDiscovery(hparams.DefaultDiscoveryOptions("hparams")).
		WithErrorHandling(hparams.ExitOnError).
		WithLogger(logger).
		Build()
	if err != nil {
		if errors.Is(err, hparams.ErrConfigNotFound) {
			fmt.Fprintln(os.Stderr, "hparams: no configuration document found (use --config or HPARAMS_CONFIG)")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "hparams: %v\n", err)
		os.Exit(1)
	}

	format := os.Getenv("HPARAMS_OUTPUT")
	if format == "" {
		format = hparams.FormatYAML
	}
	if err := cfg.Encode(os.Stdout, format); err != nil {
		fmt.Fprintf(os.Stderr, "hparams: %v\n", err)
		os.Exit(1)
	}
}
