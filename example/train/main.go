// FILE: example/train/main.go
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/lixenwraith/hparams"
	"github.com/lixenwraith/hparams/tracker"
)

// mlp stands in for a real model.
type mlp struct {
	layers []int64
}

func (m mlp) Name() string { return "mlp" }

func (m mlp) Summary() string {
	return fmt.Sprintf("MLP layers=%v", m.layers)
}

const defaultDocument = `# Example hyperparameters
result_dir: results
lr: "0.01"
epochs: 5
layers: [64, 32]
debug: false
optimizer:
  name: adam
  beta1: "0.9"
`

func main() {
	configPath := filepath.Join(os.TempDir(), "hparams-example.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(defaultDocument), 0644); err != nil {
			log.Fatalf("Failed to write example document: %v", err)
		}
		log.Printf("Wrote example document to %s", configPath)
	}

	// Try: go run ./example/train --lr 0.05 --epochs 3 --layers 128 64 --debug
	cfg := hparams.MustLoad(configPath)

	layers, err := cfg.Ints("layers")
	if err != nil {
		log.Fatalf("Bad layers: %v", err)
	}
	model := mlp{layers: layers}

	run, err := tracker.New(cfg, model, tracker.WithSuffix(layers[0]))
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}
	defer run.Close()

	epochs, _ := cfg.Int("epochs")
	lr, _ := cfg.Float("lr")
	optimizer, _ := cfg.String("optimizer.name")
	run.Logger().Info(fmt.Sprintf("optimizer=%s lr=%g run=%s", optimizer, lr, run.RunVersion()))

	weights := make([]float64, layers[0])
	for i := range weights {
		weights[i] = rand.NormFloat64()
	}

	for epoch := int64(1); epoch <= epochs; epoch++ {
		loss := math.Exp(-lr*float64(epoch)*10) + rand.Float64()*0.01
		if err := run.LogResults(map[string]float64{"loss": loss, "val_loss": loss * 1.1}, int(epoch), "train"); err != nil {
			log.Fatalf("Failed to log results: %v", err)
		}

		grads := make([]float64, len(weights))
		for i := range weights {
			grads[i] = weights[i] * lr
			weights[i] -= grads[i]
		}
		if err := run.LogParams([]tracker.Param{{Name: "fc1.weight", Values: weights, Grad: grads}}, int(epoch)); err != nil {
			log.Fatalf("Failed to log params: %v", err)
		}
	}

	log.Printf("Run written to %s", run.LogPath())
}
