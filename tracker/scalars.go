package tracker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const scalarFileName = "scalars.jsonl"

// scalarRecord is one line of scalars.jsonl.
type scalarRecord struct {
	RunID    string  `json:"run_id"`
	Tag      string  `json:"tag"`
	Name     string  `json:"name"`
	Step     int     `json:"step"`
	Value    float64 `json:"value"`
	WallTime float64 `json:"wall_time"`
}

// scalarWriter appends scalar records as JSON lines.
type scalarWriter struct {
	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	encoder *json.Encoder
	closed  bool
}

func newScalarWriter(dir string) (*scalarWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scalar directory '%s': %w", dir, err)
	}

	path := filepath.Join(dir, scalarFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open scalar file '%s': %w", path, err)
	}

	buf := bufio.NewWriter(f)
	return &scalarWriter{
		file:    f,
		buf:     buf,
		encoder: json.NewEncoder(buf),
	}, nil
}

func (w *scalarWriter) write(rec scalarRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if rec.WallTime == 0 {
		rec.WallTime = float64(time.Now().UnixNano()) / 1e9
	}
	if err := w.encoder.Encode(rec); err != nil {
		return fmt.Errorf("failed to write scalar %s/%s: %w", rec.Tag, rec.Name, err)
	}
	return nil
}

// flush pushes buffered records to the file.
func (w *scalarWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.buf.Flush()
}

func (w *scalarWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush scalars: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to sync scalars: %w", err)
	}
	return w.file.Close()
}
