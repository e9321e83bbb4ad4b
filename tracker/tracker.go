package tracker

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/hparams"
)

// Configuration keys read or written by the tracker.
const (
	KeyResultDir  = "result_dir"
	KeyRunVersion = "run_ver"
	KeyLogPath    = "log_path"
	KeySuffix     = "name_suffix_str"
)

const (
	logFileName     = "train.log"
	hparamsFileName = "hparams.yaml"
	scalarDirName   = "tb"
)

var settingsRule = strings.Repeat("==", 28)

// ErrClosed is returned by logging calls made after Close.
var ErrClosed = errors.New("tracker is closed")

// Model is the minimal description of the model being trained.
type Model interface {
	Name() string
}

// Summarizer is implemented by models that can describe their structure.
// The summary is logged once at the start of a fresh run.
type Summarizer interface {
	Summary() string
}

// Param is a named parameter tensor flattened to its values, with an
// optional gradient of the same shape.
type Param struct {
	Name   string
	Values []float64
	Grad   []float64
}

type options struct {
	suffix  []any
	display bool
	logFile bool
	console io.Writer
	level   zapcore.Level
}

// Option configures a Tracker.
type Option func(*options)

// WithSuffix appends the given parts, joined by "_", to the model directory name.
func WithSuffix(parts ...any) Option {
	return func(o *options) { o.suffix = append(o.suffix, parts...) }
}

// WithDisplay enables or disables console output. Enabled by default.
func WithDisplay(display bool) Option {
	return func(o *options) { o.display = display }
}

// WithFileLog enables or disables train.log in the run directory. Enabled by default.
func WithFileLog(enabled bool) Option {
	return func(o *options) { o.logFile = enabled }
}

// WithConsole sets the console writer. Defaults to os.Stderr.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithLevel sets the minimum log level. Defaults to debug.
func WithLevel(level zapcore.Level) Option {
	return func(o *options) { o.level = level }
}

// Tracker is the explicit context of one experiment run.
type Tracker struct {
	cfg     *hparams.View
	logger  *zap.Logger
	runID   string
	runVer  string
	logPath string
	fresh   bool

	scalars  *scalarWriter
	registry *prometheus.Registry
	gauge    *prometheus.GaugeVec
	events   prometheus.Counter

	logFile   *os.File
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New prepares the run directory, the logger and the scalar writer.
//
// The run directory is <result_dir>/<model name>[_<suffix>]/<run_ver>. When
// cfg has no run_ver (or it is null) a fresh run_ver "run<N>" is allocated,
// N being the number of entries already in the model directory; otherwise the
// existing run is resumed. run_ver, log_path and, with a suffix,
// name_suffix_str are written back into cfg.
func New(cfg *hparams.View, model Model, opts ...Option) (*Tracker, error) {
	if cfg == nil || model == nil {
		return nil, fmt.Errorf("tracker requires a configuration and a model")
	}

	o := options{
		display: true,
		logFile: true,
		console: os.Stderr,
		level:   zapcore.DebugLevel,
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tracker{
		cfg:   cfg,
		runID: uuid.NewString(),
	}

	if err := t.setupDirectory(model, o.suffix); err != nil {
		return nil, err
	}

	if err := t.setupLogger(o); err != nil {
		return nil, err
	}

	scalars, err := newScalarWriter(filepath.Join(t.logPath, scalarDirName))
	if err != nil {
		t.closeLogger()
		return nil, err
	}
	t.scalars = scalars
	t.setupMetrics()

	if t.fresh {
		if err := t.logInitialSetup(model); err != nil {
			t.Close()
			return nil, err
		}
	}

	return t, nil
}

func (t *Tracker) setupDirectory(model Model, suffix []any) error {
	resultDir, err := t.cfg.String(KeyResultDir)
	if err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	if resultDir == "" {
		return fmt.Errorf("tracker: %s is empty", KeyResultDir)
	}

	name := model.Name()
	if len(suffix) > 0 {
		parts := make([]string, len(suffix))
		for i, p := range suffix {
			parts[i] = fmt.Sprint(p)
		}
		suffixStr := strings.Join(parts, "_")
		t.cfg.Set(KeySuffix, suffixStr)
		name = name + "_" + suffixStr
	}

	runRoot := filepath.Join(resultDir, name)
	if err := os.MkdirAll(runRoot, 0755); err != nil {
		return fmt.Errorf("failed to create result directory '%s': %w", runRoot, err)
	}

	runVer, exists := t.cfg.Lookup(KeyRunVersion)
	t.fresh = !exists || runVer == nil

	if t.fresh {
		entries, err := os.ReadDir(runRoot)
		if err != nil {
			return fmt.Errorf("failed to list result directory '%s': %w", runRoot, err)
		}
		// Skip numbers taken by a concurrent run
		for n := len(entries); ; n++ {
			t.runVer = fmt.Sprintf("run%d", n)
			t.logPath = filepath.Join(runRoot, t.runVer)
			err := os.Mkdir(t.logPath, 0755)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrExist) {
				return fmt.Errorf("failed to create run directory '%s': %w", t.logPath, err)
			}
		}
	} else {
		t.runVer = fmt.Sprint(runVer)
		if existing, ok := t.cfg.Lookup(KeyLogPath); ok {
			if s, isString := existing.(string); isString && s != "" {
				t.logPath = s
			}
		}
		if t.logPath == "" {
			t.logPath = filepath.Join(runRoot, t.runVer)
		}
		if err := os.MkdirAll(t.logPath, 0755); err != nil {
			return fmt.Errorf("failed to create run directory '%s': %w", t.logPath, err)
		}
	}

	t.cfg.Set(KeyRunVersion, t.runVer)
	t.cfg.Set(KeyLogPath, t.logPath)
	return nil
}

func (t *Tracker) setupLogger(o options) error {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})

	var cores []zapcore.Core
	if o.display && o.console != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(o.console), o.level))
	}
	if o.logFile {
		path := filepath.Join(t.logPath, logFileName)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file '%s': %w", path, err)
		}
		t.logFile = f
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), o.level))
	}

	if len(cores) == 0 {
		t.logger = zap.NewNop()
		return nil
	}
	t.logger = zap.New(zapcore.NewTee(cores...))
	return nil
}

func (t *Tracker) setupMetrics() {
	t.registry = prometheus.NewRegistry()
	constLabels := prometheus.Labels{"run": t.runVer}

	t.gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "hparams",
		Subsystem:   "tracker",
		Name:        "scalar",
		Help:        "Last value logged for each scalar.",
		ConstLabels: constLabels,
	}, []string{"tag", "name"})

	t.events = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "hparams",
		Subsystem:   "tracker",
		Name:        "scalars_total",
		Help:        "Number of scalar records written.",
		ConstLabels: constLabels,
	})

	t.registry.MustRegister(t.gauge, t.events)
}

// logInitialSetup records the model summary and the settings of a fresh run
// and saves the resolved configuration next to the logs.
func (t *Tracker) logInitialSetup(model Model) error {
	if s, ok := model.(Summarizer); ok {
		t.logger.Info(s.Summary())
	}

	settings := t.cfg.ToMap()
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("%s:\t%v\n", key, settings[key]))
	}

	t.logger.Info("\nTrain Settings")
	t.logger.Info("\n " + settingsRule)
	t.logger.Info(b.String())
	t.logger.Info(settingsRule)

	if err := t.cfg.Save(filepath.Join(t.logPath, hparamsFileName)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LogResults logs one line of metrics for an epoch and records every value
// as a scalar under tag.
func (t *Tracker) LogResults(values map[string]float64, epoch int, tag string) error {
	if t.closed.Load() {
		return ErrClosed
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s: %.6f", key, values[key])
	}
	t.logger.Info(fmt.Sprintf("Epoch: %d\t", epoch) + strings.Join(parts, "\t\t"))

	for _, key := range keys {
		if err := t.writeScalar(tag, key, epoch, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// LogParams records summary statistics of every parameter and the L2 norm of
// its gradient, if present, under the "params" tag.
func (t *Tracker) LogParams(params []Param, epoch int) error {
	const tag = "params"

	if t.closed.Load() {
		return ErrClosed
	}

	for _, p := range params {
		if len(p.Values) > 0 {
			stats := summarize(p.Values)
			for _, stat := range []struct {
				suffix string
				value  float64
			}{
				{"mean", stats.mean},
				{"std", stats.std},
				{"min", stats.min},
				{"max", stats.max},
			} {
				if err := t.writeScalar(tag, p.Name+"/"+stat.suffix, epoch, stat.value); err != nil {
					return err
				}
			}
		}

		if p.Grad != nil {
			if err := t.writeScalar(tag, p.Name+"_grad", epoch, l2Norm(p.Grad)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tracker) writeScalar(tag, name string, step int, value float64) error {
	err := t.scalars.write(scalarRecord{
		RunID: t.runID,
		Tag:   tag,
		Name:  name,
		Step:  step,
		Value: value,
	})
	if err != nil {
		return err
	}
	t.gauge.WithLabelValues(tag, name).Set(value)
	t.events.Inc()
	return nil
}

// Logger returns the run logger, for components that log on behalf of the run.
func (t *Tracker) Logger() *zap.Logger { return t.logger }

// Config returns the configuration the run was created from.
func (t *Tracker) Config() *hparams.View { return t.cfg }

// Registry returns the registry holding the run's scalar metrics.
func (t *Tracker) Registry() *prometheus.Registry { return t.registry }

// RunID returns the unique identifier attached to every scalar record.
func (t *Tracker) RunID() string { return t.runID }

// RunVersion returns the run directory name, e.g. "run3".
func (t *Tracker) RunVersion() string { return t.runVer }

// LogPath returns the run directory.
func (t *Tracker) LogPath() string { return t.logPath }

// Fresh reports whether this run was newly allocated rather than resumed.
func (t *Tracker) Fresh() bool { return t.fresh }

// Flush pushes buffered scalar records and log lines to disk.
func (t *Tracker) Flush() error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := t.scalars.flush(); err != nil {
		return fmt.Errorf("failed to flush scalars: %w", err)
	}
	_ = t.logger.Sync()
	return nil
}

// Close flushes the scalar writer and the logger. It is safe to call more
// than once.
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		var errs []error
		if t.scalars != nil {
			errs = append(errs, t.scalars.close())
		}
		errs = append(errs, t.closeLogger())
		t.closeErr = errors.Join(errs...)
	})
	return t.closeErr
}

func (t *Tracker) closeLogger() error {
	if t.logger != nil {
		// Sync on a terminal fails on some platforms; the file is synced below
		_ = t.logger.Sync()
	}
	if t.logFile == nil {
		return nil
	}
	err := t.logFile.Close()
	t.logFile = nil
	return err
}

type paramStats struct {
	mean, std, min, max float64
}

func summarize(values []float64) paramStats {
	s := paramStats{min: math.Inf(1), max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		sum += v
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.mean
		sq += d * d
	}
	s.std = math.Sqrt(sq / float64(len(values)))
	return s
}

func l2Norm(values []float64) float64 {
	var sq float64
	for _, v := range values {
		sq += v * v
	}
	return math.Sqrt(sq)
}
