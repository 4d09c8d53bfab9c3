package kcluster

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/internal/converge"
	"github.com/hupe1980/kcluster/internal/membership"
	"github.com/hupe1980/kcluster/resource"
)

const (
	// DefaultThreshold is the default convergence threshold on the objective change.
	DefaultThreshold = 1e-15
	// DefaultMaxIterations caps every single run.
	DefaultMaxIterations = 300
	// DefaultKMeansTries is the default number of k-means restarts.
	DefaultKMeansTries = 10
	// DefaultKMedoidsTries is the default number of k-medoids restarts.
	DefaultKMedoidsTries = 5
)

// ConvergencePolicy selects how an objective increase is treated.
type ConvergencePolicy = converge.Policy

const (
	// NonStrict stops when Jprev-J < threshold, including on an increase.
	NonStrict = converge.NonStrict
	// Strict stops when |Jprev-J| < threshold and fails with an
	// *ObjectiveIncreaseError when J grows by more than the threshold.
	Strict = converge.Strict
)

// EmptyClusterPolicy selects what happens to a cluster without members.
type EmptyClusterPolicy = membership.EmptyPolicy

const (
	// EmptyFreeze keeps the previous representative of an empty cluster.
	EmptyFreeze = membership.Freeze
	// EmptyFail aborts with a *DegenerateClusterError.
	EmptyFail = membership.Fail
	// EmptyReseed moves the representative onto a random data point.
	EmptyReseed = membership.Reseed
)

// Progress is passed to the observer after every iteration.
type Progress struct {
	Algorithm string
	Try       int
	Iteration int
	Objective float64
}

type options struct {
	threshold     float64
	tries         int
	maxIterations int
	policy        ConvergencePolicy
	empty         EmptyClusterPolicy
	centroidSeeds mat.Matrix
	medoidSeeds   []int
	rng           *rand.Rand
	parallelism   int
	verbose       bool
	loggerSet     bool
	logger        *Logger
	metrics       MetricsCollector
	controller    *resource.Controller
	observer      func(Progress)
}

// Option configures a KMeans or KMedoids call.
type Option func(*options)

// WithThreshold sets the convergence threshold on the objective change
// between two iterations. Defaults to DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithTries sets the number of random restarts. It is ignored when explicit
// seeds are given, because a seeded run is deterministic.
func WithTries(tries int) Option {
	return func(o *options) {
		o.tries = tries
	}
}

// WithMaxIterations caps the number of iterations of every single run.
// Defaults to DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithConvergencePolicy selects NonStrict (default) or Strict convergence.
func WithConvergencePolicy(p ConvergencePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithEmptyClusterPolicy selects EmptyFreeze (default), EmptyFail or EmptyReseed.
func WithEmptyClusterPolicy(p EmptyClusterPolicy) Option {
	return func(o *options) {
		o.empty = p
	}
}

// WithCentroidSeeds runs k-means exactly once from the given k-by-D
// centroids. The matrix is copied and never modified.
func WithCentroidSeeds(seeds mat.Matrix) Option {
	return func(o *options) {
		o.centroidSeeds = copySeeds(seeds)
	}
}

func copySeeds(seeds mat.Matrix) mat.Matrix {
	if seeds == nil {
		return nil
	}
	if r, c := seeds.Dims(); r == 0 || c == 0 {
		return seeds
	}
	return mat.DenseCopyOf(seeds)
}

// WithMedoidSeeds runs k-medoids exactly once from the given k medoid
// indices. The slice is copied and never modified.
func WithMedoidSeeds(seeds []int) Option {
	return func(o *options) {
		o.medoidSeeds = slices.Clone(seeds)
	}
}

// WithRandSeed makes the restart sampling reproducible.
func WithRandSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed)) //nolint:gosec
	}
}

// WithRand sets the master random source used to sample initial seeds.
// The source is consumed by the call and must not be shared concurrently.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithParallelism runs up to n restarts concurrently. The result is the same
// as a sequential call with the same random source. Defaults to 1.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithVerbose logs every iteration at info level instead of debug level.
// Without WithLogger the iterations go to a text logger on stderr.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// WithLogger configures structured logging for clustering calls.
// Pass nil to disable logging, also in verbose mode.
//
// Example with JSON logging:
//
//	logger := kcluster.NewJSONLogger(slog.LevelInfo)
//	res, err := kcluster.KMeans(ctx, data, 4, kcluster.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
		o.loggerSet = true
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
		o.loggerSet = true
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithResourceController bounds concurrency and working memory across all
// calls sharing the controller.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithObserver registers a callback invoked after every iteration of every
// restart. With parallelism > 1 it may be called concurrently.
func WithObserver(fn func(Progress)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func applyOptions(defaultTries int, optFns []Option) options {
	o := options{
		threshold:     DefaultThreshold,
		tries:         defaultTries,
		maxIterations: DefaultMaxIterations,
		parallelism:   1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	switch {
	case o.logger != nil:
	case o.verbose && !o.loggerSet:
		o.logger = NewTextLogger(slog.LevelInfo)
	default:
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}
	return o
}

func (o *options) validate() error {
	if math.IsNaN(o.threshold) || math.IsInf(o.threshold, 0) || o.threshold < 0 {
		return optionError("threshold", "a finite value >= 0", fmt.Sprint(o.threshold))
	}
	if o.tries < 1 {
		return optionError("tries", ">= 1", fmt.Sprint(o.tries))
	}
	if o.maxIterations < 1 {
		return optionError("max iterations", ">= 1", fmt.Sprint(o.maxIterations))
	}
	if o.parallelism < 1 {
		return optionError("parallelism", ">= 1", fmt.Sprint(o.parallelism))
	}
	switch o.policy {
	case NonStrict, Strict:
	default:
		return optionError("convergence policy", "NonStrict or Strict", o.policy.String())
	}
	switch o.empty {
	case EmptyFreeze, EmptyFail, EmptyReseed:
	default:
		return optionError("empty cluster policy", "EmptyFreeze, EmptyFail or EmptyReseed", o.empty.String())
	}
	return nil
}

func (o *options) criterion() converge.Criterion {
	return converge.Criterion{
		Threshold:     o.threshold,
		MaxIterations: o.maxIterations,
		Policy:        o.policy,
	}
}

const (
	stopReasonConverged     = "converged"
	stopReasonIncreased     = "objective-increased"
	stopReasonMaxIterations = "max-iterations"
)

func stopReason(s converge.Status) string {
	switch s {
	case converge.Increased:
		return stopReasonIncreased
	case converge.Exhausted:
		return stopReasonMaxIterations
	default:
		return stopReasonConverged
	}
}
