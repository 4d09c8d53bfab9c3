package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hupe1980/kcluster"
	"github.com/hupe1980/kcluster/resource"
)

// runFlags are shared by every command that clusters.
type runFlags struct {
	k           int
	tries       int
	threshold   float64
	maxIter     int
	policy      string
	empty       string
	seed        int64
	parallelism int
	verbose     bool
	logFormat   string
	logLevel    string
	memoryLimit int64
	ioLimit     int64
}

func (f *runFlags) register(fs *flag.FlagSet, defaultK, defaultTries int) {
	fs.IntVar(&f.k, "k", defaultK, "number of clusters")
	fs.IntVar(&f.tries, "tries", defaultTries, "number of random restarts")
	fs.Float64Var(&f.threshold, "threshold", kcluster.DefaultThreshold, "convergence threshold on the objective change")
	fs.IntVar(&f.maxIter, "max-iter", kcluster.DefaultMaxIterations, "iteration cap per restart")
	fs.StringVar(&f.policy, "policy", "nonstrict", "convergence policy (nonstrict, strict)")
	fs.StringVar(&f.empty, "empty", "freeze", "empty cluster policy (freeze, fail, reseed)")
	fs.Int64Var(&f.seed, "seed", 0, "random seed (0 picks one at random)")
	fs.IntVar(&f.parallelism, "parallel", 1, "restarts running at the same time")
	fs.BoolVar(&f.verbose, "v", false, "log every iteration")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format (text, json)")
	fs.StringVar(&f.logLevel, "log-level", "info", "minimum log level")
	fs.Int64Var(&f.memoryLimit, "memory-limit", 0, "memory limit in bytes for restarts and cached datasets (0 = unlimited)")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "dataset read limit in bytes per second (0 = unlimited)")
}

func (f *runFlags) logger(w io.Writer) (*kcluster.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch f.logFormat {
	case "text":
		return kcluster.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return kcluster.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid -log-format %q", f.logFormat)
	}
}

func (f *runFlags) controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   f.memoryLimit,
		MaxConcurrentRuns:  int64(max(f.parallelism, 1)),
		IOLimitBytesPerSec: f.ioLimit,
	})
}

func (f *runFlags) options(logger *kcluster.Logger, rc *resource.Controller, mc kcluster.MetricsCollector) ([]kcluster.Option, error) {
	policy, err := parsePolicy(f.policy)
	if err != nil {
		return nil, err
	}
	empty, err := parseEmpty(f.empty)
	if err != nil {
		return nil, err
	}

	opts := []kcluster.Option{
		kcluster.WithTries(f.tries),
		kcluster.WithThreshold(f.threshold),
		kcluster.WithMaxIterations(f.maxIter),
		kcluster.WithConvergencePolicy(policy),
		kcluster.WithEmptyClusterPolicy(empty),
		kcluster.WithParallelism(f.parallelism),
		kcluster.WithVerbose(f.verbose),
		kcluster.WithLogger(logger),
		kcluster.WithResourceController(rc),
		kcluster.WithMetricsCollector(mc),
	}
	if f.seed != 0 {
		opts = append(opts, kcluster.WithRandSeed(f.seed))
	}
	return opts, nil
}

func parsePolicy(s string) (kcluster.ConvergencePolicy, error) {
	switch strings.ToLower(s) {
	case "nonstrict", "non-strict":
		return kcluster.NonStrict, nil
	case "strict":
		return kcluster.Strict, nil
	default:
		return 0, fmt.Errorf("invalid -policy %q", s)
	}
}

func parseEmpty(s string) (kcluster.EmptyClusterPolicy, error) {
	switch strings.ToLower(s) {
	case "freeze":
		return kcluster.EmptyFreeze, nil
	case "fail":
		return kcluster.EmptyFail, nil
	case "reseed":
		return kcluster.EmptyReseed, nil
	default:
		return 0, fmt.Errorf("invalid -empty %q", s)
	}
}

// parseInts parses a comma separated list such as "0,4,7".
func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer list %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
