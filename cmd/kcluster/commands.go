package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster"
	"github.com/hupe1980/kcluster/codec"
	"github.com/hupe1980/kcluster/dataset"
	"github.com/hupe1980/kcluster/imageio"
	"github.com/hupe1980/kcluster/registry"
)

const (
	algorithmKMeans   = "kmeans"
	algorithmKMedoids = "kmedoids"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runCluster(ctx context.Context, algorithm string, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet(algorithm, stderr)

	var rf runFlags
	defaultTries := kcluster.DefaultKMeansTries
	if algorithm == algorithmKMedoids {
		defaultTries = kcluster.DefaultKMedoidsTries
	}
	rf.register(fs, 2, defaultTries)

	categories := fs.String("categories", "", "comma separated categories to keep, in output order")
	sample := fs.Int("sample", 0, "keep this many random categories")
	dropZeros := fs.Bool("drop-zeros", false, "drop feature columns that are zero for every kept row")
	name := fs.String("name", "", "dataset name in the registry (default: the blob name)")
	registryURI := fs.String("registry", "", "submit the result to this best-run registry")
	out := fs.String("out", "", "write the result document here instead of stdout")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: %s takes exactly one dataset location", errUsage, algorithm)
	}
	uri := fs.Arg(0)

	logger, err := rf.logger(stderr)
	if err != nil {
		return err
	}
	rc := rf.controller()
	metrics := &kcluster.BasicMetricsCollector{}
	opts, err := rf.options(logger, rc, metrics)
	if err != nil {
		return err
	}

	cats, err := parseInts(*categories)
	if err != nil {
		return err
	}

	store, blobName, err := openBlob(ctx, uri)
	if err != nil {
		return err
	}
	cache := dataset.NewCache(store, dataset.WithResourceController(rc), dataset.WithLogger(logger.Logger))
	defer cache.Close()

	sel := dataset.Selection{
		Categories: cats,
		Sample:     *sample,
		DropZeros:  *dropZeros,
	}
	if rf.seed != 0 {
		sel.Rand = rand.New(rand.NewSource(rf.seed)) //nolint:gosec
	}
	ds, err := cache.Select(ctx, blobName, sel)
	if err != nil {
		return err
	}
	// the dataset is no longer needed once selected
	cache.Evict(blobName)

	rec := &registry.Record{
		Key:       registry.Key{Dataset: *name, Algorithm: algorithm, K: rf.k},
		CreatedAt: time.Now().UTC(),
	}
	if rec.Dataset == "" {
		rec.Dataset = blobName
	}

	switch algorithm {
	case algorithmKMeans:
		res, err := kcluster.KMeans(ctx, ds.Features, rf.k, opts...)
		if err != nil {
			return err
		}
		fillRecord(rec, &res.Partition)
		rec.Centroids = rows(res.Centroids)
	case algorithmKMedoids:
		res, err := kcluster.KMedoidsFromPoints(ctx, ds.Features, rf.k, opts...)
		if err != nil {
			return err
		}
		fillRecord(rec, &res.Partition)
		rec.Medoids = res.Medoids
	}

	stats := metrics.GetStats()
	logger.InfoContext(ctx, "clustering finished",
		"algorithm", algorithm,
		"k", rf.k,
		"objective", rec.Objective,
		"runs", stats.RunCount,
		"avg_iterations", stats.RunAvgIterations,
		"elapsed", time.Duration(stats.CallAvgNanos),
	)

	if *registryURI != "" {
		reg, err := openRegistry(ctx, *registryURI)
		if err != nil {
			return err
		}
		stored, err := reg.Submit(ctx, rec)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "registry updated", "key", rec.Key.String(), "stored", stored)
	}

	return writeDocument(ctx, rec, *out, stdout)
}

func fillRecord(rec *registry.Record, p *kcluster.Partition) {
	rec.Objective = p.Objective
	rec.Iterations = p.Iterations
	rec.Converged = p.Converged
	rec.Try = p.Try
	rec.Tries = p.Tries
	rec.Labels = p.Labels
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

func writeDocument(ctx context.Context, v any, uri string, stdout io.Writer) error {
	doc, err := codec.GoJSON{}.MarshalIndent(v)
	if err != nil {
		return err
	}
	doc = append(doc, '\n')
	if uri == "" {
		_, err = stdout.Write(doc)
		return err
	}
	return putBlob(ctx, uri, doc)
}

func runQuantize(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newFlagSet("quantize", stderr)

	var rf runFlags
	rf.register(fs, 8, 3)
	space := fs.String("space", "lab", "pixel feature space (rgb, lab)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("%w: quantize takes an input and an output image location", errUsage)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	sp, err := imageio.ParseSpace(*space)
	if err != nil {
		return err
	}
	logger, err := rf.logger(stderr)
	if err != nil {
		return err
	}
	opts, err := rf.options(logger, rf.controller(), kcluster.NoopMetricsCollector{})
	if err != nil {
		return err
	}

	data, err := getBlob(ctx, in)
	if err != nil {
		return err
	}
	pix, format, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	res, err := kcluster.KMeans(ctx, pix.Matrix(sp), rf.k, opts...)
	if err != nil {
		return err
	}
	q, err := imageio.Quantize(pix, res.Centroids, res.Labels, sp)
	if err != nil {
		return err
	}

	if f := imageio.FormatOf(out); f != "" {
		format = f
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, q, format); err != nil {
		return err
	}

	logger.InfoContext(ctx, "image quantized",
		"width", pix.Width,
		"height", pix.Height,
		"colors", rf.k,
		"space", sp.String(),
		"objective", res.Objective,
	)
	return putBlob(ctx, out, buf.Bytes())
}

func runEncode(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newFlagSet("encode", stderr)
	labels := fs.Bool("labels", false, "the last CSV column holds the integer category")
	compression := fs.String("compression", "zstd", "payload compression (none, lz4, zstd)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("%w: encode takes a CSV file and an output location", errUsage)
	}

	c, err := dataset.ParseCompression(*compression)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if in := fs.Arg(0); in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	ds, err := readCSV(r, *labels)
	if err != nil {
		return err
	}
	data, err := dataset.Marshal(ds, c)
	if err != nil {
		return err
	}
	return putBlob(ctx, fs.Arg(1), data)
}

// readCSV parses one point per record.
func readCSV(r io.Reader, labeled bool) (*dataset.Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty CSV input")
	}

	cols := len(records[0])
	if labeled {
		cols--
	}
	if cols < 1 {
		return nil, errors.New("CSV input has no feature columns")
	}

	features := mat.NewDense(len(records), cols, nil)
	var lbl []int
	if labeled {
		lbl = make([]int, len(records))
	}
	for i, rec := range records {
		for j := 0; j < cols; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			features.Set(i, j, v)
		}
		if labeled {
			l, err := strconv.Atoi(rec[cols])
			if err != nil {
				return nil, fmt.Errorf("line %d: label: %w", i+1, err)
			}
			lbl[i] = l
		}
	}
	return dataset.New(features, lbl)
}

func runBest(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("best", stderr)
	registryURI := fs.String("registry", "", "best-run registry location")
	name := fs.String("dataset", "", "dataset name")
	algorithm := fs.String("algorithm", algorithmKMeans, "algorithm (kmeans, kmedoids)")
	k := fs.Int("k", 2, "number of clusters")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := openRegistry(ctx, *registryURI)
	if err != nil {
		return err
	}
	rec, err := reg.Best(ctx, registry.Key{Dataset: *name, Algorithm: *algorithm, K: *k})
	if err != nil {
		return err
	}
	return writeDocument(ctx, rec, "", stdout)
}
