package kcluster

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithAlgorithm("kmeans").WithK(3).WithTry(2).LogIteration(context.Background(), false, 4, 1.5)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "DEBUG", recs[0]["level"])
	assert.Equal(t, "iteration", recs[0]["msg"])
	assert.Equal(t, "kmeans", recs[0]["algorithm"])
	assert.Equal(t, 3.0, recs[0]["k"])
	assert.Equal(t, 2.0, recs[0]["try"])
	assert.Equal(t, 4.0, recs[0]["iter"])
	assert.Equal(t, 1.5, recs[0]["objective"])
}

func TestLoggerRunLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	l.LogRun(ctx, 3, 1, stopReasonConverged, nil)
	l.LogRun(ctx, 300, 1, stopReasonMaxIterations, nil)
	l.LogRun(ctx, 0, 0, "", assert.AnError)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "DEBUG", recs[0]["level"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, stopReasonMaxIterations, recs[1]["reason"])
	assert.Equal(t, "ERROR", recs[2]["level"])
}

func TestVerboseLogging(t *testing.T) {
	data, _ := fourBlobs()
	seeds := mat.NewDense(4, 2, []float64{0, 0, 10, 0, 0, 10, 10, 10})

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := KMeans(context.Background(), data, 4,
		WithCentroidSeeds(seeds),
		WithLogger(logger),
		WithVerbose(true),
	)
	require.NoError(t, err)

	recs := decodeLines(t, &buf)
	var iterations, best int
	for _, rec := range recs {
		switch rec["msg"] {
		case "iteration":
			iterations++
			assert.Equal(t, "kmeans", rec["algorithm"])
			assert.Equal(t, 0.0, rec["try"])
		case "best run selected":
			best++
			assert.Equal(t, 1.0, rec["tries"])
		}
	}
	assert.Positive(t, iterations)
	assert.Equal(t, 1, best)
}

func TestQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := KMedoids(context.Background(), twoGroups(), 2, WithMedoidSeeds([]int{0, 3}), WithLogger(logger))
	require.NoError(t, err)

	for _, rec := range decodeLines(t, &buf) {
		assert.NotEqual(t, "iteration", rec["msg"])
	}
}
