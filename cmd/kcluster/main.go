// Command kcluster clusters datasets and images with k-means and k-medoids.
//
// Usage:
//
//	kcluster encode   [-labels] [-compression zstd] <points.csv> <dataset-uri>
//	kcluster kmeans   [flags] <dataset-uri>
//	kcluster kmedoids [flags] <dataset-uri>
//	kcluster quantize [flags] <image-uri> <output-image-uri>
//	kcluster best     -registry <uri> -dataset <name> -algorithm <name> -k <n>
//
// Locations are local paths, file://, mem://, s3://bucket/key or
// minio://endpoint/bucket/key. Registries may also be dynamodb://table.
// AWS settings come from the default AWS configuration chain, MinIO
// credentials from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage: kcluster <encode|kmeans|kmedoids|quantize|best> [flags] args...")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "encode":
		return runEncode(ctx, args, stderr)
	case algorithmKMeans, algorithmKMedoids:
		return runCluster(ctx, cmd, args, stdout, stderr)
	case "quantize":
		return runQuantize(ctx, args, stderr)
	case "best":
		return runBest(ctx, args, stdout, stderr)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
