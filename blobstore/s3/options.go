package s3

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys (e.g. "datasets/").
	Prefix string
	// Region overrides the region of the default AWS config.
	Region string
	// Endpoint overrides the S3 endpoint, e.g. for LocalStack.
	Endpoint string
	// UsePathStyle addresses buckets as path elements instead of hosts.
	UsePathStyle bool
	// MultipartThreshold is the blob size from which Put uses a multipart upload.
	MultipartThreshold int64
	// PartSize is the part size of multipart uploads.
	PartSize int64
	// Concurrency is the number of concurrent part uploads.
	Concurrency int
}

// Option configures Options.
type Option func(*Options)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint and switches to path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = true
	}
}

// WithMultipart tunes multipart uploads.
func WithMultipart(threshold, partSize int64, concurrency int) Option {
	return func(o *Options) {
		o.MultipartThreshold = threshold
		o.PartSize = partSize
		o.Concurrency = concurrency
	}
}

func defaultOptions() Options {
	return Options{
		MultipartThreshold: 16 * 1024 * 1024,
		PartSize:           8 * 1024 * 1024, // larger than the SDK default of 5MB
		Concurrency:        5,
	}
}
