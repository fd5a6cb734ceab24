package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"
)

// S3Options configures an S3Store.
type S3Options struct {
	Bucket string
	Region string

	// Optional static credentials. When unset the client signs nothing,
	// which is what the public dataset bucket expects.
	AccessKeyID     string
	SecretAccessKey string

	// RequestsPerSecond throttles listing and download calls across the
	// whole store handle. Zero disables throttling.
	RequestsPerSecond float64
}

// S3Store reads dataset objects from an S3 bucket.
type S3Store struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	limiter    *rate.Limiter
}

// NewS3Store creates an S3-backed Store for the given bucket.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	} else {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	st := &S3Store{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     opts.Bucket,
	}
	if opts.RequestsPerSecond > 0 {
		st.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return st, nil
}

func (s *S3Store) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// ListCommonPrefixes enumerates the distinct prefixes directly under prefix,
// grouped by delimiter, following continuation tokens to completion.
func (s *S3Store) ListCommonPrefixes(ctx context.Context, prefix, delimiter string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String(delimiter),
	})

	var prefixes []string
	for p.HasMorePages() {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing prefixes under %s: %w", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			prefixes = append(prefixes, aws.ToString(cp.Prefix))
		}
	}
	return prefixes, nil
}

// ListObjects enumerates all object keys under prefix, following
// continuation tokens to completion.
func (s *S3Store) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []string
	for p.HasMorePages() {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects under %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			objects = append(objects, aws.ToString(o.Key))
		}
	}
	return objects, nil
}

// Download fetches the object at key into memory and returns a reader over
// its content. Objects in this dataset are minute-sized record batches, so
// buffering whole objects is acceptable.
func (s *S3Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

var _ Store = (*S3Store)(nil)
