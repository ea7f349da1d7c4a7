// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bmatcuk/doublestar/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/songlake/internal/config"
	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/metrics"
)

const s3BreakerName = "s3-source"

// S3API is the subset of the S3 client used by S3.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures an S3 source.
type S3Options struct {
	Bucket string
	Prefix string

	// RequestsPerSecond caps GetObject calls. 0 disables the limit.
	RequestsPerSecond float64

	Breaker BreakerSettings
}

// S3 reads objects beneath a bucket prefix.
type S3 struct {
	client  S3API
	bucket  string
	prefix  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[io.ReadCloser]
}

// NewS3Client builds an S3 client from the application S3 settings.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	opts = append(opts,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithLogger(logging.NewAWSLogger()),
		awsconfig.WithClientLogMode(aws.LogRetries))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewS3 returns a Source over client.
func NewS3(client S3API, opts S3Options) *S3 {
	limit := rate.Inf
	burst := 0
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}

	settings := opts.Breaker
	if settings.ConsecutiveFailures == 0 {
		settings = DefaultBreakerSettings()
	}

	return &S3{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker[io.ReadCloser](s3BreakerName, settings),
	}
}

// String returns the s3:// URL the source reads from.
func (s *S3) String() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// List returns the object names matching pattern, relative to the prefix.
// Listing starts at the pattern's literal base so only the relevant part of
// the bucket is paged through.
func (s *S3) List(ctx context.Context, pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	base, _ := doublestar.SplitPattern(pattern)
	listPrefix := s.key(base)
	if listPrefix != "" {
		listPrefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		metrics.RecordS3Request("list", err)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", s, err)
		}
		for _, object := range output.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}

	names := matchKeys(keys, s.prefix, pattern)
	logging.Debug().
		Str("source", s.String()).
		Str("pattern", pattern).
		Int("objects", len(keys)).
		Int("matched", len(names)).
		Msg("Listed S3 objects")
	return names, nil
}

// Open fetches one object. Calls wait on the rate limiter and fail fast while
// the circuit breaker is open.
func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := s.breaker.Execute(func() (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
		})
		if err != nil {
			return nil, err
		}
		return out.Body, nil
	})
	recordBreakerResult(s3BreakerName, err)
	metrics.RecordS3Request("get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return body, nil
}

func (s *S3) key(name string) string {
	if name == "" || name == "." {
		return s.prefix
	}
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// matchKeys strips prefix from each key and keeps the ones matching pattern,
// sorted. Directory placeholder keys (ending in "/") are skipped.
func matchKeys(keys []string, prefix, pattern string) []string {
	trim := ""
	if prefix != "" {
		trim = prefix + "/"
	}

	var names []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/") || !strings.HasPrefix(key, trim) {
			continue
		}
		name := strings.TrimPrefix(key, trim)
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}
