package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Scheme is the URL scheme for S3 sources: s3://bucket/path/to/object
const S3Scheme = "s3"

// S3Options configures the S3 source. Endpoint targets S3 compatible
// services such as MinIO; static keys are optional and fall back to the
// default AWS credential chain.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	MaxBytes        int64
}

type s3Storage struct {
	client   *s3.Client
	maxBytes int64
}

// NewS3Storage creates an object source backed by the AWS SDK
func NewS3Storage(ctx context.Context, opts S3Options) (ImageFetcher, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &s3Storage{client: client, maxBytes: opts.MaxBytes}, nil
}

// FetchImage downloads the object named by an s3:// URL
func (s *s3Storage) FetchImage(ctx context.Context, objectURL string) ([]byte, error) {
	bucket, key, err := ParseS3URL(objectURL)
	if err != nil {
		return nil, err
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSourceNotFound, bucket, key)
		}
		return nil, fmt.Errorf("get object failed: %w", err)
	}
	defer output.Body.Close()

	if s.maxBytes > 0 && output.ContentLength != nil && *output.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: object size %d", ErrBodyTooLarge, *output.ContentLength)
	}

	return readLimited(output.Body, s.maxBytes)
}

// ParseS3URL splits s3://bucket/path/to/object into bucket and key
func ParseS3URL(objectURL string) (string, string, error) {
	parsedURL, err := url.Parse(objectURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 URL: %w", err)
	}
	if parsedURL.Scheme != S3Scheme {
		return "", "", fmt.Errorf("invalid s3 URL: scheme must be %s", S3Scheme)
	}

	bucket := parsedURL.Host
	key := strings.TrimPrefix(parsedURL.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 URL: expected %s://bucket/key", S3Scheme)
	}
	return bucket, key, nil
}
