package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 client the store's transfer managers use.
type S3API interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
}

// S3Options configures an S3-backed store.
type S3Options struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the service endpoint (S3-compatible servers).
	// Path-style addressing is used when it is set.
	Endpoint string

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store keeps each top-level key as one object, <prefix>/<key>.json.
// S3 has no multi-object transactions; each key is written independently.
type S3Store struct {
	bucket     string
	prefix     string
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

// NewS3Store builds a client from opts and the default AWS configuration chain.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		bucket:     bucket,
		prefix:     prefix,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}
}

func (s *S3Store) objectKey(key string) string {
	return path.Join(s.prefix, key+".json")
}

// Get downloads each key. Keys with no object are absent from the result.
func (s *S3Store) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		buf := manager.NewWriteAtBuffer(nil)
		_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(k)),
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("downloading %s: %w", s.objectKey(k), err)
		}
		out[k] = json.RawMessage(buf.Bytes())
	}
	return out, nil
}

// Set uploads one object per key.
func (s *S3Store) Set(ctx context.Context, values map[string]json.RawMessage) error {
	for k, v := range values {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.objectKey(k)),
			Body:        bytes.NewReader(v),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", s.objectKey(k), err)
		}
	}
	return nil
}

// Close is a no-op; the S3 client holds no long-lived resources.
func (s *S3Store) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// Compile-time check that S3Store implements Store
var _ Store = (*S3Store)(nil)
