// Package storage publishes produced segments to S3-compatible storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrentUploads bounds parallel PutObject calls per Publish.
const MaxConcurrentUploads = 4

// ErrNoBucket indicates an S3Config without a bucket.
var ErrNoBucket = errors.New("s3 bucket not configured")

// S3Config holds the configuration for S3 publishing.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: otherwise the default AWS credential chain
	SecretAccessKey string // Optional
}

// S3Publisher uploads segment files to one bucket.
type S3Publisher struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Publisher creates an S3Publisher. A custom endpoint switches the
// client to path-style addressing.
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Publisher{
		client:   s3.NewFromConfig(awsCfg, clientOpts...),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// Publish uploads files under prefix, keyed by base name, with at most
// MaxConcurrentUploads in flight. It returns the object URLs in input
// order. The first failure cancels uploads not yet started.
func (p *S3Publisher) Publish(ctx context.Context, prefix string, files []string) ([]string, error) {
	urls := make([]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentUploads)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := path.Join(prefix, filepath.Base(file))
			if err := p.upload(ctx, key, file); err != nil {
				return fmt.Errorf("upload %s: %w", filepath.Base(file), err)
			}
			urls[i] = p.objectURL(key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (p *S3Publisher) upload(ctx context.Context, key, file string) error {
	f, err := os.Open(file) // #nosec G304 -- segment produced by this run
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}

// objectURL returns the address of key: virtual-hosted AWS style, or
// path style under a custom endpoint.
func (p *S3Publisher) objectURL(key string) string {
	if p.endpoint != "" {
		if u, err := url.Parse(p.endpoint); err == nil {
			return u.JoinPath(p.bucket, key).String()
		}
	}
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", p.bucket, p.region),
		Path:   "/" + key,
	}
	return u.String()
}
