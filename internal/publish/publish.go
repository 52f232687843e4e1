// Package publish uploads a finished run tree to S3-compatible storage.
package publish

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of *s3.Client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options describes the destination bucket and how to reach it.
type Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// Publisher copies run artifacts to a bucket.
type Publisher struct {
	api    PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// New returns a Publisher using api. A nil logger discards output.
func New(api PutObjectAPI, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// NewS3 builds an S3 client from the default AWS credential chain, or from
// static credentials when both keys are set.
func NewS3(ctx context.Context, opts Options, logger *slog.Logger) (*Publisher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})
	return New(client, opts.Bucket, opts.Prefix, logger), nil
}

// Key returns the object key for a path relative to the run root.
func (p *Publisher) Key(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// PublishRun uploads every regular file under root, keyed by its path
// relative to root. It stops at the first failed upload and returns the
// number of objects written.
func (p *Publisher) PublishRun(ctx context.Context, root string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		if err := p.upload(ctx, file, p.Key(rel)); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("publish %s: %w", root, err)
	}
	p.logger.Info("published run", "bucket", p.bucket, "prefix", p.prefix, "objects", uploaded)
	return uploaded, nil
}

func (p *Publisher) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if filepath.Ext(file) == ".json" {
		contentType = "application/json"
	}
	_, err = p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	p.logger.Debug("uploaded object", "key", key)
	return nil
}
