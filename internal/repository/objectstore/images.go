package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	// Custom endpoint for S3 compatible storages (minio and alike)
	// AWS is used when empty
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string

	// Address objects are served from, e.g. CDN. Derived from endpoint and bucket if empty
	PublicURL string

	UsePathStyle bool
}

// ImageStore puts uploaded images into S3 bucket
type ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewImageStore(ctx context.Context, cfg Config) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket must be set")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("can't load s3 config. Err: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &ImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL(cfg),
	}, nil
}

// Put stores the object and returns the address it can be fetched from
func (s *ImageStore) Put(ctx context.Context, key string, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 error: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

func publicURL(cfg Config) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Endpoint != "":
		scheme, host, ok := strings.Cut(strings.TrimRight(cfg.Endpoint, "/"), "://")
		if !ok {
			return "https://" + cfg.Bucket + "." + scheme
		}
		return scheme + "://" + cfg.Bucket + "." + host
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
