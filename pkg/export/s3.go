// Package export uploads finished renders to S3-compatible storage.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/renderer"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 10 * time.Second

// ErrNoBucket is returned when an uploader is created without a bucket
var ErrNoBucket = errors.New("no S3 bucket configured")

// S3Config holds connection settings. Empty credentials fall back to the
// default AWS credential chain.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string // Prepended to every object key
	AccessKey string
	SecretKey string
}

// Uploader writes rendered images to a bucket
type Uploader struct {
	client s3iface.S3API
	bucket string
	prefix string
	logger core.Logger
}

// NewUploader opens an S3 session for cfg
func NewUploader(cfg S3Config, logger core.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	awsConfig := &aws.Config{}
	if cfg.Region != "" {
		awsConfig.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewUploaderWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix, logger), nil
}

// NewUploaderWithClient wraps an existing S3 client
func NewUploaderWithClient(client s3iface.S3API, bucket, prefix string, logger core.Logger) *Uploader {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key used for name
func (u *Uploader) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// Upload stores data under the prefixed key and returns that key
func (u *Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := u.Key(name)
	size := int64(len(data))
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, u.bucket, size)
	return key, nil
}

// UploadPNG encodes img as PNG and uploads it
func (u *Uploader) UploadPNG(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return u.Upload(ctx, name, buf.Bytes(), "image/png")
}
