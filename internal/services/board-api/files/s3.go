package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize caps profile images at 10 MiB.
const MaxUploadSize = 10 << 20

var ErrUnsupportedType = errors.New("unsupported file type")

var (
	supportedExtensions   = map[string]bool{"jpg": true, "jpeg": true, "png": true}
	supportedContentTypes = map[string]bool{"image/jpeg": true, "image/png": true}
)

type Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Uploader stores profile images in an S3 bucket and hands back the
// public URL persisted on the user record.
type Uploader struct {
	client *s3.Client
	cfg    Config
	log    *zap.Logger
}

func NewUploader(ctx context.Context, cfg Config, log *zap.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Custom endpoint for minio-style deployments.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{client: client, cfg: cfg, log: log.With(zap.String("component", "files.uploader"))}, nil
}

func (u *Uploader) Upload(ctx context.Context, body io.Reader, filename, contentType string) (string, error) {
	if !supportedFileType(filename, contentType) {
		return "", ErrUnsupportedType
	}

	key := uuid.NewString() + "_" + path.Base(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	url := u.publicURL(key)
	u.log.Info("file uploaded", zap.String("key", key), zap.String("url", url))
	return url, nil
}

func (u *Uploader) publicURL(key string) string {
	if u.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(u.cfg.Endpoint, "/"), u.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func supportedFileType(filename, contentType string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	return supportedExtensions[ext] && supportedContentTypes[contentType]
}
