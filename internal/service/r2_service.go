package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/greenlens/autoposter/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// R2Service hosts rendered slides (and manually uploaded media) on Cloudflare
// R2 behind a public bucket, returning the public URL the Graph API fetches
// media from.
type R2Service struct {
	config config.Config
}

func NewR2Service(config config.Config) *R2Service {
	return &R2Service{config: config}
}

func (r *R2Service) IsConfigured() bool {
	c := r.config.R2
	return c.AccountID != "" && c.AccessKey != "" && c.SecretKey != "" &&
		c.BucketName != "" && c.PublicBaseURL != ""
}

func (r *R2Service) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// Upload reads a local file and uploads it, returning the public URL.
func (r *R2Service) Upload(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	return r.UploadBytes(ctx, data)
}

// UploadBytes sniffs the content type, uploads under a generated key, and
// returns the public URL.
func (r *R2Service) UploadBytes(ctx context.Context, data []byte) (string, error) {
	if !r.IsConfigured() {
		return "", fmt.Errorf("R2 is not configured: set R2_ACCOUNT_ID, R2_ACCESS_KEY, R2_SECRET_KEY, R2_BUCKET_NAME and R2_PUBLIC_BASE_URL")
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("autoposter/%s.%s", id, kind.Extension)

	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error uploading to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", r.config.R2.PublicBaseURL, key), nil
}
