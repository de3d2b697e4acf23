package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	pdfContentType = "application/pdf"

	// supabaseS3Path is the suffix of Supabase's S3-compatible endpoint
	supabaseS3Path = "/storage/v1/s3"
)

// Archiver keeps a copy of uploaded receipt files
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte) (string, error)
}

// NopArchiver discards files
type NopArchiver struct{}

// Archive does nothing and returns an empty location
func (NopArchiver) Archive(context.Context, string, []byte) (string, error) {
	return "", nil
}

// S3Archiver uploads receipt files to S3-compatible storage
type S3Archiver struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// Config holds configuration for the S3 archiver
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
}

// NewS3Archiver creates a new S3 archiver
func NewS3Archiver(config *Config) (*S3Archiver, error) {
	if config.Endpoint == "" || config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}

	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	endpoint := strings.TrimRight(config.Endpoint, "/")
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(config.Region),
		Endpoint:         aws.String(endpoint),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Archiver{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: endpoint,
	}, nil
}

// Archive uploads a PDF under key and returns its object URL. Supabase
// endpoints get the public object URL.
func (a *S3Archiver) Archive(ctx context.Context, key string, data []byte) (string, error) {
	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(pdfContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return objectURL(a.endpoint, a.bucket, key), nil
}

func objectURL(endpoint, bucket, key string) string {
	if base, ok := strings.CutSuffix(endpoint, supabaseS3Path); ok {
		// https://{project-ref}.storage.supabase.co/storage/v1/object/public/{bucket}/{key}
		return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", base, bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
}
