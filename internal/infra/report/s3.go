// Where: internal/infra/report/s3.go
// What: S3 report sink and client factory.
// Why: Publish run reports to a bucket shared by CI jobs.
package report

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultAWSRegion = "us-east-1"

// S3PutAPI is the subset of the S3 client used by S3Sink.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads the report to s3://Bucket/Key.
type S3Sink struct {
	Client S3PutAPI
	Bucket string
	Key    string
}

func (s S3Sink) Write(ctx context.Context, doc Document) error {
	if s.Client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	payload, err := doc.Encode()
	if err != nil {
		return err
	}
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload report to s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse report url: %w", err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("report url %q must look like s3://bucket/key", raw)
	}
	return u.Host, key, nil
}

// NewS3Client builds an S3 client from the default AWS config chain. A
// non-empty endpoint switches to path-style addressing for S3-compatible
// stores; CARGO_S3_ACCESS_KEY/CARGO_S3_SECRET_KEY pin static credentials.
func NewS3Client(ctx context.Context, endpoint string) (*s3.Client, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultAWSRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if access, secret := os.Getenv("CARGO_S3_ACCESS_KEY"), os.Getenv("CARGO_S3_SECRET_KEY"); access != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(access, secret, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	}), nil
}
