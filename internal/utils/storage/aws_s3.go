package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	AllowImage = []string{"image/jpeg", "image/png", "image/webp", "image/heic"}

	ErrStorageNotConfigured = errors.New("object storage not configured")
	ErrFileTypeNotAllowed   = errors.New("file type not allowed")
)

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, filename string, file *multipart.FileHeader, folder string, allowed ...string) (string, error)
		UploadBytes(ctx context.Context, filename string, data []byte, contentType string, folder string) (string, error)
		GetPublicLinkKey(objectKey string) string
		DeleteFile(ctx context.Context, objectKey string) error
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

// NewAwsS3 builds a client from static credentials when present and falls
// back to the default AWS credential chain otherwise.
func NewAwsS3() AwsS3 {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	region := utils.GetConfig("AWS_S3_REGION")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if key := utils.GetConfig("AWS_ACCESS_KEY"); key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, utils.GetConfig("AWS_SECRET_KEY"), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil || bucket == "" {
		return &awsS3{bucket: bucket, region: region}
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}
}

func (a *awsS3) UploadFile(ctx context.Context, filename string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if len(allowed) > 0 && !slices.Contains(allowed, contentType) {
		return "", ErrFileTypeNotAllowed
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	return a.UploadBytes(ctx, filename+strings.ToLower(filepath.Ext(file.Filename)), data, contentType, folder)
}

func (a *awsS3) UploadBytes(ctx context.Context, filename string, data []byte, contentType string, folder string) (string, error) {
	if a.client == nil {
		return "", ErrStorageNotConfigured
	}

	objectKey := fmt.Sprintf("%s/%s", folder, filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	if a.client == nil {
		return ErrStorageNotConfigured
	}
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}
