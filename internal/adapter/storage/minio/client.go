package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/gcapi/internal/config"
)

// Client представляет собой клиент для взаимодействия с MinIO (S3-совместимым хранилищем).
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	publicURL  string
	logger     *slog.Logger
}

// endpointURL собирает URL MinIO из хоста и флага SSL.
func endpointURL(endpoint string, useSSL bool) string {
	if useSSL {
		return fmt.Sprintf("https://%s", endpoint)
	}
	return fmt.Sprintf("http://%s", endpoint)
}

// NewMinioClient создает клиент и при необходимости создает бакет.
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if cfg.MinioAccessKeyID == "" || cfg.MinioSecretAccessKey == "" || cfg.MinioBucketName == "" || cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MinIO credentials (MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_ENDPOINT) must be set")
	}

	baseURL := endpointURL(cfg.MinioEndpoint, cfg.MinioUseSSL)

	cfgAws, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseURL)
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: cfg.MinioBucketName,
		publicURL:  baseURL,
		logger:     logger,
	}

	if err := c.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureBucket проверяет существование бакета и создает его, если нужно.
func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket '%s': %w", c.bucketName, err)
	}

	c.logger.Warn("bucket not found, creating", "bucket", c.bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 нельзя указывать как LocationConstraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created successfully", "bucket", c.bucketName)
	return nil
}

// ObjectURL возвращает публичный URL объекта в path-style.
func (c *Client) ObjectURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucketName, (&url.URL{Path: objectKey}).EscapedPath())
}

// UploadFile загружает файл в бакет и возвращает его URL.
func (c *Client) UploadFile(ctx context.Context, objectKey string, fileContent io.Reader, contentType string) (string, error) {
	start := time.Now()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        fileContent,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("file uploaded",
		"key", objectKey,
		"bucket", c.bucketName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c.ObjectURL(objectKey), nil
}

// DeleteFile удаляет файл из MinIO.
func (c *Client) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", objectKey, c.bucketName, err)
	}
	return nil
}
