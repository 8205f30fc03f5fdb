package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/UsersAPI/internal/config"
)

const bucketCheckTimeout = 5 * time.Second

// Client хранит JSON-копии пользователей в MinIO (S3-совместимое хранилище).
// Реализует usecase.FileStorage.
type Client struct {
	s3Client    *s3.Client
	uploader    *manager.Uploader
	bucketName  string
	endpointURL string
	logger      *slog.Logger
}

// NewMinioClient создаёт клиент и при необходимости создаёт бакет.
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if !cfg.ExportEnabled() {
		return nil, fmt.Errorf("MinIO settings (MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_REGION) must be set")
	}
	logger = logger.With("component", "minio", "bucket", cfg.MinioBucketName)

	endpoint := endpointURL(cfg.MinioEndpoint, cfg.MinioUseSSL)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:    s3Client,
		uploader:    manager.NewUploader(s3Client),
		bucketName:  cfg.MinioBucketName,
		endpointURL: endpoint,
		logger:      logger,
	}

	if err := c.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists")
		return nil
	}

	c.logger.Info("bucket not found, creating", "reason", err.Error())

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket %q: %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for bucket %q: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created")
	return nil
}

// UploadFile загружает объект и возвращает его URL.
func (c *Client) UploadFile(ctx context.Context, objectKey string, fileContent io.Reader, contentType string) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        fileContent,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Debug("object uploaded", "key", objectKey)
	return objectURL(c.endpointURL, c.bucketName, objectKey), nil
}

// DeleteFile удаляет объект. Удаление отсутствующего объекта не ошибка.
func (c *Client) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete %s from bucket %s: %w", objectKey, c.bucketName, err)
	}
	return nil
}

func endpointURL(endpoint string, useSSL bool) string {
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func objectURL(endpointURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", endpointURL, bucket, key)
}
