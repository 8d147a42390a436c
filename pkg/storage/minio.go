// Package storage wraps the MinIO object store holding uploaded learning
// documents.
package storage

import (
	"context"
	"io"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var MinioClient *minio.Client

// InitMinIO initializes the MinIO client and makes sure the document bucket
// exists.
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("failed to initialize MinIO client", err)
	}

	log.Info("MinIO client initialized successfully")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("failed to check MinIO bucket", err)
	}

	if !exists {
		log.Infof("bucket '%s' does not exist, creating it", bucketName)
		if err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("failed to create MinIO bucket", err)
		}
		log.Infof("bucket '%s' created", bucketName)
	} else {
		log.Infof("bucket '%s' already exists", bucketName)
	}
}

// PutObject uploads a document body under the given object name.
func PutObject(ctx context.Context, bucketName, objectName string, body io.Reader, size int64, contentType string) error {
	_, err := MinioClient.PutObject(ctx, bucketName, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// FetchObject downloads a document body as bytes.
func FetchObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := MinioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
