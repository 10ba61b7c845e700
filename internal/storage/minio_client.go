// Package storage wraps the MinIO client used for uploaded profile pictures.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore persists uploaded profile pictures.
type ObjectStore interface {
	UploadProfilePicture(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error)
	RemoveProfilePicture(ctx context.Context, objectName string) error
	PublicURL(objectName string) string
}

// MinIOClient is an ObjectStore backed by a MinIO bucket.
type MinIOClient struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinIOClient connects to MinIO and ensures the bucket exists.
func NewMinIOClient(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOClient{client: client, bucket: bucket, endpoint: endpoint, useSSL: useSSL}, nil
}

// UploadProfilePicture stores the image under a fresh per-user object name and
// returns that name.
func (m *MinIOClient) UploadProfilePicture(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error) {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	contentType := mime.TypeByExtension(fileExt)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("users/%d/%s%s", userID, uuid.New().String(), fileExt)

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": fileName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}
	return objectName, nil
}

// RemoveProfilePicture deletes a stored object. Missing objects are not an
// error.
func (m *MinIOClient) RemoveProfilePicture(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove profile picture: %w", err)
	}
	return nil
}

// PublicURL returns the browser-reachable URL for an object.
func (m *MinIOClient) PublicURL(objectName string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.endpoint, m.bucket, objectName)
}
