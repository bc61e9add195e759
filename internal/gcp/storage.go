package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// signedURLExpiry is the fixed far-future expiry for export download links.
// Export artifacts stay downloadable until retention (an external concern)
// removes them.
var signedURLExpiry = time.Date(2500, time.March, 1, 0, 0, 0, 0, time.UTC)

// ArtifactBucket is the GCS-backed artifact store for generated exports.
type ArtifactBucket struct {
	client *storage.Client
	bucket string
}

// NewArtifactBucket wraps a storage client for one bucket.
func NewArtifactBucket(client *storage.Client, bucket string) *ArtifactBucket {
	return &ArtifactBucket{client: client, bucket: bucket}
}

// Upload copies a local file into the bucket with the given content type
// and object metadata.
func (b *ArtifactBucket) Upload(ctx context.Context, objectName, localPath, contentType string, metadata map[string]string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open local file %s: %w", localPath, err)
	}
	defer localFile.Close()

	writer := b.client.Bucket(b.bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = metadata

	if _, err := io.Copy(writer, localFile); err != nil {
		_ = writer.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// SignedURL issues a time-limited download link for an uploaded artifact.
func (b *ArtifactBucket) SignedURL(objectName string) (string, error) {
	url, err := b.client.Bucket(b.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: signedURLExpiry,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", objectName, err)
	}
	return url, nil
}
