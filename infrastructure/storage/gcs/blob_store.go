// Package gcs stores user media in Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"

	"users-backend/application/ports"
	pkgerrors "users-backend/pkg/errors"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewClient creates a Cloud Storage client. If credsPath is empty,
// application default credentials are used.
func NewClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// BlobStore implements ports.BlobStore on Cloud Storage
type BlobStore struct {
	client *storage.Client
	logger *zap.Logger
}

// NewBlobStore creates a new Cloud Storage blob store
func NewBlobStore(client *storage.Client, logger *zap.Logger) *BlobStore {
	return &BlobStore{
		client: client,
		logger: logger,
	}
}

var _ ports.BlobStore = (*BlobStore)(nil)

// Upload writes req.Body to req.Bucket/req.Name
func (b *BlobStore) Upload(ctx context.Context, req ports.UploadRequest) error {
	wc := b.client.Bucket(req.Bucket).Object(req.Name).NewWriter(ctx)
	wc.ContentType = req.ContentType
	wc.ContentEncoding = req.ContentEncoding
	wc.ChunkSize = 0 // single request for small media

	if _, err := io.Copy(wc, bytes.NewReader(req.Body)); err != nil {
		_ = wc.Close()
		return classifyError("write", err)
	}
	if err := wc.Close(); err != nil {
		return classifyError("close", err)
	}

	b.logger.Debug("Uploaded object",
		zap.String("bucket", req.Bucket),
		zap.String("object", req.Name),
		zap.Int("bytes", len(req.Body)),
	)
	return nil
}

// Delete removes bucket/name. Unlike S3, a missing object is an error.
func (b *BlobStore) Delete(ctx context.Context, bucket, name string) error {
	if err := b.client.Bucket(bucket).Object(name).Delete(ctx); err != nil {
		return classifyError("delete", err)
	}

	b.logger.Debug("Deleted object", zap.String("bucket", bucket), zap.String("object", name))
	return nil
}

func classifyError(operation string, err error) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return pkgerrors.NewNotFoundError("file").WithCode(pkgerrors.CodeBlobNotFound).WithCause(err)
	case errors.Is(err, storage.ErrBucketNotExist):
		return pkgerrors.NewExternalError("gcs", err).WithCode(pkgerrors.CodeBucketNotFound)
	default:
		return pkgerrors.NewExternalError("gcs", err).
			WithDetails(map[string]interface{}{"operation": operation})
	}
}
