package s3

import (
	"bytes"
	"context"
	"errors"

	"users-backend/application/ports"
	pkgerrors "users-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// S3Client defines the S3 operations the blob store needs, making it testable.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// BlobStore implements ports.BlobStore on S3
type BlobStore struct {
	client S3Client
	logger *zap.Logger
}

// NewBlobStore creates a new S3 blob store
func NewBlobStore(client S3Client, logger *zap.Logger) *BlobStore {
	return &BlobStore{
		client: client,
		logger: logger,
	}
}

var _ ports.BlobStore = (*BlobStore)(nil)

// Upload puts req.Body at req.Bucket/req.Name
func (b *BlobStore) Upload(ctx context.Context, req ports.UploadRequest) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(req.Bucket),
		Key:           aws.String(req.Name),
		Body:          bytes.NewReader(req.Body),
		ContentLength: aws.Int64(int64(len(req.Body))),
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}
	if req.ContentEncoding != "" {
		input.ContentEncoding = aws.String(req.ContentEncoding)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return classifyError("PutObject", err)
	}

	b.logger.Debug("Uploaded object",
		zap.String("bucket", req.Bucket),
		zap.String("key", req.Name),
		zap.Int("bytes", len(req.Body)),
	)
	return nil
}

// Delete removes bucket/name. S3 reports success for keys that do not exist.
func (b *BlobStore) Delete(ctx context.Context, bucket, name string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}

	if _, err := b.client.DeleteObject(ctx, input); err != nil {
		return classifyError("DeleteObject", err)
	}

	b.logger.Debug("Deleted object", zap.String("bucket", bucket), zap.String("key", name))
	return nil
}

func classifyError(operation string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return pkgerrors.NewExternalError("s3", err).
			WithDetails(map[string]interface{}{"operation": operation})
	}

	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return pkgerrors.NewNotFoundError("file").WithCode(pkgerrors.CodeBlobNotFound).WithCause(err)
	case "NoSuchBucket":
		return pkgerrors.NewExternalError("s3", err).WithCode(pkgerrors.CodeBucketNotFound)
	default:
		return pkgerrors.NewExternalError("s3", err).
			WithCode(apiErr.ErrorCode()).
			WithDetails(map[string]interface{}{"operation": operation})
	}
}
