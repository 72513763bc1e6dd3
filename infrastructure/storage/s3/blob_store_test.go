package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"users-backend/application/ports"
	pkgerrors "users-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3Client struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	body, _ := io.ReadAll(in.Body)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3Client) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestBlobStore_Upload(t *testing.T) {
	client := &fakeS3Client{}
	store := NewBlobStore(client, zap.NewNop())

	err := store.Upload(context.Background(), ports.UploadRequest{
		Bucket:      "media",
		Name:        "img-1",
		Body:        []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "media", aws.ToString(put.Bucket))
	assert.Equal(t, "img-1", aws.ToString(put.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(put.ContentType))
	assert.Equal(t, int64(10), aws.ToInt64(put.ContentLength))
	assert.Nil(t, put.ContentEncoding)
	assert.Equal(t, []byte("jpeg-bytes"), client.bodies[0])
}

func TestBlobStore_Delete(t *testing.T) {
	client := &fakeS3Client{}
	store := NewBlobStore(client, zap.NewNop())

	require.NoError(t, store.Delete(context.Background(), "media", "file-1"))

	require.Len(t, client.deletes, 1)
	assert.Equal(t, "media", aws.ToString(client.deletes[0].Bucket))
	assert.Equal(t, "file-1", aws.ToString(client.deletes[0].Key))
}

func TestBlobStore_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType pkgerrors.ErrorType
		wantCode string
	}{
		{"network", errors.New("dial tcp: i/o timeout"), pkgerrors.ErrorTypeExternal, ""},
		{"missing bucket", &types.NoSuchBucket{Message: aws.String("gone")}, pkgerrors.ErrorTypeExternal, pkgerrors.CodeBucketNotFound},
		{"missing key", &types.NoSuchKey{}, pkgerrors.ErrorTypeNotFound, pkgerrors.CodeBlobNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, pkgerrors.ErrorTypeExternal, "AccessDenied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewBlobStore(&fakeS3Client{err: tt.err}, zap.NewNop())

			uploadErr := store.Upload(context.Background(), ports.UploadRequest{Bucket: "media", Name: "x"})
			deleteErr := store.Delete(context.Background(), "media", "x")

			for _, err := range []error{uploadErr, deleteErr} {
				appErr := pkgerrors.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, tt.wantType, appErr.Type)
				assert.Equal(t, tt.wantCode, appErr.Code)
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
