package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"users-backend/application/ports"
	"users-backend/application/ports/mocks"
	"users-backend/application/services"
	pkgerrors "users-backend/pkg/errors"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type storedObject struct {
	contentType string
	data        []byte
}

// fakeStorage serves the parts of the Cloud Storage JSON API the blob store
// uses: multipart uploads and object deletes.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storedObject)}
}

func (f *fakeStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, object, ok := splitObjectPath(r.URL.Path)
	if !ok {
		http.Error(w, "unexpected path "+r.URL.Path, http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		f.upload(w, r, bucket)
	case http.MethodDelete:
		f.delete(w, bucket, object)
	default:
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
	}
}

func (f *fakeStorage) upload(w http.ResponseWriter, r *http.Request, bucket string) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := mr.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var meta struct {
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mediaPart, err := mr.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(mediaPart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.objects[bucket+"/"+meta.Name] = storedObject{contentType: meta.ContentType, data: data}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"bucket":      bucket,
		"name":        meta.Name,
		"contentType": meta.ContentType,
		"size":        fmt.Sprint(len(data)),
	})
}

func (f *fakeStorage) delete(w http.ResponseWriter, bucket, object string) {
	f.mu.Lock()
	_, found := f.objects[bucket+"/"+object]
	delete(f.objects, bucket+"/"+object)
	f.mu.Unlock()

	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"No such object"}}`)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeStorage) object(bucket, name string) (storedObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[bucket+"/"+name]
	return obj, ok
}

// splitObjectPath extracts bucket and object from .../b/{bucket}/o[/{object}]
func splitObjectPath(path string) (bucket, object string, ok bool) {
	i := strings.Index(path, "/b/")
	if i < 0 {
		return "", "", false
	}
	rest := path[i+len("/b/"):]
	bucket, after, found := strings.Cut(rest, "/o")
	if !found {
		return "", "", false
	}
	return bucket, strings.TrimPrefix(after, "/"), true
}

func newTestStore(t *testing.T) (*BlobStore, *fakeStorage) {
	t.Helper()

	fake := newFakeStorage()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewBlobStore(client, zap.NewNop()), fake
}

func TestBlobStore_Upload(t *testing.T) {
	store, fake := newTestStore(t)

	err := store.Upload(context.Background(), ports.UploadRequest{
		Bucket:      "media",
		Name:        "img-1",
		Body:        []byte{0xff, 0xd8, 0xff},
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	obj, ok := fake.object("media", "img-1")
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, obj.data)
	assert.Equal(t, "image/jpeg", obj.contentType)
}

func TestBlobStore_Delete(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, ports.UploadRequest{Bucket: "media", Name: "file-1", Body: []byte("x")}))

	require.NoError(t, store.Delete(ctx, "media", "file-1"))

	_, ok := fake.object("media", "file-1")
	assert.False(t, ok)
}

func TestBlobStore_DeleteMissingObject(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Delete(context.Background(), "media", "ghost")

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, pkgerrors.CodeBlobNotFound, appErr.Code)
	assert.ErrorIs(t, err, storage.ErrObjectNotExist)
}

func TestDeleteUserFile_MissingObjectIsBlobNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	repo := new(mocks.MockUserRepository)
	svc := services.NewUserService(repo, store, &mocks.SequenceIDGenerator{IDs: []string{"id-1"}}, mocks.PlainHasher{},
		services.MediaOptions{Bucket: "media", UnlinkDeletedFiles: true}, zap.NewNop(), nil, nil)

	resp, err := svc.DeleteUserFile(context.Background(), services.DeleteUserFileInput{UserID: "u-1", UserFile: "ghost"})

	assert.Nil(t, resp)
	require.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, pkgerrors.CodeBlobNotFound, pkgerrors.GetAppError(err).Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType pkgerrors.ErrorType
		wantCode string
	}{
		{"missing object", storage.ErrObjectNotExist, pkgerrors.ErrorTypeNotFound, pkgerrors.CodeBlobNotFound},
		{"wrapped missing object", fmt.Errorf("delete: %w", storage.ErrObjectNotExist), pkgerrors.ErrorTypeNotFound, pkgerrors.CodeBlobNotFound},
		{"missing bucket", storage.ErrBucketNotExist, pkgerrors.ErrorTypeExternal, pkgerrors.CodeBucketNotFound},
		{"other", errors.New("googleapi: Error 403"), pkgerrors.ErrorTypeExternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := pkgerrors.GetAppError(classifyError("delete", tt.err))

			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}
