package ports

import (
	"context"

	"users-backend/domain/core/entities"
)

// UserRepository is the document-store port for user records. Each method
// issues exactly one store call against the canonical users table.
type UserRepository interface {
	// Insert writes a new record
	Insert(ctx context.Context, user *entities.User) error

	// Get performs a point lookup by key; a missing record is a NOT_FOUND error
	Get(ctx context.Context, userID string) (*entities.User, error)

	// ScanAll reads the whole table, optionally filtered server-side
	ScanAll(ctx context.Context, filter ScanFilter) ([]*entities.User, error)

	// QueryByEmail runs a key-conditioned query on the email index
	QueryByEmail(ctx context.Context, email string) ([]*entities.User, error)

	// Update applies a partial update to an existing record and returns the
	// record as stored afterwards
	Update(ctx context.Context, userID string, update UserUpdate) (*entities.User, error)

	// DeleteByKey removes a record; deleting an absent key is not an error
	DeleteByKey(ctx context.Context, userID string) (DeleteResult, error)
}

// ScanFilter narrows a scan. Zero value means unfiltered.
type ScanFilter struct {
	Email string
}

// IsEmpty reports whether the filter matches everything
func (f ScanFilter) IsEmpty() bool {
	return f.Email == ""
}

// UserUpdate names the attributes a partial update touches. Nil pointers are
// left alone; RemoveFile clears the file reference.
type UserUpdate struct {
	Name       *string
	Address    *string
	Image      *string
	File       *string
	RemoveFile bool
}

// IsEmpty reports whether the update would touch nothing
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Address == nil && u.Image == nil && u.File == nil && !u.RemoveFile
}

// DeleteResult reports what a delete-by-key did
type DeleteResult struct {
	UserID  string `json:"userId"`
	Deleted bool   `json:"deleted"`
}

// BlobStore is the object-storage port for user media
type BlobStore interface {
	// Upload stores body under bucket/name
	Upload(ctx context.Context, req UploadRequest) error

	// Delete removes bucket/name
	Delete(ctx context.Context, bucket, name string) error
}

// UploadRequest describes one blob upload
type UploadRequest struct {
	Bucket          string
	Name            string
	Body            []byte
	ContentType     string
	ContentEncoding string
}

// IDGenerator issues globally unique opaque identifiers
type IDGenerator interface {
	NewID() string
}

// SecretHasher hashes secrets for storage and checks candidates against them
type SecretHasher interface {
	Hash(plain string) (string, error)
	Matches(hash, plain string) bool
}
