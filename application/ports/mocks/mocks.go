// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"users-backend/application/ports"
	"users-backend/domain/core/entities"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Insert(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) ScanAll(ctx context.Context, filter ports.ScanFilter) ([]*entities.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) QueryByEmail(ctx context.Context, email string) ([]*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, userID string, update ports.UserUpdate) (*entities.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) DeleteByKey(ctx context.Context, userID string) (ports.DeleteResult, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ports.DeleteResult), args.Error(1)
}

// MockBlobStore mocks ports.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, req ports.UploadRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockBlobStore) Delete(ctx context.Context, bucket, name string) error {
	args := m.Called(ctx, bucket, name)
	return args.Error(0)
}

// SequenceIDGenerator hands out a fixed list of ids in order
type SequenceIDGenerator struct {
	IDs  []string
	next int
}

func (g *SequenceIDGenerator) NewID() string {
	id := g.IDs[g.next%len(g.IDs)]
	g.next++
	return id
}

// PlainHasher is a reversible stand-in for bcrypt in service tests
type PlainHasher struct {
	Err error
}

func (h PlainHasher) Hash(plain string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	return "hashed:" + plain, nil
}

func (h PlainHasher) Matches(hash, plain string) bool {
	return hash == "hashed:"+plain
}
