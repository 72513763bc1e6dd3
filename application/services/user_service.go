package services

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"users-backend/application/ports"
	"users-backend/domain/core/entities"
	"users-backend/pkg/common"
	pkgerrors "users-backend/pkg/errors"
	"users-backend/pkg/observability"
	"users-backend/pkg/utils"

	"go.uber.org/zap"
)

// Operation names used for tracing and metrics
const (
	OpCreateUser           = "CreateUser"
	OpGetUsers             = "GetUsers"
	OpGetUserByEmailAndPwd = "GetUserByEmailAndPwd"
	OpQueryUserFromDB      = "QueryUserFromDB"
	OpUpdateUser           = "UpdateUser"
	OpDeleteUser           = "DeleteUser"
	OpUpdateUserImage      = "UpdateUserImage"
	OpUpdateUserFile       = "UpdateUserFile"
	OpDeleteUserFile       = "DeleteUserFile"
	OpGetUser              = "GetUser"
)

const (
	imageContentType       = "image/jpeg"
	defaultFileContentType = "application/octet-stream"
)

// MediaOptions configures where media goes and whether media operations
// follow up with a record update.
type MediaOptions struct {
	Bucket             string
	LinkUploadedFiles  bool
	UnlinkDeletedFiles bool
}

// UserService is the user record gateway. Every operation validates its
// input, makes one document-store call (media operations also make one
// blob-store call first), and returns a success envelope or a typed error.
// An upload whose record update fails is deleted again on a best-effort basis.
type UserService struct {
	users   ports.UserRepository
	blobs   ports.BlobStore
	ids     ports.IDGenerator
	hasher  ports.SecretHasher
	media   MediaOptions
	logger  *zap.Logger
	tracer  *observability.Tracer
	metrics *observability.Metrics
	now     func() time.Time
}

// NewUserService creates a new user service. tracer and metrics may be nil.
func NewUserService(
	users ports.UserRepository,
	blobs ports.BlobStore,
	ids ports.IDGenerator,
	hasher ports.SecretHasher,
	media MediaOptions,
	logger *zap.Logger,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
) *UserService {
	return &UserService{
		users:   users,
		blobs:   blobs,
		ids:     ids,
		hasher:  hasher,
		media:   media,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
		now:     time.Now,
	}
}

// run wraps one operation with a trace subsegment and metrics
func (s *UserService) run(ctx context.Context, op string, fn func(ctx context.Context) (*common.APIResponse, error)) (*common.APIResponse, error) {
	start := time.Now()
	var resp *common.APIResponse
	err := s.tracer.TraceFunction(ctx, op, func(ctx context.Context) error {
		var err error
		resp, err = fn(ctx)
		return err
	})
	s.metrics.ObserveOperation(op, start, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateUser inserts a new record under a freshly generated id
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*common.APIResponse, error) {
	return s.run(ctx, OpCreateUser, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}

		hash, err := s.hasher.Hash(in.UserPassword)
		if err != nil {
			if pkgerrors.IsAppError(err) {
				return nil, err
			}
			return nil, pkgerrors.NewInternalError("failed to hash password").WithCause(err)
		}

		user, err := entities.NewUser(s.ids.NewID(), in.UserName, in.UserEmail, in.UserAddress, in.UserPhone, hash, s.now())
		if err != nil {
			return nil, err
		}

		if err := s.users.Insert(ctx, user); err != nil {
			s.logger.Error("Failed to create user", zap.Error(err), zap.String("userID", user.ID))
			return nil, err
		}

		s.logger.Info("User created", zap.String("userID", user.ID))
		return common.WrapSuccess(OperationResult{Success: true, UserID: user.ID}), nil
	})
}

// GetUsers returns every record, in store order
func (s *UserService) GetUsers(ctx context.Context) (*common.APIResponse, error) {
	return s.run(ctx, OpGetUsers, func(ctx context.Context) (*common.APIResponse, error) {
		users, err := s.users.ScanAll(ctx, ports.ScanFilter{})
		if err != nil {
			s.logger.Error("Failed to list users", zap.Error(err))
			return nil, err
		}
		return common.WrapSuccess(entities.Views(users)), nil
	})
}

// GetUserByEmailAndPwd scans for records with the given email and keeps
// those whose stored hash matches the secret. No match is an empty result.
func (s *UserService) GetUserByEmailAndPwd(ctx context.Context, in CredentialsInput) (*common.APIResponse, error) {
	return s.run(ctx, OpGetUserByEmailAndPwd, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}

		users, err := s.users.ScanAll(ctx, ports.ScanFilter{Email: in.UserEmail})
		if err != nil {
			s.logger.Error("Failed to scan users by email", zap.Error(err))
			return nil, err
		}
		return common.WrapSuccess(entities.Views(s.matching(users, in.UserEmail, in.UserPassword))), nil
	})
}

// QueryUserFromDB looks the email up on the email index, then checks the
// secret against each hit.
func (s *UserService) QueryUserFromDB(ctx context.Context, in QueryUserInput) (*common.APIResponse, error) {
	return s.run(ctx, OpQueryUserFromDB, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}

		users, err := s.users.QueryByEmail(ctx, in.Email)
		if err != nil {
			s.logger.Error("Failed to query users by email", zap.Error(err))
			return nil, err
		}
		return common.WrapSuccess(entities.Views(s.matching(users, in.Email, in.Password))), nil
	})
}

func (s *UserService) matching(users []*entities.User, email, secret string) []*entities.User {
	out := make([]*entities.User, 0, len(users))
	for _, u := range users {
		if u.Email == email && s.hasher.Matches(u.PasswordHash, secret) {
			out = append(out, u)
		}
	}
	return out
}

// UpdateUser sets the name and address of an existing record
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*common.APIResponse, error) {
	return s.run(ctx, OpUpdateUser, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}
		s.tracer.AddAnnotation(ctx, "userId", in.UserID)

		user, err := s.users.Update(ctx, in.UserID, ports.UserUpdate{
			Name:    &in.UserName,
			Address: &in.UserAddress,
		})
		if err != nil {
			s.logger.Error("Failed to update user", zap.Error(err), zap.String("userID", in.UserID))
			return nil, err
		}
		return common.WrapSuccess(user.View()), nil
	})
}

// DeleteUser deletes a record by id. Deleting an absent id succeeds with
// Deleted false.
func (s *UserService) DeleteUser(ctx context.Context, in DeleteUserInput) (*common.APIResponse, error) {
	return s.run(ctx, OpDeleteUser, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}
		s.tracer.AddAnnotation(ctx, "userId", in.UserID)

		result, err := s.users.DeleteByKey(ctx, in.UserID)
		if err != nil {
			s.logger.Error("Failed to delete user", zap.Error(err), zap.String("userID", in.UserID))
			return nil, err
		}
		return common.WrapSuccess(result), nil
	})
}

// UpdateUserImage uploads the decoded image under a new name and points the
// record at it. Nothing is written to the record if the upload fails.
func (s *UserService) UpdateUserImage(ctx context.Context, in UpdateUserImageInput) (*common.APIResponse, error) {
	return s.run(ctx, OpUpdateUserImage, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}
		s.tracer.AddAnnotation(ctx, "userId", in.UserID)

		body, err := decodeImage(in.UserImage)
		if err != nil {
			return nil, err
		}

		fileName := s.ids.NewID()
		if err := s.upload(ctx, fileName, body, imageContentType); err != nil {
			return nil, err
		}

		if _, err := s.users.Update(ctx, in.UserID, ports.UserUpdate{Image: &fileName}); err != nil {
			s.logger.Error("Failed to link image to user",
				zap.Error(err),
				zap.String("userID", in.UserID),
				zap.String("fileName", fileName),
			)
			s.discard(ctx, fileName)
			return nil, err
		}

		return common.WrapSuccess(MediaResult{Success: true, UserID: in.UserID, FileName: fileName, Linked: true}), nil
	})
}

// UpdateUserFile uploads a file under a new name. The record is only pointed
// at it when linking is enabled.
func (s *UserService) UpdateUserFile(ctx context.Context, in UpdateUserFileInput) (*common.APIResponse, error) {
	return s.run(ctx, OpUpdateUserFile, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}
		s.tracer.AddAnnotation(ctx, "userId", in.UserID)

		contentType := in.ContentType
		if contentType == "" {
			contentType = defaultFileContentType
		}

		fileName := s.ids.NewID()
		if err := s.upload(ctx, fileName, in.Data, contentType); err != nil {
			return nil, err
		}

		result := MediaResult{Success: true, UserID: in.UserID, FileName: fileName}
		if !s.media.LinkUploadedFiles {
			return common.WrapSuccess(result), nil
		}

		if _, err := s.users.Update(ctx, in.UserID, ports.UserUpdate{File: &fileName}); err != nil {
			s.logger.Error("Failed to link file to user",
				zap.Error(err),
				zap.String("userID", in.UserID),
				zap.String("fileName", fileName),
			)
			s.discard(ctx, fileName)
			return nil, err
		}
		result.Linked = true
		return common.WrapSuccess(result), nil
	})
}

// DeleteUserFile removes a blob. With unlinking enabled and a user id given,
// the record's file reference is cleared afterwards.
func (s *UserService) DeleteUserFile(ctx context.Context, in DeleteUserFileInput) (*common.APIResponse, error) {
	return s.run(ctx, OpDeleteUserFile, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}

		if err := s.blobs.Delete(ctx, s.media.Bucket, in.UserFile); err != nil {
			s.logger.Error("Failed to delete file",
				zap.Error(err),
				zap.String("bucket", s.media.Bucket),
				zap.String("fileName", in.UserFile),
			)
			return nil, blobError(err)
		}

		result := MediaResult{Success: true, UserID: in.UserID, FileName: in.UserFile}
		if !s.media.UnlinkDeletedFiles || in.UserID == "" {
			return common.WrapSuccess(result), nil
		}

		if _, err := s.users.Update(ctx, in.UserID, ports.UserUpdate{RemoveFile: true}); err != nil {
			s.logger.Error("Failed to unlink file from user",
				zap.Error(err),
				zap.String("userID", in.UserID),
				zap.String("fileName", in.UserFile),
			)
			return nil, err
		}
		result.Linked = true
		return common.WrapSuccess(result), nil
	})
}

// GetUser returns one record by id
func (s *UserService) GetUser(ctx context.Context, in GetUserInput) (*common.APIResponse, error) {
	return s.run(ctx, OpGetUser, func(ctx context.Context) (*common.APIResponse, error) {
		if err := utils.ValidateStruct(in); err != nil {
			return nil, err
		}
		s.tracer.AddAnnotation(ctx, "userId", in.UserID)

		user, err := s.users.Get(ctx, in.UserID)
		if err != nil {
			if !pkgerrors.IsNotFound(err) {
				s.logger.Error("Failed to get user", zap.Error(err), zap.String("userID", in.UserID))
			}
			return nil, err
		}
		return common.WrapSuccess(user.View()), nil
	})
}

func (s *UserService) upload(ctx context.Context, name string, body []byte, contentType string) error {
	err := s.blobs.Upload(ctx, ports.UploadRequest{
		Bucket:      s.media.Bucket,
		Name:        name,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to upload media",
			zap.Error(err),
			zap.String("bucket", s.media.Bucket),
			zap.String("fileName", name),
		)
		return blobError(err)
	}
	return nil
}

// discard removes a blob the record could not be pointed at. The stores
// share no transaction, so a failure here only leaves an orphan behind.
func (s *UserService) discard(ctx context.Context, name string) {
	if err := s.blobs.Delete(ctx, s.media.Bucket, name); err != nil {
		s.logger.Warn("Failed to remove unlinked media",
			zap.Error(err),
			zap.String("bucket", s.media.Bucket),
			zap.String("fileName", name),
		)
	}
}

// blobError keeps typed blob-store errors and wraps anything else as EXTERNAL
func blobError(err error) error {
	if pkgerrors.IsAppError(err) {
		return err
	}
	return pkgerrors.NewExternalError("blob store", err)
}

func decodeImage(encoded string) ([]byte, error) {
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	body, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, pkgerrors.NewValidationError("userImage must be base64 encoded").
			WithCode(pkgerrors.CodeInvalidPayload).
			WithCause(err)
	}
	if len(body) == 0 {
		return nil, pkgerrors.NewValidationError("userImage is empty").WithCode(pkgerrors.CodeInvalidPayload)
	}
	return body, nil
}
