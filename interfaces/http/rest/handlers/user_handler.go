package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"users-backend/application/services"
	"users-backend/pkg/common"
	pkgerrors "users-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Multipart form field carrying an uploaded user file
const userFileField = "userFile"

// UserGateway is the set of user operations served over HTTP
type UserGateway interface {
	CreateUser(ctx context.Context, in services.CreateUserInput) (*common.APIResponse, error)
	GetUsers(ctx context.Context) (*common.APIResponse, error)
	GetUserByEmailAndPwd(ctx context.Context, in services.CredentialsInput) (*common.APIResponse, error)
	QueryUserFromDB(ctx context.Context, in services.QueryUserInput) (*common.APIResponse, error)
	UpdateUser(ctx context.Context, in services.UpdateUserInput) (*common.APIResponse, error)
	DeleteUser(ctx context.Context, in services.DeleteUserInput) (*common.APIResponse, error)
	UpdateUserImage(ctx context.Context, in services.UpdateUserImageInput) (*common.APIResponse, error)
	UpdateUserFile(ctx context.Context, in services.UpdateUserFileInput) (*common.APIResponse, error)
	DeleteUserFile(ctx context.Context, in services.DeleteUserFileInput) (*common.APIResponse, error)
	GetUser(ctx context.Context, in services.GetUserInput) (*common.APIResponse, error)
}

var _ UserGateway = (*services.UserService)(nil)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users          UserGateway
	errors         *ErrorHandler
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserGateway, errHandler *ErrorHandler, maxUploadBytes int64, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:          users,
		errors:         errHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UpdateUserRequest is the body of PUT /users/{userID}
type UpdateUserRequest struct {
	UserName    string `json:"userName"`
	UserAddress string `json:"userAddress"`
}

// UpdateUserImageRequest is the body of PUT /users/{userID}/image
type UpdateUserImageRequest struct {
	UserImage string `json:"userImage"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserInput
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.users.CreateUser(r.Context(), req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

// GetUsers handles GET /users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.users.GetUsers(r.Context())
	h.respond(w, r, http.StatusOK, resp, err)
}

// Login handles POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.CredentialsInput
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.users.GetUserByEmailAndPwd(r.Context(), req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// Lookup handles POST /users/lookup
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req services.QueryUserInput
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.users.QueryUserFromDB(r.Context(), req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.users.GetUser(r.Context(), services.GetUserInput{UserID: chi.URLParam(r, "userID")})
	h.respond(w, r, http.StatusOK, resp, err)
}

// UpdateUser handles PUT /users/{userID}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.users.UpdateUser(r.Context(), services.UpdateUserInput{
		UserID:      chi.URLParam(r, "userID"),
		UserName:    req.UserName,
		UserAddress: req.UserAddress,
	})
	h.respond(w, r, http.StatusOK, resp, err)
}

// DeleteUser handles DELETE /users/{userID}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.users.DeleteUser(r.Context(), services.DeleteUserInput{UserID: chi.URLParam(r, "userID")})
	h.respond(w, r, http.StatusOK, resp, err)
}

// UpdateUserImage handles PUT /users/{userID}/image
func (h *UserHandler) UpdateUserImage(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserImageRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.users.UpdateUserImage(r.Context(), services.UpdateUserImageInput{
		UserID:    chi.URLParam(r, "userID"),
		UserImage: req.UserImage,
	})
	h.respond(w, r, http.StatusOK, resp, err)
}

// UpdateUserFile handles POST /users/{userID}/file with a multipart body
func (h *UserHandler) UpdateUserFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errors.Handle(w, r, bodyError(err, "invalid multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(userFileField)
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(userFileField+" is required").
			WithCode(pkgerrors.CodeInvalidPayload).
			WithCause(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errors.Handle(w, r, bodyError(err, "failed to read uploaded file"))
		return
	}

	resp, err := h.users.UpdateUserFile(r.Context(), services.UpdateUserFileInput{
		UserID:      chi.URLParam(r, "userID"),
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	})
	h.respond(w, r, http.StatusOK, resp, err)
}

// DeleteUserFile handles DELETE /users/{userID}/file/{fileName}
func (h *UserHandler) DeleteUserFile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.users.DeleteUserFile(r.Context(), services.DeleteUserFileInput{
		UserID:   chi.URLParam(r, "userID"),
		UserFile: chi.URLParam(r, "fileName"),
	})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(r, v, h.maxUploadBytes); err != nil {
		h.errors.Handle(w, r, bodyError(err, "invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (h *UserHandler) respond(w http.ResponseWriter, r *http.Request, status int, resp *common.APIResponse, err error) {
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondEnvelope(w, status, resp)
}

// bodyError maps request body failures to a 400, or a 413 when the body
// exceeded the size limit
func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		appErr := pkgerrors.NewValidationError("request body too large").
			WithCode(pkgerrors.CodeInvalidPayload).
			WithDetails(map[string]interface{}{"limit": tooLarge.Limit})
		appErr.HTTPStatus = http.StatusRequestEntityTooLarge
		return appErr
	}
	return pkgerrors.NewValidationError(message).WithCode(pkgerrors.CodeInvalidPayload).WithCause(err)
}
