package services

// CreateUserInput carries the fields of a new user record
type CreateUserInput struct {
	UserName     string `json:"userName" validate:"required,max=200"`
	UserEmail    string `json:"userEmail" validate:"required,email,max=320"`
	UserAddress  string `json:"userAddress" validate:"required,max=500"`
	UserPhone    string `json:"userPhone" validate:"required,max=50"`
	UserPassword string `json:"userPassword" validate:"required,maxbytes=72"`
}

// CredentialsInput identifies a user by email and secret
type CredentialsInput struct {
	UserEmail    string `json:"userEmail" validate:"required,email"`
	UserPassword string `json:"userPassword" validate:"required"`
}

// QueryUserInput is the indexed lookup variant of CredentialsInput
type QueryUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput changes the name and address of a user
type UpdateUserInput struct {
	UserID      string `json:"userId" validate:"required"`
	UserName    string `json:"userName" validate:"required,max=200"`
	UserAddress string `json:"userAddress" validate:"required,max=500"`
}

type DeleteUserInput struct {
	UserID string `json:"userId" validate:"required"`
}

type GetUserInput struct {
	UserID string `json:"userId" validate:"required"`
}

// UpdateUserImageInput carries a base64 encoded image. A data URL prefix
// ("data:image/png;base64,") is accepted and stripped.
type UpdateUserImageInput struct {
	UserID    string `json:"userId" validate:"required"`
	UserImage string `json:"userImage" validate:"required"`
}

// UpdateUserFileInput carries raw file bytes from a multipart upload
type UpdateUserFileInput struct {
	UserID      string `json:"userId" validate:"required"`
	Data        []byte `json:"-" validate:"required,min=1"`
	ContentType string `json:"contentType"`
}

// DeleteUserFileInput names the blob to delete. UserID is only needed when
// deleted files are unlinked from the record.
type DeleteUserFileInput struct {
	UserFile string `json:"userFile" validate:"required"`
	UserID   string `json:"userId"`
}

// OperationResult is the payload of write operations
type OperationResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
}

// MediaResult is the payload of media operations
type MediaResult struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId,omitempty"`
	FileName string `json:"fileName"`
	Linked   bool   `json:"linked"`
}
