package entities

import (
	"strings"
	"time"

	pkgerrors "users-backend/pkg/errors"
)

// User is a stored user record. The secret is only ever held as a hash.
type User struct {
	ID           string
	Name         string
	Email        string
	Address      string
	Phone        string
	PasswordHash string
	Image        string // blob name of the profile image, empty when unset
	File         string // blob name of the attached file, empty when unset
	CreatedAt    time.Time
}

// NewUser creates a user record with business rule validation
func NewUser(id, name, email, address, phone, passwordHash string, now time.Time) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.NewValidationError("user id cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		Address:      address,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC(),
	}, nil
}

// UserView is the public projection of a User returned to callers. It never
// carries the password hash.
type UserView struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	UserAddress string `json:"userAddress"`
	UserPhone   string `json:"userPhone"`
	UserImage   string `json:"userImage,omitempty"`
	UserFile    string `json:"userFile,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// View returns the public projection of u
func (u *User) View() UserView {
	v := UserView{
		UserID:      u.ID,
		UserName:    u.Name,
		UserEmail:   u.Email,
		UserAddress: u.Address,
		UserPhone:   u.Phone,
		UserImage:   u.Image,
		UserFile:    u.File,
	}
	if !u.CreatedAt.IsZero() {
		v.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return v
}

// Views projects a list of users, preserving order
func Views(users []*User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views
}
