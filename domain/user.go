package domain

import (
	"context"
	"time"
)

// User is an account record. The Password and PasswordConfirm fields only
// carry raw form input into the service layer, they are never persisted.
// What gets stored is the bcrypt hash and the HMAC of the remember token.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"not null"`

	Password        string `json:"-" gorm:"-"`
	PasswordConfirm string `json:"-" gorm:"-"`
	PasswordHash    string `json:"-" gorm:"not null"`
	Remember        string `json:"-" gorm:"-"`
	RememberHash    string `json:"-" gorm:"uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tweets []Tweet `json:"tweets,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Likes  []Like  `json:"likes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByRemember(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
