package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/labtrack/backend/core"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	StudentID    string    `json:"student_id" db:"student_id"`
	Track        string    `json:"track" db:"track"`
	IsInstructor bool      `json:"is_instructor" db:"is_instructor"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to sign up a new User.
type NewUser struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	StudentID string `json:"student_id" validate:"required"`
	Track     string `json:"track"`
	Password  string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.StudentID = core.CleanString(nu.StudentID)
	nu.Track = core.CleanString(nu.Track)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email, nu.StudentID)
}

// Credentials are exchanged for an access token.
// They are not validated: anything that does not authenticate is ErrInvalidCredentials.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Credentials) Clean() {
	c.Email = core.CleanString(c.Email, true /* lower */)
}

// GetFilter selects a single User by the first non-zero field.
type GetFilter struct {
	ID        int
	Email     string
	StudentID string
}
