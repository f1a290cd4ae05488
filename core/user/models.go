package user

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/hanslwng/taskmatrix/core"
)

type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	EmailVerified bool        `json:"email_verified"`
	PasswordHash  []byte      `json:"-"`
	ResetToken    null.String `json:"-"`
	ResetExpiry   null.Time   `json:"-"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
	LastLogin     time.Time   `json:"last_login"` // UTC
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

// HasActiveResetToken reports whether a reset token is set and not yet past expiry.
func (u *User) HasActiveResetToken(now time.Time) bool {
	return u.ResetToken.Valid && u.ResetExpiry.Valid && u.ResetExpiry.Time.After(now)
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" form:"name" validate:"required,alphanum_"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email)
}

// UpdateProfile defines what information may be provided to modify an existing User.
type UpdateProfile struct {
	Name            string `json:"name" form:"name" validate:"omitempty,alphanum_"`
	Password        string `json:"password" form:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (up *UpdateProfile) Validate(origUsr User) error {
	name := core.CleanString(up.Name)
	if name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}
	return core.Validate.Struct(up)
}

// ResetUserPassword consumes a password reset token.
type ResetUserPassword struct {
	Token           string `json:"token" form:"token" validate:"required"`
	Password        string `json:"new_password" form:"new_password" validate:"required"`
	PasswordConfirm string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }
