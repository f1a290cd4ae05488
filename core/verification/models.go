package verification

import (
	"time"

	"github.com/hanslwng/taskmatrix/core"
)

// Challenge is a short-lived 6-digit code bound to a session + email pair.
// A session holds at most one challenge; issuing a new code replaces it.
type Challenge struct {
	SessionID string    `json:"-"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"` // UTC
}

func (c Challenge) Expired(now time.Time) bool {
	return now.Sub(c.IssuedAt) > core.Conf.VerificationCodeTimeoutDelta
}

// IssueCode is the input schema for requesting a verification code.
type IssueCode struct {
	Email string `json:"email" validate:"required,email"`
}

func (ic *IssueCode) Validate() error {
	ic.Email = core.CleanString(ic.Email, true /* lower */)
	return core.Validate.Struct(ic)
}

// VerifyCode is the input schema for presenting a code.
type VerifyCode struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (vc *VerifyCode) Validate() error {
	vc.Email = core.CleanString(vc.Email, true /* lower */)
	vc.Code = core.CleanString(vc.Code)
	return core.Validate.Struct(vc)
}
