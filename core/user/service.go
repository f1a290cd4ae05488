package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("reset link is invalid or has expired")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByResetToken(ctx context.Context, token string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, id string, at time.Time) error
		SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
		// ClearResetToken clears token+expiry together; used on expiry detection.
		ClearResetToken(ctx context.Context, token string) error
		// ConsumeResetToken atomically rewrites the password hash and clears
		// token+expiry, keyed on the token. Returns the number of affected rows;
		// 0 means the token was already consumed concurrently.
		ConsumeResetToken(ctx context.Context, token string, newHash []byte, at time.Time) (int64, error)
		SetVerifiedEmail(ctx context.Context, id, email string) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := nowFunc().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks credentials and records the login time.
// Unknown email and wrong password are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, pkgerrors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	now := nowFunc().UTC()
	if err = svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, pkgerrors.Wrap(err, "setting last login")
	}
	usr.LastLogin = now
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = up.Name
	usr.UpdatedAt = nowFunc().UTC()
	if up.Password != "" {
		if err := usr.SetPassword(up.Password); err != nil {
			return User{}, pkgerrors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// SetVerifiedEmail flips the user's email to a freshly verified address.
func (svc *Service) SetVerifiedEmail(ctx context.Context, id, email string) (User, error) {
	return svc.repo.SetVerifiedEmail(ctx, id, core.CleanString(email, true /* lower */))
}

// RequestPasswordReset issues a single-use reset token and emails a reset link.
// ErrNotFound surfaces to the handler, which must swallow it: the response
// shape never reveals whether the email exists.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	token, err := makeResetToken()
	if err != nil {
		return err
	}
	expiry := nowFunc().UTC().Add(core.Conf.PasswordResetTimeoutDelta)
	if err = svc.repo.SetResetToken(ctx, usr.ID, token, expiry); err != nil {
		return pkgerrors.Wrap(err, "storing reset token")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name, Token string
		}{usr.Name, token},
	}
	return pkgerrors.Wrap(svc.mailSvc.SendMessage(msg), "sending reset email")
}

// ResetPassword consumes a reset token exactly once and rewrites the password hash.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	usr, err := svc.repo.GetUserByResetToken(ctx, rp.Token)
	if err != nil {
		return err
	}

	now := nowFunc().UTC()
	if !usr.HasActiveResetToken(now) {
		// clear the stale token so it cannot be retried
		if cErr := svc.repo.ClearResetToken(ctx, rp.Token); cErr != nil {
			return pkgerrors.Wrap(cErr, "clearing expired reset token")
		}
		return ErrTokenExpired
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	n, err := svc.repo.ConsumeResetToken(ctx, rp.Token, usr.PasswordHash, now)
	if err != nil {
		return pkgerrors.Wrap(err, "consuming reset token")
	}
	if n == 0 {
		// token consumed by a concurrent submission
		return ErrNotFound
	}
	return nil
}
