package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	// errors
	ErrNoChallenge  = errors.New("no verification in progress")
	ErrCodeExpired  = errors.New("verification code has expired")
	ErrCodeMismatch = errors.New("invalid verification code")
	ErrDispatch     = errors.New("failed to send verification code")

	nowFunc = time.Now // mockable

	codeMax = big.NewInt(1000000)
)

type (
	Repository interface {
		// UpsertChallenge stores the session's challenge, replacing any
		// previous one for the same session.
		UpsertChallenge(ctx context.Context, ch Challenge) error
		GetChallenge(ctx context.Context, sessionID string) (Challenge, error)
		DeleteChallenge(ctx context.Context, sessionID string) error
	}

	// EmailUpdater flips the verified email through on exact code match.
	EmailUpdater interface {
		SetVerifiedEmail(ctx context.Context, userID, email string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		users   EmailUpdater
	}
)

func NewService(repo Repository, mailSvc core.EmailService, users EmailUpdater) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, users: users}
}

// makeCode returns a uniformly random 6-digit code. Leading zeros are
// preserved: "000042" is a valid code.
func makeCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", pkgerrors.Wrap(err, "reading random int")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IssueCode generates a fresh challenge for the session and emails the code.
func (svc *Service) IssueCode(ctx context.Context, sessionID string, ic IssueCode) error {
	code, err := makeCode()
	if err != nil {
		return err
	}

	ch := Challenge{
		SessionID: sessionID,
		Email:     ic.Email,
		Code:      code,
		IssuedAt:  nowFunc().UTC(),
	}
	if err = svc.repo.UpsertChallenge(ctx, ch); err != nil {
		return pkgerrors.Wrap(err, "storing challenge")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: ic.Email}},
		Subject:      "Email Verification Code",
		TemplateName: "verification-code",
		TemplateData: struct{ Code string }{code},
	}
	if err = svc.mailSvc.SendMessage(msg); err != nil {
		return ErrDispatch
	}
	return nil
}

// Verify accepts the code only on exact code AND email match within the
// expiry window. A matched challenge is single-use; the verified address is
// written through to the user record.
func (svc *Service) Verify(ctx context.Context, sessionID, userID string, vc VerifyCode) error {
	ch, err := svc.repo.GetChallenge(ctx, sessionID)
	if err != nil {
		if err == ErrNoChallenge {
			return err
		}
		return pkgerrors.Wrap(err, "loading challenge")
	}

	if ch.Expired(nowFunc().UTC()) {
		if dErr := svc.repo.DeleteChallenge(ctx, sessionID); dErr != nil {
			return pkgerrors.Wrap(dErr, "deleting expired challenge")
		}
		return ErrCodeExpired
	}

	codeOK := subtle.ConstantTimeCompare([]byte(vc.Code), []byte(ch.Code)) == 1
	if !codeOK || vc.Email != ch.Email {
		return ErrCodeMismatch
	}

	if err = svc.repo.DeleteChallenge(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(err, "consuming challenge")
	}
	return pkgerrors.Wrap(svc.users.SetVerifiedEmail(ctx, userID, ch.Email), "updating verified email")
}
