package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/hanslwng/taskmatrix/core/user"
	"github.com/hanslwng/taskmatrix/core/verification"
	emailsvc "github.com/hanslwng/taskmatrix/services/email"
	inmemdb "github.com/hanslwng/taskmatrix/storage/database/inmem"
)

type emailUpdater struct {
	svc *user.Service
}

func (u emailUpdater) SetVerifiedEmail(ctx context.Context, userID, email string) error {
	_, err := u.svc.SetVerifiedEmail(ctx, userID, email)
	return err
}

func setup(t *testing.T) (*verification.Service, verification.Repository, *user.Service, user.User) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock()

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc)
	usr, err := usrSvc.Register(context.Background(), user.NewUser{
		Name:            "Awe",
		Email:           "awe@test.cd",
		Password:        "G00d!PassW",
		PasswordConfirm: "G00d!PassW",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	repo := inmemdb.NewVerificationRepository(db)
	return verification.NewService(repo, mailSvc, emailUpdater{usrSvc}), repo, usrSvc, usr
}

func issueCode(t *testing.T, svc *verification.Service, sessionID, email string) string {
	t.Helper()
	if err := svc.IssueCode(context.Background(), sessionID, verification.IssueCode{Email: email}); err != nil {
		t.Fatalf("IssueCode() failed: %v", err)
	}
	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("IssueCode() sent no email")
	}
	return msg.TemplateData.(struct{ Code string }).Code
}

func Test_Service_IssueCode(t *testing.T) {
	svc, repo, _, _ := setup(t)

	code := issueCode(t, svc, "sess1", "new@test.cd")
	if len(code) != 6 {
		t.Errorf("emailed code = %q, want 6 digits", code)
	}

	ch, err := repo.GetChallenge(context.Background(), "sess1")
	if err != nil {
		t.Fatalf("GetChallenge() failed: %v", err)
	}
	if ch.Code != code || ch.Email != "new@test.cd" {
		t.Errorf("stored challenge = %+v, want code %q for new@test.cd", ch, code)
	}
}

func Test_Service_Verify(t *testing.T) {
	svc, _, usrSvc, usr := setup(t)
	code := issueCode(t, svc, "sess1", "new@test.cd")

	wrongCode := "000000"
	if wrongCode == code {
		wrongCode = "000001"
	}

	tests := []struct {
		name    string
		session string
		vc      verification.VerifyCode
		wantErr error
	}{
		{name: "no challenge", session: "other", vc: verification.VerifyCode{Email: "new@test.cd", Code: code}, wantErr: verification.ErrNoChallenge},
		{name: "wrong code", session: "sess1", vc: verification.VerifyCode{Email: "new@test.cd", Code: wrongCode}, wantErr: verification.ErrCodeMismatch},
		{name: "wrong email", session: "sess1", vc: verification.VerifyCode{Email: "other@test.cd", Code: code}, wantErr: verification.ErrCodeMismatch},
		{name: "exact match", session: "sess1", vc: verification.VerifyCode{Email: "new@test.cd", Code: code}},
		{name: "single-use", session: "sess1", vc: verification.VerifyCode{Email: "new@test.cd", Code: code}, wantErr: verification.ErrNoChallenge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Verify(context.Background(), tt.session, usr.ID, tt.vc); err != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	refreshed, err := usrSvc.GetByID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if refreshed.Email != "new@test.cd" || !refreshed.EmailVerified {
		t.Errorf("verified user = (%s, %t), want (new@test.cd, true)", refreshed.Email, refreshed.EmailVerified)
	}
}

func Test_Service_Verify_expiredCode(t *testing.T) {
	svc, repo, _, usr := setup(t)

	ch := verification.Challenge{
		SessionID: "sess1",
		Email:     "new@test.cd",
		Code:      "123456",
		IssuedAt:  time.Now().UTC().Add(-3 * time.Minute),
	}
	if err := repo.UpsertChallenge(context.Background(), ch); err != nil {
		t.Fatalf("UpsertChallenge() failed: %v", err)
	}

	vc := verification.VerifyCode{Email: "new@test.cd", Code: "123456"}
	if err := svc.Verify(context.Background(), "sess1", usr.ID, vc); err != verification.ErrCodeExpired {
		t.Fatalf("Verify() error = %v, want ErrCodeExpired", err)
	}
	// expired challenge is gone; the code cannot be retried
	if err := svc.Verify(context.Background(), "sess1", usr.ID, vc); err != verification.ErrNoChallenge {
		t.Errorf("retried Verify() error = %v, want ErrNoChallenge", err)
	}
}

func Test_Service_IssueCode_replacesChallenge(t *testing.T) {
	svc, _, _, usr := setup(t)

	oldCode := issueCode(t, svc, "sess1", "new@test.cd")
	newCode := issueCode(t, svc, "sess1", "new@test.cd")
	if oldCode == newCode {
		t.Skip("codes collided; nothing to assert")
	}

	if err := svc.Verify(context.Background(), "sess1", usr.ID, verification.VerifyCode{Email: "new@test.cd", Code: oldCode}); err != verification.ErrCodeMismatch {
		t.Errorf("Verify() with replaced code error = %v, want ErrCodeMismatch", err)
	}
	if err := svc.Verify(context.Background(), "sess1", usr.ID, verification.VerifyCode{Email: "new@test.cd", Code: newCode}); err != nil {
		t.Errorf("Verify() with fresh code failed: %v", err)
	}
}
