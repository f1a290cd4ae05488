package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/session"
	"github.com/hanslwng/taskmatrix/core/task"
	"github.com/hanslwng/taskmatrix/core/user"
	"github.com/hanslwng/taskmatrix/core/verification"
	emailsvc "github.com/hanslwng/taskmatrix/services/email"
	inmemdb "github.com/hanslwng/taskmatrix/storage/database/inmem"
)

const testPwd = "G00d!PassW"

type testEnv struct {
	server   Server
	usrSvc   *user.Service
	sessSvc  *session.Service
	verifSvc *verification.Service
	remRepo  reminder.Repository
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type emailUpdater struct {
	svc *user.Service
}

func (u emailUpdater) SetVerifiedEmail(ctx context.Context, userID, email string) error {
	_, err := u.svc.SetVerifiedEmail(ctx, userID, email)
	return err
}

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	os.Exit(m.Run())
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock()
	logger := nopLogger{}

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc)
	sessSvc := session.NewService(inmemdb.NewSessionRepository(db))
	remRepo := inmemdb.NewReminderRepository(db)
	verifSvc := verification.NewService(inmemdb.NewVerificationRepository(db), mailSvc, emailUpdater{usrSvc})

	srv := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		SessionSvc:     sessSvc,
		CourseSvc:      course.NewService(inmemdb.NewCourseRepository(db)),
		TaskSvc:        task.NewService(inmemdb.NewTaskRepository(db)),
		ReminderSvc:    reminder.NewService(remRepo, mailSvc, logger),
		VerifSvc:       verifSvc,
	})
	return &testEnv{server: srv, usrSvc: usrSvc, sessSvc: sessSvc, verifSvc: verifSvc, remRepo: remRepo}
}

func (env *testEnv) createUser(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Register(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        testPwd,
		PasswordConfirm: testPwd,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) sessionCookie(t *testing.T, usr user.User) *http.Cookie {
	t.Helper()
	sess, err := env.sessSvc.Start(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("sessionCookie() failed: %v", err)
	}
	token, err := GenerateToken(GetSessionClaims(sess))
	if err != nil {
		t.Fatalf("sessionCookie() failed: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token, Expires: sess.ExpiresAt}
}

func newRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeBody() failed: %v; body = %s", err, rec.Body.String())
	}
}

func deadline() time.Time {
	return time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
}
