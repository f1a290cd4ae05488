package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/session"
	inmemdb "github.com/hanslwng/taskmatrix/storage/database/inmem"
)

func setup(t *testing.T) (*session.Service, session.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewSessionRepository(db)
	return session.NewService(repo), repo
}

func Test_Service_StartAndGet(t *testing.T) {
	svc, _ := setup(t)

	sess, err := svc.Start(context.Background(), "user1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Start() did not assign an ID")
	}
	if want := sess.CreatedAt.Add(core.Conf.Server.SessionExpirationDelta); !sess.ExpiresAt.Equal(want) {
		t.Errorf("Start() ExpiresAt = %v, want %v", sess.ExpiresAt, want)
	}

	got, err := svc.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.UserID != "user1" {
		t.Errorf("Get() UserID = %q, want %q", got.UserID, "user1")
	}

	if _, err = svc.Get(context.Background(), "nope"); err != session.ErrNotFound {
		t.Errorf("Get() unknown id error = %v, want ErrNotFound", err)
	}
}

func Test_Service_Get_expired(t *testing.T) {
	svc, repo := setup(t)

	now := time.Now().UTC()
	stale := session.Session{
		ID:        "stale",
		UserID:    "user1",
		CreatedAt: now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := repo.CreateSession(context.Background(), stale); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), stale.ID); err != session.ErrNotFound {
		t.Fatalf("Get() expired session error = %v, want ErrNotFound", err)
	}
	// lazily deleted
	if _, err := repo.GetSession(context.Background(), stale.ID); err != session.ErrNotFound {
		t.Error("expired session was not deleted")
	}
}

func Test_Service_Delete(t *testing.T) {
	svc, _ := setup(t)

	sess, err := svc.Start(context.Background(), "user1")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err = svc.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(context.Background(), sess.ID); err != session.ErrNotFound {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}
