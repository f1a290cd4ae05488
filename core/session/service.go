package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	ErrNotFound = errors.New("session not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Start opens a new server-side session for the given user.
func (svc *Service) Start(ctx context.Context, userID string) (Session, error) {
	now := nowFunc().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(core.Conf.Server.SessionExpirationDelta),
	}
	if err := svc.repo.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get resolves a session id. Expired sessions are deleted lazily and
// reported as not found.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(nowFunc().UTC()) {
		_ = svc.repo.DeleteSession(ctx, id)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSession(ctx, id)
}
