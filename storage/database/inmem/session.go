package inmemdb

import (
	"context"

	"github.com/hanslwng/taskmatrix/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess session.Session) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[sess.ID] = &sess
	return nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.table[id]; ok {
		return *sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, id)
	return nil
}
