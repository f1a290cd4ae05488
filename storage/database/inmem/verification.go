package inmemdb

import (
	"context"

	"github.com/hanslwng/taskmatrix/core/verification"
)

type verificationRepository struct {
	db *verificationTable
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(db *DB) verification.Repository {
	return &verificationRepository{db: db.verification}
}

func (repo *verificationRepository) UpsertChallenge(_ context.Context, ch verification.Challenge) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[ch.SessionID] = &ch
	return nil
}

func (repo *verificationRepository) GetChallenge(_ context.Context, sessionID string) (verification.Challenge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ch, ok := repo.db.table[sessionID]; ok {
		return *ch, nil
	}
	return verification.Challenge{}, verification.ErrNoChallenge
}

func (repo *verificationRepository) DeleteChallenge(_ context.Context, sessionID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, sessionID)
	return nil
}
