package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core/session"
)

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo sessionRepository) CreateSession(ctx context.Context, sess session.Session) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	return errors.Wrap(err, "inserting session")
}

func (repo sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	var sess session.Session
	err := repo.db.QueryRowxContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}
	return sess, nil
}

func (repo sessionRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return errors.Wrap(err, "deleting session")
}
