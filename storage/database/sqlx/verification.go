package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core/verification"
)

type challengeRow struct {
	SessionID string    `db:"session_id"`
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	IssuedAt  time.Time `db:"issued_at"`
}

type verificationRepository struct {
	db *sqlx.DB
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(db *sql.DB) *verificationRepository {
	return &verificationRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo verificationRepository) UpsertChallenge(ctx context.Context, ch verification.Challenge) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO email_verifications (session_id, email, code, issued_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO UPDATE SET email = $2, code = $3, issued_at = $4`,
		ch.SessionID, ch.Email, ch.Code, ch.IssuedAt,
	)
	return errors.Wrap(err, "upserting challenge")
}

func (repo verificationRepository) GetChallenge(ctx context.Context, sessionID string) (verification.Challenge, error) {
	var row challengeRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT session_id, email, code, issued_at FROM email_verifications WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return verification.Challenge{}, verification.ErrNoChallenge
		}
		return verification.Challenge{}, errors.Wrap(err, "getting challenge")
	}
	return verification.Challenge(row), nil
}

func (repo verificationRepository) DeleteChallenge(ctx context.Context, sessionID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM email_verifications WHERE session_id = $1`, sessionID)
	return errors.Wrap(err, "deleting challenge")
}
