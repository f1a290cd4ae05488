package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hanslwng/taskmatrix/core/user"
)

type userRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Email         string      `db:"email"`
	EmailVerified bool        `db:"email_verified"`
	PasswordHash  []byte      `db:"password_hash"`
	ResetToken    null.String `db:"reset_token"`
	ResetExpiry   null.Time   `db:"reset_expiry"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	LastLogin     null.Time   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		EmailVerified: r.EmailVerified,
		PasswordHash:  r.PasswordHash,
		ResetToken:    r.ResetToken,
		ResetExpiry:   r.ResetExpiry,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastLogin:     r.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id NOT IN (?))`
	excludedIDs := []string{uuid.Nil.String()}
	for _, u := range excludedUsers {
		excludedIDs = append(excludedIDs, u.ID)
	}
	query, args, err := sqlx.In(query, email, excludedIDs)
	if err != nil {
		return errors.Wrap(err, "expanding uniqueness query")
	}

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, email_verified, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		usr.ID, usr.Name, usr.Email, usr.EmailVerified, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	query := `SELECT id, name, email, email_verified, password_hash, reset_token, reset_expiry,
	                 created_at, updated_at, last_login
	          FROM users WHERE ` + where
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id = $1", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", email)
}

func (repo userRepository) GetUserByResetToken(ctx context.Context, token string) (user.User, error) {
	return repo.getUser(ctx, "reset_token = $1", token)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET name = $1, password_hash = $2, updated_at = $3 WHERE id = $4`,
		usr.Name, usr.PasswordHash, usr.UpdatedAt, usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return errors.Wrap(err, "setting last login")
}

func (repo userRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET reset_token = $1, reset_expiry = $2 WHERE id = $3`,
		token, expiry, id,
	)
	if err != nil {
		return errors.Wrap(err, "setting reset token")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) ClearResetToken(ctx context.Context, token string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_expiry = NULL WHERE reset_token = $1`, token,
	)
	return errors.Wrap(err, "clearing reset token")
}

func (repo userRepository) ConsumeResetToken(ctx context.Context, token string, newHash []byte, at time.Time) (int64, error) {
	// single conditional UPDATE keyed on the token: two concurrent
	// submissions cannot both succeed
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = $1, reset_token = NULL, reset_expiry = NULL, updated_at = $2
		 WHERE reset_token = $3 AND reset_expiry > $2`,
		newHash, at, token,
	)
	if err != nil {
		return 0, errors.Wrap(err, "consuming reset token")
	}
	return res.RowsAffected()
}

func (repo userRepository) SetVerifiedEmail(ctx context.Context, id, email string) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET email = $1, email_verified = TRUE, updated_at = NOW() WHERE id = $2`,
		email, id,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting verified email")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, id)
}
