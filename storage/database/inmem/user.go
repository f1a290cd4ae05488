package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/hanslwng/taskmatrix/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByResetToken(_ context.Context, token string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.ResetToken.Valid && usr.ResetToken.String == token {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.Name = usr.Name
	orig.PasswordHash = usr.PasswordHash
	orig.UpdatedAt = usr.UpdatedAt
	return *orig, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.LastLogin = at
	return nil
}

func (repo *userRepository) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.ResetToken = null.StringFrom(token)
	usr.ResetExpiry = null.TimeFrom(expiry)
	return nil
}

func (repo *userRepository) ClearResetToken(_ context.Context, token string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, usr := range repo.db.table {
		if usr.ResetToken.Valid && usr.ResetToken.String == token {
			usr.ResetToken = null.String{}
			usr.ResetExpiry = null.Time{}
		}
	}
	return nil
}

func (repo *userRepository) ConsumeResetToken(_ context.Context, token string, newHash []byte, at time.Time) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, usr := range repo.db.table {
		if usr.ResetToken.Valid && usr.ResetToken.String == token &&
			usr.ResetExpiry.Valid && usr.ResetExpiry.Time.After(at) {
			usr.PasswordHash = newHash
			usr.ResetToken = null.String{}
			usr.ResetExpiry = null.Time{}
			usr.UpdatedAt = at
			return 1, nil
		}
	}
	return 0, nil
}

func (repo *userRepository) SetVerifiedEmail(_ context.Context, id, email string) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.Email = email
	usr.EmailVerified = true
	return *usr, nil
}
