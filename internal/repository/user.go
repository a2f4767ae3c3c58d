package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/database"
	"microblog/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Uniqueness is left to the table constraints so
// concurrent registrations cannot both succeed.
func (r *userRepository) Create(ctx context.Context, tx *sqlx.Tx, u *model.User) error {
	query := tx.Rebind(`
		INSERT INTO users (username, email, password_hash, about_me, last_seen)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	if u.LastSeen.IsZero() {
		u.LastSeen = now()
	}

	err := tx.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.AboutMe,
		u.LastSeen,
	).Scan(&u.ID)
	if err != nil {
		return uniqueErr("failed to insert user", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, password_hash, about_me, last_seen
		FROM users
		WHERE id = ?
	`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, storageErr("failed to get user by id", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username (exact, case-sensitive)
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, password_hash, about_me, last_seen
		FROM users
		WHERE username = ?
	`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, storageErr("failed to get user by username", err)
	}

	return &u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, tx *sqlx.Tx, id int64, username string, aboutMe *string) error {
	query := tx.Rebind(`UPDATE users SET username = ?, about_me = ? WHERE id = ?`)
	result, err := tx.ExecContext(ctx, query, username, aboutMe, id)
	if err != nil {
		return uniqueErr("failed to update profile", err)
	}
	return requireRow(result, "failed to update profile")
}

func (r *userRepository) TouchLastSeen(ctx context.Context, tx *sqlx.Tx, id int64, at time.Time) error {
	query := tx.Rebind(`UPDATE users SET last_seen = ? WHERE id = ?`)
	result, err := tx.ExecContext(ctx, query, at, id)
	if err != nil {
		return storageErr("failed to update last seen", err)
	}
	return requireRow(result, "failed to update last seen")
}

// uniqueErr maps username/email constraint violations to their typed errors.
func uniqueErr(op string, err error) error {
	switch {
	case database.ViolatesUnique(err, "username"):
		return model.ErrDuplicateUsername
	case database.ViolatesUnique(err, "email"):
		return model.ErrDuplicateEmail
	default:
		return storageErr(op, err)
	}
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
