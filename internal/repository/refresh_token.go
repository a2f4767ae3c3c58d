package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type refreshTokenRepository struct {
	db *sqlx.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *sqlx.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create inserts a new refresh token, assigning its ID and creation time
func (r *refreshTokenRepository) Create(ctx context.Context, tx *sqlx.Tx, token *model.RefreshToken) error {
	query := tx.Rebind(`
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, device_info, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	token.ID = uuid.New().String()
	token.CreatedAt = now()

	_, err := tx.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt.UTC(),
		token.CreatedAt,
		token.DeviceInfo,
		token.IPAddress,
	)
	if err != nil {
		return storageErr("failed to create refresh token", err)
	}
	return nil
}

// FindByTokenHash retrieves a refresh token by its hash
func (r *refreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, replaced_by, device_info, ip_address
		FROM refresh_tokens
		WHERE token_hash = ?
	`)
	var token model.RefreshToken
	err := r.db.GetContext(ctx, &token, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRefreshTokenNotFound
		}
		return nil, storageErr("failed to find refresh token", err)
	}
	return &token, nil
}

// Revoke marks a live token as revoked and optionally links to its
// replacement. Only one caller can claim a given token.
func (r *refreshTokenRepository) Revoke(ctx context.Context, tx *sqlx.Tx, id string, replacedBy *string) (bool, error) {
	query := tx.Rebind(`
		UPDATE refresh_tokens
		SET revoked_at = ?, replaced_by = ?
		WHERE id = ? AND revoked_at IS NULL
	`)
	result, err := tx.ExecContext(ctx, query, now(), replacedBy, id)
	if err != nil {
		return false, storageErr("failed to revoke refresh token", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to get rows affected", err)
	}
	return rows > 0, nil
}

// RevokeAllForUser revokes all active refresh tokens for a user
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`
		UPDATE refresh_tokens
		SET revoked_at = ?
		WHERE user_id = ? AND revoked_at IS NULL
	`)
	_, err := r.db.ExecContext(ctx, query, now(), userID)
	if err != nil {
		return storageErr("failed to revoke all tokens for user", err)
	}
	return nil
}

// DeleteExpired removes tokens that expired before the given time
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM refresh_tokens WHERE expires_at < ?`)
	result, err := r.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, storageErr("failed to delete expired tokens", err)
	}
	return result.RowsAffected()
}
