package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"microblog/internal/database"
	"microblog/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge and reports whether a new row was written. An
// existing edge is left alone.
func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	query := tx.Rebind(`
		INSERT INTO followers (follower_id, followed_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`)
	result, err := tx.ExecContext(ctx, query, followerID, followedID, now())
	if err != nil {
		switch {
		case database.CheckViolation(err):
			return false, model.ErrCannotFollowSelf
		case database.ForeignKeyViolation(err):
			return false, model.ErrUserNotFound
		}
		return false, storageErr("failed to create follow", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to get rows affected", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes the edge and reports whether one existed.
func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	query := tx.Rebind(`DELETE FROM followers WHERE follower_id = ? AND followed_id = ?`)
	result, err := tx.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, storageErr("failed to delete follow", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to get rows affected", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM followers WHERE follower_id = ? AND followed_id = ?)`)
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followedID)
	if err != nil {
		return false, storageErr("failed to check follow existence", err)
	}
	return exists, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, "failed to count followers", `SELECT COUNT(*) FROM followers WHERE followed_id = ?`, userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, "failed to count following", `SELECT COUNT(*) FROM followers WHERE follower_id = ?`, userID)
}

func (r *followRepository) count(ctx context.Context, op, query string, userID int64) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), userID); err != nil {
		return 0, storageErr(op, err)
	}
	return n, nil
}

// GetFollowers lists users following userID, most recent edge first.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.email
		FROM followers f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = ?
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?
	`)
	return r.selectSummaries(ctx, "failed to get followers", query, userID, limit, offset)
}

// GetFollowing lists users that userID follows, most recent edge first.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.email
		FROM followers f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?
	`)
	return r.selectSummaries(ctx, "failed to get following", query, userID, limit, offset)
}

func (r *followRepository) selectSummaries(ctx context.Context, op, query string, args ...interface{}) ([]model.UserSummary, error) {
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, storageErr(op, err)
	}

	summaries := make([]model.UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].Summary()
	}
	return summaries, nil
}
