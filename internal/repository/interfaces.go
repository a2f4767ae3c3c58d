package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/database"
	"microblog/internal/model"
)

// Write methods take the caller's transaction so a service decides the
// transaction boundary. Reads go straight to the pool.

type UserRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, tx *sqlx.Tx, id int64, username string, aboutMe *string) error
	TouchLastSeen(ctx context.Context, tx *sqlx.Tx, id int64, at time.Time) error
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context, limit, offset int) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error)
	// ListHomeFeed returns posts by the user or anyone the user follows,
	// newest first, in a single query.
	ListHomeFeed(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
}

type FollowRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error)
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
	GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// Revoke reports false when the token was already revoked.
	Revoke(ctx context.Context, tx *sqlx.Tx, id string, replacedBy *string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// storageErr wraps err with op, marking connection-level failures with
// model.ErrStorageUnavailable.
func storageErr(op string, err error) error {
	if database.Unavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// now is the timestamp source for rows written by this package. Stored at
// microsecond precision so values round-trip through Postgres unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
