package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"microblog/internal/database"
	"microblog/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postSelect joins each post with its author so lists never fetch authors
// one by one.
const postSelect = `
	SELECT p.id, p.body, p.created_at, p.user_id,
	       u.username AS author_username, u.email AS author_email
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// Newest first; id breaks timestamp ties so the order is total.
const postOrder = `
	ORDER BY p.created_at DESC, p.id DESC
	LIMIT ? OFFSET ?
`

type postRow struct {
	model.Post
	AuthorUsername string `db:"author_username"`
	AuthorEmail    string `db:"author_email"`
}

// Create inserts a post, stamping it with the current time.
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	query := tx.Rebind(`
		INSERT INTO posts (body, created_at, user_id)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	post.Timestamp = now()
	err := tx.QueryRowxContext(ctx, query, post.Body, post.Timestamp, post.UserID).Scan(&post.ID)
	if err != nil {
		if database.ForeignKeyViolation(err) {
			return model.ErrUserNotFound
		}
		return storageErr("insert post", err)
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Post, error) {
	query := r.db.Rebind(postSelect + postOrder)
	return r.selectPosts(ctx, "list posts", query, limit, offset)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error) {
	query := r.db.Rebind(postSelect + `WHERE p.user_id = ?` + postOrder)
	return r.selectPosts(ctx, "list posts by author", query, authorID, limit, offset)
}

// ListHomeFeed selects the union of the user's own posts and their followees'
// posts as one set: a post matches at most once no matter how it qualifies.
func (r *postRepository) ListHomeFeed(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	query := r.db.Rebind(postSelect + `
		WHERE p.user_id = ?
		   OR p.user_id IN (SELECT f.followed_id FROM followers f WHERE f.follower_id = ?)
	` + postOrder)
	return r.selectPosts(ctx, "list home feed", query, userID, userID, limit, offset)
}

func (r *postRepository) selectPosts(ctx context.Context, op, query string, args ...interface{}) ([]model.Post, error) {
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr(op, err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		author := model.User{ID: row.UserID, Username: row.AuthorUsername, Email: row.AuthorEmail}
		summary := author.Summary()
		posts[i] = row.Post
		posts[i].Author = &summary
	}
	return posts, nil
}
