package model

import "time"

// Post is an immutable short message.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	Body      string    `db:"body" json:"body"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
	UserID    int64     `db:"user_id" json:"user_id"`

	// Joined field (not in posts table)
	Author *UserSummary `db:"-" json:"author,omitempty"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Body string `json:"body" validate:"notblank,max=140"`
}

// PostPage is one page of posts, newest first.
type PostPage struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

const MaxPostBodyLength = 140
