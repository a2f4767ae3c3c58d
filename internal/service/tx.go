package service

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"microblog/internal/database"
	"microblog/internal/model"
)

// withTx runs fn in a transaction, committing when fn returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return txErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return txErr("commit transaction", err)
	}
	return nil
}

func txErr(op string, err error) error {
	if database.Unavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageOf fetches one page of posts. It asks for one extra row to learn
// whether a next page exists.
func pageOf(page, perPage int, fetch func(limit, offset int) ([]model.Post, error)) (*model.PostPage, error) {
	if page < 1 {
		page = 1
	}

	offset, ok := offsetOf(page, perPage)
	if !ok {
		return &model.PostPage{Posts: []model.Post{}, Page: page, HasPrev: true}, nil
	}

	posts, err := fetch(perPage+1, offset)
	if err != nil {
		return nil, err
	}

	hasNext := len(posts) > perPage
	if hasNext {
		posts = posts[:perPage]
	}
	if posts == nil {
		posts = []model.Post{}
	}

	return &model.PostPage{
		Posts:   posts,
		Page:    page,
		HasNext: hasNext,
		HasPrev: page > 1,
	}, nil
}

// offsetOf returns the row offset of page. ok is false when the offset does
// not fit in an int; no rows can live there.
func offsetOf(page, perPage int) (offset int, ok bool) {
	if page-1 > (math.MaxInt-1)/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}
