package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/validate"
)

type PostService struct {
	db       *sqlx.DB
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	perPage  int
}

func NewPostService(
	db *sqlx.DB,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	perPage int,
) *PostService {
	return &PostService{
		db:       db,
		postRepo: postRepo,
		userRepo: userRepo,
		perPage:  perPage,
	}
}

// Create publishes a post by authorID. The body must be non-blank and at most
// 140 characters.
func (s *PostService) Create(ctx context.Context, authorID int64, body string) (*model.Post, error) {
	req := model.CreatePostRequest{Body: body}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	post := &model.Post{Body: req.Body, UserID: authorID}
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.postRepo.Create(ctx, tx, post)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PostService] Created post=%d author=%d", post.ID, authorID)

	// Fetch author info
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		log.Printf("[PostService] Failed to load author=%d for post=%d: %v", authorID, post.ID, err)
		return post, nil
	}
	summary := author.Summary()
	post.Author = &summary

	return post, nil
}

// ListAll returns one page of every post, newest first.
func (s *PostService) ListAll(ctx context.Context, page int) (*model.PostPage, error) {
	return pageOf(page, s.perPage, func(limit, offset int) ([]model.Post, error) {
		return s.postRepo.ListAll(ctx, limit, offset)
	})
}

// ListByAuthor returns one page of posts written by username.
func (s *PostService) ListByAuthor(ctx context.Context, username string, page int) (*model.PostPage, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return pageOf(page, s.perPage, func(limit, offset int) ([]model.Post, error) {
		return s.postRepo.ListByAuthor(ctx, author.ID, limit, offset)
	})
}
