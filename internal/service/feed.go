package service

import (
	"context"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// FeedService builds the home timeline: the user's own posts plus posts from
// everyone they follow, newest first, resolved by a single query per page.
type FeedService struct {
	postRepo repository.PostRepository
	perPage  int
}

func NewFeedService(postRepo repository.PostRepository, perPage int) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		perPage:  perPage,
	}
}

func (s *FeedService) HomeFeed(ctx context.Context, userID int64, page int) (*model.PostPage, error) {
	return pageOf(page, s.perPage, func(limit, offset int) ([]model.Post, error) {
		return s.postRepo.ListHomeFeed(ctx, userID, limit, offset)
	})
}
