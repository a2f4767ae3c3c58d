package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
	"microblog/internal/repository"
)

type FollowService struct {
	db         *sqlx.DB
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	perPage    int
}

func NewFollowService(
	db *sqlx.DB,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	perPage int,
) *FollowService {
	return &FollowService{
		db:         db,
		followRepo: followRepo,
		userRepo:   userRepo,
		perPage:    perPage,
	}
}

// Follow adds the edge follower -> followee. Following someone already
// followed is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	var inserted bool
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) (err error) {
		inserted, err = s.followRepo.Create(ctx, tx, followerID, followeeID)
		return err
	})
	if err != nil {
		return err
	}

	if inserted {
		log.Printf("[FollowService] follower=%d now follows followee=%d", followerID, followeeID)
	}
	return nil
}

// Unfollow removes the edge follower -> followee. Removing an absent edge,
// including the never-present self edge, is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	var deleted bool
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) (err error) {
		deleted, err = s.followRepo.Delete(ctx, tx, followerID, followeeID)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		log.Printf("[FollowService] follower=%d unfollowed followee=%d", followerID, followeeID)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

// FollowersCount counts users following userID at call time.
func (s *FollowService) FollowersCount(ctx context.Context, userID int64) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

// FollowingCount counts users userID follows at call time.
func (s *FollowService) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// Followers lists one page of users following userID, plus the total count.
func (s *FollowService) Followers(ctx context.Context, userID int64, page int) (*model.FollowListResponse, error) {
	var users []model.UserSummary
	if limit, offset, ok := s.window(page); ok {
		var err error
		users, err = s.followRepo.GetFollowers(ctx, userID, limit, offset)
		if err != nil {
			return nil, err
		}
	}
	count, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowListResponse{Users: nonNil(users), Count: count}, nil
}

// Following lists one page of users userID follows, plus the total count.
func (s *FollowService) Following(ctx context.Context, userID int64, page int) (*model.FollowListResponse, error) {
	var users []model.UserSummary
	if limit, offset, ok := s.window(page); ok {
		var err error
		users, err = s.followRepo.GetFollowing(ctx, userID, limit, offset)
		if err != nil {
			return nil, err
		}
	}
	count, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowListResponse{Users: nonNil(users), Count: count}, nil
}

// window returns the LIMIT/OFFSET of page. ok is false past the last
// addressable page.
func (s *FollowService) window(page int) (limit, offset int, ok bool) {
	if page < 1 {
		page = 1
	}
	offset, ok = offsetOf(page, s.perPage)
	return s.perPage, offset, ok
}

func nonNil(users []model.UserSummary) []model.UserSummary {
	if users == nil {
		return []model.UserSummary{}
	}
	return users
}
