package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/validate"
)

// UserService handles business logic for user operations
type UserService struct {
	db         *sqlx.DB
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	limiter    *LoginLimiter
}

// NewUserService wires the user directory. limiter may be nil, which disables
// login throttling.
func NewUserService(db *sqlx.DB, repo repository.UserRepository, followRepo repository.FollowRepository, limiter *LoginLimiter) *UserService {
	return &UserService{
		db:         db,
		repo:       repo,
		followRepo: followRepo,
		limiter:    limiter,
	}
}

// Register creates a new account. Duplicate usernames and emails are detected
// by the unique constraints at insert time, so two concurrent registrations
// for the same name resolve to one success.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		LastSeen:     time.Now().UTC().Truncate(time.Microsecond),
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[UserService] Registered user=%d username=%q", user.ID, user.Username)
	return user, nil
}

// Authenticate checks a username and password. It returns ErrUserNotFound or
// ErrInvalidCredentials; callers facing the network should not tell them apart.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if err := s.limiter.Allow(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.limiter.RecordFailure(ctx, username)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.limiter.RecordFailure(ctx, username)
		return nil, model.ErrInvalidCredentials
	}

	s.limiter.Reset(ctx, username)
	return user, nil
}

// EditProfile replaces the username and about-me text. Keeping one's own
// username is allowed; taking another user's is ErrDuplicateUsername.
func (s *UserService) EditProfile(ctx context.Context, userID int64, req *model.EditProfileRequest) (*model.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	aboutMe := req.AboutMe
	if aboutMe != nil && strings.TrimSpace(*aboutMe) == "" {
		aboutMe = nil
	}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.UpdateProfile(ctx, tx, userID, req.Username, aboutMe)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

// TouchLastSeen records activity for userID at the current time.
func (s *UserService) TouchLastSeen(ctx context.Context, userID int64) error {
	at := time.Now().UTC().Truncate(time.Microsecond)
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.TouchLastSeen(ctx, tx, userID, at)
	})
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by exact username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// GetProfile loads a user page with exact follower/following counts. viewerID
// is nil for anonymous viewers.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:           user,
		AvatarURL:      user.Avatar(model.AvatarSizeLarge),
		FollowerCount:  followers,
		FollowingCount: following,
	}

	if viewerID != nil {
		if *viewerID == user.ID {
			profile.IsSelf = true
		} else {
			isFollowing, err := s.followRepo.Exists(ctx, *viewerID, user.ID)
			if err != nil {
				return nil, err
			}
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}
