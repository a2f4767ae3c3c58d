package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// User is an account. Session state lives outside it; handlers pass the
// authenticated user id into each operation.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // "-" hides from JSON output
	AboutMe      *string   `db:"about_me" json:"about_me"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
}

// Avatar returns the Gravatar identicon URL for the user's email.
func (u *User) Avatar(size int) string {
	digest := md5.Sum([]byte(strings.ToLower(u.Email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(digest[:]), size)
}

// Summary returns the public projection used in lists and feeds.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.Avatar(AvatarSizeSmall),
	}
}

// UserSummary is the public author/follower projection.
type UserSummary struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"-" json:"avatar_url"`
}

// ProfileResponse is a user page: the user, exact edge counts and whether the
// viewer follows them.
type ProfileResponse struct {
	User           *User  `json:"user"`
	AvatarURL      string `json:"avatar_url"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	IsFollowing    bool   `json:"is_following"`
	IsSelf         bool   `json:"is_self"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username        string `json:"username" validate:"notblank,max=64"`
	Email           string `json:"email" validate:"required,email,max=120"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=Password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EditProfileRequest replaces both editable profile fields.
type EditProfileRequest struct {
	Username string  `json:"username" validate:"notblank,max=64"`
	AboutMe  *string `json:"about_me" validate:"omitempty,max=140"`
}

const (
	MaxUsernameLength = 64
	MaxEmailLength    = 120
	MaxAboutMeLength  = 140

	AvatarSizeSmall = 36
	AvatarSizeLarge = 128
)
