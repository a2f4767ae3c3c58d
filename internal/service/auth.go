package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"microblog/internal/config"
	"microblog/internal/model"
	"microblog/internal/repository"
)

// AuthService handles authentication-related business logic with refresh token rotation and reuse detection.
type AuthService struct {
	db               *sqlx.DB
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
}

func NewAuthService(db *sqlx.DB, refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		db:               db,
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	var pair *model.TokenPair
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) (err error) {
		pair, _, err = s.issue(ctx, tx, userID, deviceInfo, ipAddress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// RefreshTokens validates the refresh token and rotates a new pair.
// Presenting a token that was already rotated or revoked revokes every
// session of its owner. The new token is stored and the old one claimed in
// one transaction, so of two concurrent rotations only one succeeds.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, int64, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshTokenRaw))
	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return nil, 0, err
		}
		return nil, 0, model.ErrRefreshTokenNotFound
	}

	if token.IsRevoked() {
		return nil, 0, s.reuseDetected(ctx, token.UserID)
	}

	if token.IsExpired() {
		return nil, 0, model.ErrRefreshTokenExpired
	}

	var pair *model.TokenPair
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var newID string
		var err error
		pair, newID, err = s.issue(ctx, tx, token.UserID, deviceInfo, ipAddress)
		if err != nil {
			return err
		}

		claimed, err := s.refreshTokenRepo.Revoke(ctx, tx, token.ID, &newID)
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrRefreshTokenReused
		}
		return nil
	})
	if errors.Is(err, model.ErrRefreshTokenReused) {
		return nil, 0, s.reuseDetected(ctx, token.UserID)
	}
	if err != nil {
		return nil, 0, err
	}

	return pair, token.UserID, nil
}

// reuseDetected revokes every session of userID and returns
// model.ErrRefreshTokenReused.
func (s *AuthService) reuseDetected(ctx context.Context, userID int64) error {
	log.Printf("[AuthService] Refresh token reuse detected for user=%d, revoking all sessions", userID)
	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		log.Printf("[AuthService] Failed to revoke token family for user=%d: %v", userID, err)
	}
	return model.ErrRefreshTokenReused
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshTokenRaw))
	if err != nil {
		return err
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := s.refreshTokenRepo.Revoke(ctx, tx, token.ID, nil)
		return err
	})
}

func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

// PurgeExpiredTokens deletes refresh tokens whose expiry has passed.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx, time.Now())
}

// issue creates an access token and a stored refresh token, returning the
// stored token's ID alongside the pair.
func (s *AuthService) issue(ctx context.Context, tx *sqlx.Tx, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, string, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshTokenRaw := uuid.New().String()

	refreshToken := &model.RefreshToken{
		UserID:    userID,
		TokenHash: s.hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}

	if deviceInfo != "" {
		refreshToken.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, tx, refreshToken); err != nil {
		return nil, "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, refreshToken.ID, nil
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
