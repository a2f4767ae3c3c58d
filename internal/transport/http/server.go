package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/handler"
	"microblog/internal/redis"
	"microblog/internal/repository"
	"microblog/internal/service"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Optional Redis for login throttling
	var limiter *service.LoginLimiter
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		limiter = service.NewLoginLimiter(rdb.Client, cfg.LoginMaxAttempts, time.Duration(cfg.LoginAttemptWindow)*time.Second)
	} else {
		log.Println("REDIS_URL is not set, login throttling disabled")
	}

	// 4. Wire handlers
	router, authService := NewApp(db, cfg, limiter)

	if n, err := authService.PurgeExpiredTokens(ctx); err != nil {
		log.Printf("Failed to purge expired refresh tokens: %v", err)
	} else if n > 0 {
		log.Printf("Purged %d expired refresh tokens", n)
	}

	// 5. Serve until interrupted
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewApp builds the router over db. limiter may be nil.
func NewApp(db *sqlx.DB, cfg *config.Config, limiter *service.LoginLimiter) (stdhttp.Handler, *service.AuthService) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	userService := service.NewUserService(db, userRepo, followRepo, limiter)
	postService := service.NewPostService(db, postRepo, userRepo, cfg.PostsPerPage)
	followService := service.NewFollowService(db, followRepo, userRepo, cfg.PostsPerPage)
	feedService := service.NewFeedService(postRepo, cfg.PostsPerPage)
	authService := service.NewAuthService(db, refreshTokenRepo, cfg)

	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, authService),
		UserHandler:   handler.NewUserHandler(userService),
		FollowHandler: handler.NewFollowHandler(followService, userService),
		FeedHandler:   handler.NewFeedHandler(feedService),
		PostHandler:   handler.NewPostHandler(postService),
		JWTSecret:     cfg.JWTSecret,
		LastSeen:      userService,
	})

	return router, authService
}
