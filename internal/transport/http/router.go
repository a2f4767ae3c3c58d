package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"microblog/internal/handler"
	"microblog/internal/httputil"
	authmw "microblog/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	FollowHandler *handler.FollowHandler
	FeedHandler   *handler.FeedHandler
	PostHandler   *handler.PostHandler
	JWTSecret     string

	// LastSeen is called once per authenticated request.
	LastSeen authmw.LastSeenToucher
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	r.Get("/explore", cfg.PostHandler.Explore)

	// Public user endpoints; the profile reads an optional viewer
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret, cfg.LastSeen)).Get("/users/{username}", cfg.UserHandler.GetProfile)
	r.Get("/users/{username}/posts", cfg.PostHandler.GetUserPosts)
	r.Get("/users/{username}/followers", cfg.FollowHandler.GetFollowers)
	r.Get("/users/{username}/following", cfg.FollowHandler.GetFollowing)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret, cfg.LastSeen))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me", cfg.AuthHandler.UpdateMe)

		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Post("/users/{username}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{username}/follow", cfg.FollowHandler.Unfollow)

		r.Get("/feed", cfg.FeedHandler.GetFeed)

		r.Post("/posts", cfg.PostHandler.Create)
	})

	return r
}
