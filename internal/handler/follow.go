package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	userService   *service.UserService
}

func NewFollowHandler(followService *service.FollowService, userService *service.UserService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		userService:   userService,
	}
}

// Follow handles POST /users/{username}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followee, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, "follow user")
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followee.ID); err != nil {
		writeServiceError(w, err, "follow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "You are following " + followee.Username,
	})
}

// Unfollow handles DELETE /users/{username}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followee, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, "unfollow user")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followee.ID); err != nil {
		writeServiceError(w, err, "unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "You are not following " + followee.Username,
	})
}

// GetFollowers handles GET /users/{username}/followers?page=N
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "fetch followers", h.followService.Followers)
}

// GetFollowing handles GET /users/{username}/following?page=N
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "fetch following", h.followService.Following)
}

func (h *FollowHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fetch func(ctx context.Context, userID int64, page int) (*model.FollowListResponse, error),
) {
	user, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, action)
		return
	}

	result, err := fetch(r.Context(), user.ID, pageParam(r))
	if err != nil {
		writeServiceError(w, err, action)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
