package handler

import (
	"net/http"

	"microblog/internal/httputil"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed
// Returns one page of the authenticated user's home timeline.
//
// Query params:
//   - page: optional, 1-based page number (default 1)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	feed, err := h.feedService.HomeFeed(r.Context(), userID, pageParam(r))
	if err != nil {
		writeServiceError(w, err, "get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
