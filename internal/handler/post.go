package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req.Body)
	if err != nil {
		writeServiceError(w, err, "create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Explore handles GET /explore?page=N: every user's posts, newest first.
func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	page, err := h.postService.ListAll(r.Context(), pageParam(r))
	if err != nil {
		writeServiceError(w, err, "list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// GetUserPosts handles GET /users/{username}/posts?page=N
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page, err := h.postService.ListByAuthor(r.Context(), username, pageParam(r))
	if err != nil {
		writeServiceError(w, err, "list user posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}
