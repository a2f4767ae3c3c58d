package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// writeServiceError maps a service error onto the response envelope. action
// completes "Failed to ..." for unexpected errors.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteValidationError(w, verr)
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "Invalid username or password")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrDuplicateUsername):
		httputil.WriteConflict(w, "Please use a different username")
	case errors.Is(err, model.ErrDuplicateEmail):
		httputil.WriteConflict(w, "Please use a different email address")
	case errors.Is(err, model.ErrTooManyAttempts):
		httputil.WriteTooManyRequests(w, "Too many failed login attempts, try again later")
	case errors.Is(err, model.ErrStorageUnavailable):
		log.Printf("[ERROR] %s: %v", action, err)
		httputil.WriteServiceUnavailable(w, "Storage is unavailable, try again later")
	default:
		log.Printf("[ERROR] %s: %v", action, err)
		httputil.WriteInternalError(w, "Failed to "+action)
	}
}

// pageParam reads ?page=N. Missing or malformed values mean page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
