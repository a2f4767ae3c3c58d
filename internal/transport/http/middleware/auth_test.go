package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

const secret = "test-secret"

type recordingToucher struct {
	calls []int64
	err   error
}

func (t *recordingToucher) TouchLastSeen(ctx context.Context, userID int64) error {
	t.calls = append(t.calls, userID)
	return t.err
}

func signed(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := GetUserIDFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user_id": id, "ok": ok})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestAuthMiddleware(t *testing.T) {
	valid := signed(t, secret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})
	expired := signed(t, secret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Hour).Unix()})
	wrongKey := signed(t, "other", jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantCode   string
		wantTouch  bool
	}{
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			wantStatus: http.StatusOK,
			wantTouch:  true,
		},
		{
			name:       "cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: valid}) },
			wantStatus: http.StatusOK,
			wantTouch:  true,
		},
		{
			name:       "missing",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   httputil.ErrCodeUnauthorized,
		},
		{
			name:       "expired",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenExpired,
		},
		{
			name:       "wrong key",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+wrongKey) },
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toucher := &recordingToucher{}
			h := AuthMiddleware(secret, toucher)(http.HandlerFunc(echoUserID))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
			if tt.wantTouch {
				assert.Equal(t, []int64{7}, toucher.calls, "last_seen touched exactly once")
			} else {
				assert.Empty(t, toucher.calls)
			}
		})
	}
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	valid := signed(t, secret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})
	h := AuthMiddleware(secret, &recordingToucher{err: model.ErrUserNotFound})(http.HandlerFunc(echoUserID))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	valid := signed(t, secret, jwt.MapClaims{"user_id": 3, "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name      string
		header    string
		touchErr  error
		wantUser  bool
		wantTouch []int64
	}{
		{name: "anonymous"},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "valid", header: "Bearer " + valid, wantUser: true, wantTouch: []int64{3}},
		{name: "deleted user", header: "Bearer " + valid, touchErr: model.ErrUserNotFound, wantTouch: []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toucher := &recordingToucher{err: tt.touchErr}
			h := OptionalAuthMiddleware(secret, toucher)(http.HandlerFunc(echoUserID))

			req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				UserID int64 `json:"user_id"`
				OK     bool  `json:"ok"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantUser, body.OK)
			if tt.wantUser {
				assert.EqualValues(t, 3, body.UserID)
			}
			assert.Equal(t, tt.wantTouch, toucher.calls)
		})
	}
}
