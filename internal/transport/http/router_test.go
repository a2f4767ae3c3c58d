package http_test

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/config"
	"microblog/internal/database/dbtest"
	"microblog/internal/model"
	apphttp "microblog/internal/transport/http"
)

type client struct {
	t      *testing.T
	router stdhttp.Handler
}

func newClient(t *testing.T) *client {
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 3600,
		PostsPerPage:       10,
	}
	router, _ := apphttp.NewApp(dbtest.New(t), cfg, nil)
	return &client{t: t, router: router}
}

func (c *client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Code    string             `json:"code"`
		Message string             `json:"message"`
		Fields  []model.FieldError `json:"fields"`
	} `json:"error"`
}

func (c *client) signup(username string) string {
	c.t.Helper()
	rec := c.do(stdhttp.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret",
	})
	require.Equal(c.t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(stdhttp.MethodPost, "/auth/login", "", model.LoginRequest{Username: username, Password: "secret"})
	require.Equal(c.t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	return decode[model.LoginResponse](c.t, rec).AccessToken
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	rec := c.do(stdhttp.MethodGet, "/health", "", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	c := newClient(t)
	c.signup("alice")

	rec := c.do(stdhttp.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "x",
	})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)

	rec = c.do(stdhttp.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username: "carol", Email: "nope", Password: "x",
	})
	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, model.CodeValidation, body.Error.Code)
	require.Len(t, body.Error.Fields, 1)
	assert.Equal(t, "email", body.Error.Fields[0].Field)

	wrongPassword := c.do(stdhttp.MethodPost, "/auth/login", "", model.LoginRequest{Username: "alice", Password: "bad"})
	unknownUser := c.do(stdhttp.MethodPost, "/auth/login", "", model.LoginRequest{Username: "ghost", Password: "bad"})
	assert.Equal(t, stdhttp.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, stdhttp.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String(), "login does not reveal whether the user exists")
}

func TestFollowAndFeed(t *testing.T) {
	c := newClient(t)
	alice := c.signup("alice")
	bob := c.signup("bob")

	rec := c.do(stdhttp.MethodPost, "/posts", alice, model.CreatePostRequest{Body: "hello world"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(stdhttp.MethodPost, "/posts", alice, model.CreatePostRequest{Body: strings.Repeat("x", 141)})
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	assert.Equal(t, stdhttp.StatusBadRequest, c.do(stdhttp.MethodPost, "/users/bob/follow", bob, nil).Code)
	assert.Equal(t, stdhttp.StatusNotFound, c.do(stdhttp.MethodPost, "/users/ghost/follow", bob, nil).Code)
	require.Equal(t, stdhttp.StatusOK, c.do(stdhttp.MethodPost, "/users/alice/follow", bob, nil).Code)
	require.Equal(t, stdhttp.StatusOK, c.do(stdhttp.MethodPost, "/users/alice/follow", bob, nil).Code)

	rec = c.do(stdhttp.MethodGet, "/feed", bob, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	feed := decode[model.PostPage](t, rec)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "hello world", feed.Posts[0].Body)
	assert.Equal(t, "alice", feed.Posts[0].Author.Username)

	rec = c.do(stdhttp.MethodGet, "/users/alice", bob, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	profile := decode[model.ProfileResponse](t, rec)
	assert.True(t, profile.IsFollowing)
	assert.EqualValues(t, 1, profile.FollowerCount)

	rec = c.do(stdhttp.MethodGet, "/users/alice/followers", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	followers := decode[model.FollowListResponse](t, rec)
	assert.EqualValues(t, 1, followers.Count)

	require.Equal(t, stdhttp.StatusOK, c.do(stdhttp.MethodDelete, "/users/alice/follow", bob, nil).Code)

	rec = c.do(stdhttp.MethodGet, "/feed", bob, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Empty(t, decode[model.PostPage](t, rec).Posts)

	rec = c.do(stdhttp.MethodGet, "/explore", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Len(t, decode[model.PostPage](t, rec).Posts, 1)

	rec = c.do(stdhttp.MethodGet, "/users/alice/posts?page=2", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	page := decode[model.PostPage](t, rec)
	assert.Empty(t, page.Posts)
	assert.True(t, page.HasPrev)

	for _, path := range []string{"/explore?page=9223372036854775807", "/users/alice/followers?page=9223372036854775807"} {
		rec = c.do(stdhttp.MethodGet, path, "", nil)
		assert.Equal(t, stdhttp.StatusOK, rec.Code, path)
	}
	rec = c.do(stdhttp.MethodGet, "/explore?page=4611686018427387905", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Empty(t, decode[model.PostPage](t, rec).Posts)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)
	for _, r := range []struct{ method, path string }{
		{stdhttp.MethodGet, "/feed"},
		{stdhttp.MethodGet, "/me"},
		{stdhttp.MethodPost, "/posts"},
		{stdhttp.MethodPost, "/users/alice/follow"},
	} {
		rec := c.do(r.method, r.path, "", nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code, r.path)
	}
}

func TestEditProfile(t *testing.T) {
	c := newClient(t)
	alice := c.signup("alice")
	c.signup("bob")

	about := "hi"
	rec := c.do(stdhttp.MethodPut, "/me", alice, model.EditProfileRequest{Username: "alice", AboutMe: &about})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "hi", *decode[model.User](t, rec).AboutMe)

	rec = c.do(stdhttp.MethodPut, "/me", alice, model.EditProfileRequest{Username: "bob"})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)

	rec = c.do(stdhttp.MethodGet, "/me", alice, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[model.User](t, rec).Username)
}

func TestRefreshAndLogout(t *testing.T) {
	c := newClient(t)
	c.signup("alice")

	rec := c.do(stdhttp.MethodPost, "/auth/login", "", model.LoginRequest{Username: "alice", Password: "secret"})
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	login := decode[model.LoginResponse](t, rec)

	rec = c.do(stdhttp.MethodPost, "/auth/refresh", "", model.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	pair := decode[model.TokenPair](t, rec)

	rec = c.do(stdhttp.MethodPost, "/auth/logout", pair.AccessToken, model.LogoutRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = c.do(stdhttp.MethodPost, "/auth/refresh", "", model.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, model.CodeTokenReused, decode[errorBody](t, rec).Error.Code)
}
