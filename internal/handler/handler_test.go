package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackhouse/forum/internal/config"
	"github.com/blackhouse/forum/internal/forum"
	"github.com/blackhouse/forum/internal/handler"
	"github.com/blackhouse/forum/internal/router"
	"github.com/blackhouse/forum/internal/store/memory"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
	st := memory.New("")
	engine := forum.New(st, forum.NewLevelTable(forum.DefaultLevels()), forum.NewCatalog(forum.DefaultCatalog()))

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, st),
		Category:      handler.NewCategoryHandler(st),
		Topic:         handler.NewTopicHandler(st, engine),
		Message:       handler.NewMessageHandler(engine),
		Profile:       handler.NewProfileHandler(st, engine),
		Leaderboard:   handler.NewLeaderboardHandler(st),
		Search:        handler.NewSearchHandler(st),
		Notifications: handler.NewNotificationHandler(st),
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterPublic(e, h, nil)
	router.RegisterForum(e, h, cfg.JWTSecret)
	return e
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type authResponse struct {
	User struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Level    int    `json:"level"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func register(t *testing.T, e *echo.Echo, username string) authResponse {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"secret1"}`, username, username)
	rec := doJSON(e, http.MethodPost, "/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterLoginFlow(t *testing.T) {
	e := newTestServer(t)
	resp := register(t, e, "alice")
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "user", resp.User.Role)
	assert.Equal(t, 1, resp.User.Level)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// Duplicate username conflicts.
	rec := doJSON(e, http.MethodPost, "/v1/auth/register", "",
		`{"username":"alice","email":"dup@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/login", "",
		`{"username":"alice","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/login", "",
		`{"username":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestServer(t)

	cases := []string{
		`{"username":"ab","email":"a@example.com","password":"secret1"}`,
		`{"username":"alice","email":"a@example.com","password":"12345"}`,
		`{"username":"alice","email":"not-an-email","password":"secret1"}`,
	}
	for _, body := range cases {
		rec := doJSON(e, http.MethodPost, "/v1/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRefreshRotation(t *testing.T) {
	e := newTestServer(t)
	resp := register(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", "",
		fmt.Sprintf(`{"refresh_token":%q}`, resp.Refresh.Token))
	require.Equal(t, http.StatusOK, rec.Code)

	// The old refresh token is revoked by rotation.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", "",
		fmt.Sprintf(`{"refresh_token":%q}`, resp.Refresh.Token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	e := newTestServer(t)
	resp := register(t, e, "alice")

	rec := doJSON(e, http.MethodGet, "/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/me", resp.Access.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)
}

func TestTopicLifecycle(t *testing.T) {
	e := newTestServer(t)
	resp := register(t, e, "alice")

	// Creating a topic requires authentication.
	rec := doJSON(e, http.MethodPost, "/v1/topics", "",
		`{"category_id":1,"title":"Hello forum","content":"first"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/topics", resp.Access.Token,
		`{"category_id":1,"title":"Hello forum","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var topic struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topic))

	// Short titles are rejected before any write.
	rec = doJSON(e, http.MethodPost, "/v1/topics", resp.Access.Token,
		`{"category_id":1,"title":"Hey","content":"first"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Listing and fetching are public; fetching counts a view.
	rec = doJSON(e, http.MethodGet, "/v1/topics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/topics/%d", topic.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Topic struct {
			Views int64 `json:"views"`
		} `json:"topic"`
		Messages []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, int64(2), detail.Topic.Views) // 1 at creation + this fetch
	assert.Len(t, detail.Messages, 1)

	// Replying bumps the author's stats.
	bob := register(t, e, "bob")
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/topics/%d/messages", topic.ID), bob.Access.Token,
		`{"content":"a reply"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/users/%d", bob.User.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		User struct {
			XP int64 `json:"xp"`
		} `json:"user"`
		Achievements []struct {
			ID     string `json:"id"`
			Earned bool   `json:"earned"`
		} `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, int64(15), profile.User.XP) // reply + First Post
	earned := map[string]bool{}
	for _, a := range profile.Achievements {
		earned[a.ID] = a.Earned
	}
	assert.True(t, earned["first_post"])
	assert.False(t, earned["topic_starter"])
}

func TestModerationRequiresRole(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/v1/topics", alice.Access.Token,
		`{"category_id":1,"title":"Hello forum","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var topic struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topic))

	// Plain users are rejected by the role middleware.
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/topics/%d/close", topic.ID), alice.Access.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/topics/%d/pin", topic.ID), alice.Access.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/v1/topics/%d", topic.ID), alice.Access.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMessageEdit(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")
	bob := register(t, e, "bob")

	rec := doJSON(e, http.MethodPost, "/v1/topics", alice.Access.Token,
		`{"category_id":1,"title":"Hello forum","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var topic struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topic))

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/topics/%d/messages", topic.ID), alice.Access.Token,
		`{"content":"first draft"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var msg struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/v1/messages/%d", msg.ID), "",
		`{"content":"second draft"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Only the author may edit, regardless of who asks.
	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/v1/messages/%d", msg.ID), bob.Access.Token,
		`{"content":"hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/v1/messages/%d", msg.ID), alice.Access.Token,
		`{"content":"second draft"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "second draft")

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/topics/%d", topic.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "second draft")
	assert.NotContains(t, rec.Body.String(), "first draft")
}

func TestUserTopicsListing(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")
	bob := register(t, e, "bob")

	for _, title := range []string{"Alice topic one", "Alice topic two"} {
		rec := doJSON(e, http.MethodPost, "/v1/topics", alice.Access.Token,
			fmt.Sprintf(`{"category_id":1,"title":%q,"content":"body"}`, title))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := doJSON(e, http.MethodPost, "/v1/topics", bob.Access.Token,
		`{"category_id":1,"title":"Bob topic","content":"body"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/users/%d/topics", alice.User.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []struct {
			Title      string `json:"title"`
			AuthorName string `json:"author_name"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 2)
	for _, item := range out.Items {
		assert.Equal(t, "alice", item.AuthorName)
	}

	rec = doJSON(e, http.MethodGet, "/v1/users/999/topics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardAndSearch(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/v1/topics", alice.Access.Token,
		`{"category_id":1,"title":"Searchable topic","content":"body"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/leaderboard?by=xp", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rank":1`)
	assert.Contains(t, rec.Body.String(), `"alice"`)

	rec = doJSON(e, http.MethodGet, "/v1/leaderboard?by=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/search?q=Searchable", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Searchable topic")

	rec = doJSON(e, http.MethodGet, "/v1/search?q=a", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsEndpoint(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")

	rec := doJSON(e, http.MethodGet, "/v1/notifications", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Creating a topic earns Topic Starter, which lands in the inbox.
	rec = doJSON(e, http.MethodPost, "/v1/topics", alice.Access.Token,
		`{"category_id":1,"title":"Hello forum","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/notifications", alice.Access.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox struct {
		Items []struct {
			ID uint64 `json:"id"`
		} `json:"items"`
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	require.Len(t, inbox.Items, 1)
	assert.Equal(t, int64(1), inbox.Unread)

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/notifications/%d/read", inbox.Items[0].ID), alice.Access.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/notifications", alice.Access.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	assert.Equal(t, int64(0), inbox.Unread)
}

func TestCategoriesSeeded(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/v1/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 5)
	assert.Equal(t, "General Discussion", out.Items[0].Name)
}
