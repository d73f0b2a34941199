// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/handler"
	"github.com/blackhouse/forum/internal/middleware"
	"github.com/blackhouse/forum/internal/model"
)

// Handlers collects every handler needed to serve the API.
type Handlers struct {
	Auth          *handler.AuthHandler
	Category      *handler.CategoryHandler
	Topic         *handler.TopicHandler
	Message       *handler.MessageHandler
	Profile       *handler.ProfileHandler
	Leaderboard   *handler.LeaderboardHandler
	Search        *handler.SearchHandler
	Notifications *handler.NotificationHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register,
// login and refresh live under /v1/auth and need no session; /v1/me
// sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer
	// access token, so it stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// cache, when non-nil, is applied to the listing routes that benefit
// from short-lived response caching.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	e.GET("/v1/categories", h.Category.List, mw...)
	e.GET("/v1/topics", h.Topic.List, mw...)
	e.GET("/v1/leaderboard", h.Leaderboard.List, mw...)
	// Topic fetch counts a view, so it must not be cached.
	e.GET("/v1/topics/:id", h.Topic.Get)
	e.GET("/v1/users/:id", h.Profile.Get)
	e.GET("/v1/users/:id/topics", h.Topic.ByAuthor)
	e.GET("/v1/search", h.Search.Search)
}

// RegisterForum registers the authenticated forum actions.  Pin,
// close and delete additionally require a moderator or admin role;
// solution marking and editing are authorized per record by the
// engine.
func RegisterForum(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.POST("/topics", h.Topic.Create)
	auth.POST("/topics/:id/messages", h.Message.Reply)
	auth.PUT("/messages/:id", h.Message.Edit)
	auth.POST("/topics/:id/messages/:message_id/solution", h.Message.MarkSolution)

	auth.GET("/notifications", h.Notifications.List)
	auth.POST("/notifications/:id/read", h.Notifications.MarkRead)
	auth.POST("/notifications/read-all", h.Notifications.MarkAllRead)

	mod := e.Group("/v1")
	mod.Use(middleware.JWTAuth(jwtSecret))
	mod.Use(middleware.RequireRole(model.RoleModerator, model.RoleAdmin))
	mod.POST("/topics/:id/close", h.Topic.ToggleClosed)
	mod.POST("/topics/:id/pin", h.Topic.TogglePinned)
	mod.DELETE("/topics/:id", h.Topic.Delete)
}
