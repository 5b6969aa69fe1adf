// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints. Open operations live
// under /v1/auth; logout and the profile endpoints are gated by the
// key-record auth middleware, and profile reads sit behind the response
// cache (a pass-through when Redis is unavailable).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, keys middleware.KeyLookup, cache echo.MiddlewareFunc) {
	gate := middleware.KeyRecordAuth(keys)

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/verify-create-password-token", a.VerifyCreatePasswordToken)
	g.POST("/password", a.CreatePassword)
	// Logout needs a verified caller: the key record to delete is taken
	// from the token, never from the body.
	g.POST("/logout", a.Logout, gate)

	user := e.Group("/v1/user", gate)
	user.GET("/profile", u.GetProfile, cache)
	user.PUT("/profile", u.UpdateProfile)
}
