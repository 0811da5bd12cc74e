package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-allocation/internal/handler"
	"github.com/iliyamo/ticket-allocation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the operator login.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)
	e.POST("/v1/auth/login", a.Login)
}

// RegisterRuns registers the run-control endpoints.  Every route in this
// group executes the JWTAuth middleware first, so only an authenticated
// operator can inspect or drive allocation runs.
func RegisterRuns(e *echo.Echo, r *handler.RunHandler, jwtSecret string) {
	g := e.Group("/v1/runs")
	g.Use(middleware.JWTAuth(jwtSecret))

	// Mutating run controls.
	g.POST("", r.Start)
	g.POST("/continue", r.Continue)
	g.POST("/stop", r.Stop)

	// Read-only polls used by the dashboard.
	g.GET("/status", r.Status)
	g.GET("/progress", r.Progress)
	g.GET("/logs", r.Logs)
	g.GET("/results", r.Results)
}
