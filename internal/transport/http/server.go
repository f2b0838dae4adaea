// Package http provides the HTTP server of the assistant backend.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/service"
	v1 "github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server.
// Extra handlers, such as the WebSocket endpoint, are mounted by the caller.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(svc).RegisterRoutes(e)

	return e
}
