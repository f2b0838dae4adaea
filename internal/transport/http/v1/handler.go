// Package v1 provides the versioned HTTP handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/actions"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session API (for the agent runtime)
	e.POST("/v1/sessions", h.OpenSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.DELETE("/v1/sessions/:session_id", h.CloseSession)
	e.POST("/v1/sessions/:session_id/actions/:action", h.InvokeAction)
	e.GET("/v1/actions", h.ListActions)

	// Read API
	e.GET("/v1/users/:user_id", h.GetUser)
	e.GET("/v1/users/:user_id/conversations", h.ListConversations)
	e.GET("/v1/conversations/:conversation_id/messages", h.GetConversationMessages)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"version":  "0.1.0",
		"sessions": h.service.SessionCount(),
	})
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var unknown *actions.UnknownActionError
	var badArgs *actions.ArgumentError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &badArgs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
