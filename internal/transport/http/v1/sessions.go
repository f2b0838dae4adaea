package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// OpenSession starts a new session.
// POST /v1/sessions
func (h *Handler) OpenSession(c echo.Context) error {
	id := h.service.OpenSession(c.Request().Context())
	return c.JSON(http.StatusCreated, map[string]string{"session_id": id})
}

// GetSession returns the state of a live session.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	state, err := h.service.SessionState(c.Param("session_id"))
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

// CloseSession discards a session.
// DELETE /v1/sessions/:session_id
func (h *Handler) CloseSession(c echo.Context) error {
	if !h.service.CloseSession(c.Request().Context(), c.Param("session_id")) {
		return errorJSON(c, http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// InvokeAction runs an action on a session. The request body is the
// arguments object.
// POST /v1/sessions/:session_id/actions/:action
func (h *Handler) InvokeAction(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || (len(body) > 0 && !json.Valid(body)) {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Invoke(c.Request().Context(), c.Param("session_id"), c.Param("action"), body)
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"result": result})
}

// ListActions returns the action descriptors for agent registration.
// GET /v1/actions
func (h *Handler) ListActions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"actions": h.service.Actions(),
	})
}
