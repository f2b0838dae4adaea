package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetUser retrieves a user profile.
// GET /v1/users/:user_id
func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if user == nil {
		return errorJSON(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

// ListConversations retrieves a user's conversations, most recent first.
// GET /v1/users/:user_id/conversations
func (h *Handler) ListConversations(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	ctx := c.Request().Context()
	userID := c.Param("user_id")

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if user == nil {
		return errorJSON(c, http.StatusNotFound, "user not found")
	}

	convs, err := h.service.ListConversations(ctx, userID, limit)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": convs,
	})
}

// GetConversationMessages retrieves the messages of a conversation.
// GET /v1/conversations/:conversation_id/messages
func (h *Handler) GetConversationMessages(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("conversation_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid conversation id")
	}

	conv, msgs, err := h.service.GetConversationMessages(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if conv == nil {
		return errorJSON(c, http.StatusNotFound, "conversation not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversation": conv,
		"messages":     msgs,
	})
}
