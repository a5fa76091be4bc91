package chat

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nursehub/nursing-assistant/internal/platform/auth"
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "nurse"))
	g.POST("/chat", h.Chat)
}

type chatRequest struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

type chatResponse struct {
	ThreadID string `json:"thread_id"`
	Answer   string `json:"answer"`
}

func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ThreadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "thread_id is required")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	answer, err := h.manager.Handle(c.Request().Context(), req.ThreadID, req.Message)
	if err != nil {
		// Upstream model failures are the caller's 502; anything else
		// (checkpoint load/save, retrieval) is ours.
		var provErr *llm.ProviderError
		if errors.As(err, &provErr) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, chatResponse{ThreadID: req.ThreadID, Answer: answer})
}
