package handoff

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nursehub/nursing-assistant/internal/domain/clinical"
	"github.com/nursehub/nursing-assistant/internal/platform/auth"
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "nurse"))
	g.POST("/generate_sbar", h.Generate)
	g.POST("/re_generate_sbar", h.Regenerate)
}

func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Generate(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Regenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Regenerate(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func mapError(err error) error {
	var schemaErr *llm.SchemaError
	var provErr *llm.ProviderError
	switch {
	case errors.Is(err, clinical.ErrNotFound), errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &schemaErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &provErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
