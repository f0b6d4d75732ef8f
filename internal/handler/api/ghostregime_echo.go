package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"GhostRegime/internal/domain/models"
	xhttp "GhostRegime/pkg/http"
	xlogger "GhostRegime/pkg/logger"
)

// GhostRegimeService is what the HTTP layer needs from the engine.
type GhostRegimeService interface {
	Latest(ctx context.Context) (*models.GhostRegimeRow, error)
	Health(ctx context.Context) (*models.Health, error)
	Today(ctx context.Context, req models.TodayRequest) (*models.BuildResult, error)
	History(ctx context.Context, req models.HistoryRequest) (*models.HistoryResult, error)
	Explain(ctx context.Context, req models.ExplainRequest) (*models.ExplainResult, error)
	Recompute(ctx context.Context, req models.RecomputeRequest) (*models.BuildResult, error)
}

// GhostRegimeEchoHandler serves /api/ghostregime.
type GhostRegimeEchoHandler struct {
	logger *xlogger.Logger
	svc    GhostRegimeService
}

func NewGhostRegimeEchoHandler(logger *xlogger.Logger, svc GhostRegimeService) *GhostRegimeEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &GhostRegimeEchoHandler{logger: logger, svc: svc}
}

func (h *GhostRegimeEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/ghostregime")
	g.GET("/latest", h.Latest)
	g.GET("/health", h.Health)
	g.GET("/today", h.Today)
	g.GET("/history", h.History)
	g.GET("/explain", h.Explain)
	g.POST("/recompute", h.Recompute)
}

func (h *GhostRegimeEchoHandler) Latest(c echo.Context) error {
	row, err := h.svc.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "latest", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, row)
}

func (h *GhostRegimeEchoHandler) Health(c echo.Context) error {
	res, err := h.svc.Health(c.Request().Context())
	if err != nil {
		return h.fail(c, "health", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GhostRegimeEchoHandler) Today(c echo.Context) error {
	req := &models.TodayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Today(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "today", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GhostRegimeEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.History(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "history", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.ListResponse(c, res.Rows, int64(res.Total))
}

func (h *GhostRegimeEchoHandler) Explain(c echo.Context) error {
	req := &models.ExplainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Explain(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "explain", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GhostRegimeEchoHandler) Recompute(c echo.Context) error {
	req := &models.RecomputeRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Recompute(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "recompute", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GhostRegimeEchoHandler) fail(c echo.Context, route string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError && appErr.Status != http.StatusServiceUnavailable {
		h.logger.Error("ghostregime usecase error", xlogger.String("route", route), xlogger.Error(err))
	} else {
		h.logger.Debug("ghostregime request rejected", xlogger.String("route", route), xlogger.String("code", appErr.Code))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps the engine taxonomy onto HTTP statuses. Internal causes stay in the log.
func toAppError(err error) *xhttp.AppError {
	ee, ok := models.AsEngineError(err)
	if !ok || ee.Kind == models.KindInternal {
		return xhttp.InternalError(models.CodeInternal, err)
	}
	var appErr *xhttp.AppError
	switch ee.Kind {
	case models.KindInvalidInput:
		appErr = xhttp.BadRequestError(ee.Code, ee.Field, ee.Message)
	case models.KindNotFound:
		appErr = xhttp.NotFoundError(ee.Code, ee.Field, ee.Message)
	case models.KindNotSeeded, models.KindNotReady:
		appErr = xhttp.ServiceUnavailableError(ee.Code, ee.Message)
	default:
		return xhttp.InternalError(models.CodeInternal, err)
	}
	appErr.WithError(err)
	for k, v := range ee.Details {
		appErr.WithParam(k, v)
	}
	return appErr
}
