package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"MarketBrief/internal/domain/models"
	"MarketBrief/internal/usecase"
	xlogger "MarketBrief/pkg/logger"

	"github.com/labstack/echo/v4"
)

//go:embed dashboard.html
var dashboardHTML string

const (
	serviceName    = "MarketBrief Stock Analysis Agent"
	serviceVersion = "1.0.0"
)

// AnalysisHandler serves the dashboard and the trigger/status endpoints.
type AnalysisHandler struct {
	logger  *xlogger.Logger
	usecase *usecase.AnalysisUsecase
}

func NewAnalysisHandler(logger *xlogger.Logger, uc *usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, usecase: uc}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Dashboard)
	e.GET("/trigger", h.Trigger)
	e.GET("/status", h.Status)
}

// Dashboard serves the static control page.
func (h *AnalysisHandler) Dashboard(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return c.HTML(http.StatusOK, dashboardHTML)
}

type triggerResponse struct {
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Result    *models.AnalysisResult `json:"result"`
}

type triggerError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Trigger runs the pipeline synchronously. Domain failures still return
// 200 with the failed result embedded; only a panic maps to 500.
func (h *AnalysisHandler) Trigger(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("trigger panicked", xlogger.Any("panic", r))
			err = c.JSON(http.StatusInternalServerError, triggerError{
				Error:     "Failed to trigger analysis",
				Message:   fmt.Sprint(r),
				Timestamp: utcNow(),
			})
		}
	}()

	h.logger.Info("🔥 manual trigger initiated")
	result := h.usecase.Run(c.Request().Context(), usecase.TriggerManual)

	return c.JSON(http.StatusOK, triggerResponse{
		Message:   "Stock analysis triggered manually",
		Timestamp: utcNow(),
		Result:    result,
	})
}

type statusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// Status reports liveness.
func (h *AnalysisHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:    "active",
		Timestamp: utcNow(),
		Service:   serviceName,
		Version:   serviceVersion,
	})
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
