// Package handler exposes the ETL trigger over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zizcar/records-etl/internal/domain/etl/locator"
	"github.com/zizcar/records-etl/internal/domain/etl/service"
)

// Runner triggers one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*service.RunResult, error)
}

// ETLHandler handles the run-ETL endpoint
type ETLHandler struct {
	runner Runner
	logger *slog.Logger
}

// NewETLHandler creates a new ETL handler
func NewETLHandler(runner Runner, logger *slog.Logger) *ETLHandler {
	return &ETLHandler{runner: runner, logger: logger}
}

// Register wires the handler's routes onto the Echo instance.
func (h *ETLHandler) Register(e *echo.Echo) {
	e.POST("/api/etl/process", h.HandleProcess)
}

// errorResponse is the failure payload shape.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleProcess runs the pipeline synchronously and reports its summary.
func (h *ETLHandler) HandleProcess(c echo.Context) error {
	result, err := h.runner.Run(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, locator.ErrDocumentNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{
				Code:    "DOCUMENT_NOT_FOUND",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrRunInProgress):
			return c.JSON(http.StatusConflict, errorResponse{
				Code:    "RUN_IN_PROGRESS",
				Message: err.Error(),
			})
		default:
			h.logger.Error("ETL run failed", slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Code:    "ETL_FAILED",
				Message: err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, result)
}
