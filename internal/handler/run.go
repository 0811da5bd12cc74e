package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-allocation/internal/rules"
	"github.com/iliyamo/ticket-allocation/internal/runner"
)

// RunHandler exposes the run-control endpoints of the dashboard: start,
// continue, stop, plus the status/progress/logs/results polls. All
// mutating routes sit behind the operator JWT.
type RunHandler struct {
	Runner *runner.Runner
}

func NewRunHandler(r *runner.Runner) *RunHandler {
	return &RunHandler{Runner: r}
}

// Start launches a fresh run from the top of the backlog. A 409 is
// returned when a run is already executing, a 422 when the rule files
// fail to load.
func (h *RunHandler) Start(c echo.Context) error {
	return h.launch(c, false)
}

// Continue resumes after the last checkpointed order.
func (h *RunHandler) Continue(c echo.Context) error {
	return h.launch(c, true)
}

func (h *RunHandler) launch(c echo.Context, resume bool) error {
	err := h.Runner.Start(resume)
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, echo.Map{"status": "started", "resume": resume})
	case errors.Is(err, runner.ErrRunInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, rules.ErrConfig):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

// Stop requests cancellation of the in-flight run. The run halts before
// the next order; stopping an idle runner is a no-op.
func (h *RunHandler) Stop(c echo.Context) error {
	h.Runner.Stop()
	return c.JSON(http.StatusOK, echo.Map{"status": "stop requested"})
}

// Status reports whether a run is executing and summarizes the last
// finished run.
func (h *RunHandler) Status(c echo.Context) error {
	running, last, lastErr := h.Runner.Status()
	resp := echo.Map{"running": running}
	if last != nil {
		resp["last_run"] = echo.Map{
			"total":      last.Total,
			"assigned":   last.Assigned,
			"processed":  len(last.Results),
			"next_index": last.NextIndex,
			"stopped":    last.Stopped,
		}
	}
	if lastErr != nil {
		resp["last_error"] = lastErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// Progress returns the checkpointed cursor of the current or previous
// run.
func (h *RunHandler) Progress(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, ok, err := h.Runner.Progress(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"progress": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"progress": p})
}

// Logs drains the buffered run log lines accumulated since the last
// poll.
func (h *RunHandler) Logs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"logs": h.Runner.DrainLogs()})
}

// Results returns the per-order outcomes of the last run.
func (h *RunHandler) Results(c echo.Context) error {
	_, last, _ := h.Runner.Status()
	if last == nil {
		return c.JSON(http.StatusOK, echo.Map{"results": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": last.Results})
}
