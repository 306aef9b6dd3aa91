package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// Check pings one dependency; nil means healthy.
type Check func(ctx context.Context) error

const checkTimeout = 2 * time.Second

type Handler struct {
	now    func() time.Time
	checks map[string]Check
}

func NewHandler(checks map[string]Check) *Handler {
	return &Handler{now: time.Now, checks: checks}
}

// Health answers 200 when every dependency responds, 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{
		"status": status,
		"time":   h.now().UTC().Format(time.RFC3339Nano),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	return c.JSON(code, body)
}
