package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(logging.NewFromCore(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })
	e.GET("/boom", func(c echo.Context) error { return c.JSON(http.StatusInternalServerError, map[string]string{"error": "x"}) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(HeaderRequestID, "abc")
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("want 3 log lines, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, en := range entries {
		if en.Level != wantLevels[i] {
			t.Fatalf("entry %d level = %v, want %v", i, en.Level, wantLevels[i])
		}
	}
	ctx := entries[1].ContextMap()
	if ctx["status"] != int64(404) || ctx["route"] != "/missing" || ctx["request_id"] != "abc" {
		t.Fatalf("unexpected fields: %+v", ctx)
	}
}
