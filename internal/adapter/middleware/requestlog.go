package middleware

import (
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []logging.Field{
				logging.String("method", req.Method),
				logging.String("route", c.Path()),
				logging.String("uri", req.RequestURI),
				logging.Int("status", res.Status),
				logging.Int64("bytes", res.Size),
				logging.Duration("took", time.Since(start)),
			}
			if id := req.Header.Get(HeaderRequestID); id != "" {
				fields = append(fields, logging.String("request_id", id))
			}
			switch {
			case res.Status >= 500:
				log.Error("request", append(fields, logging.Err(err))...)
			case res.Status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
