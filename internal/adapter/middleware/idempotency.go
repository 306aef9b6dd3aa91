package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderOwnerID   = "Ax-Owner-Id"
	// set on responses served from the store
	HeaderReplayed = "Ax-Idempotent-Replay"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// IdempotencyMiddleware guards mutating routes. The key is method + route +
// owner + request id. Only 2xx responses are kept for replay; any other
// outcome releases the key so the caller may retry with the same request id.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log logging.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("idempotency")
	store := newIdempStore(rdb)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			now := time.Now().UTC()
			meta, err := readRequestMeta(req.Header, now)
			if err != nil {
				return badRequest(c, err.Error())
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := fingerprint(body)

			key := store.key(req.Method, c.Path(), meta.OwnerID, meta.ID)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			ok, err := store.reserve(ctx, key, idempEntry{
				BodySHA256:  bhash,
				RequestID:   meta.ID,
				RequestAtMS: meta.At.UnixMilli(),
				CreatedAt:   now,
			})
			if err != nil {
				log.Error("idempotency store unavailable", logging.String("key", key), logging.Err(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				cur, errLoad := store.load(ctx, key)
				if errLoad != nil {
					log.Warn("idempotency entry unreadable", logging.String("key", key), logging.Err(errLoad))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if cur.replayable() {
					c.Response().Header().Set(HeaderReplayed, "true")
					ct := cur.ContentType
					if ct == "" {
						ct = echo.MIMEApplicationJSON
					}
					return c.Blob(cur.Code, ct, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request ctx may already be done; the store write must not be
			storeCtx, storeCancel := context.WithTimeout(context.Background(), storeTimeout)
			defer storeCancel()

			if rec.code < 200 || rec.code >= 300 {
				if err := store.release(storeCtx, key); err != nil {
					log.Warn("idempotency release failed", logging.String("key", key), logging.Err(err))
				}
				return nil
			}
			final := idempEntry{
				Code:        rec.code,
				ContentType: rec.Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   meta.ID,
				RequestAtMS: meta.At.UnixMilli(),
				CreatedAt:   time.Now().UTC(),
			}
			if err := store.commit(storeCtx, key, final, ttl); err != nil {
				log.Warn("idempotency save failed", logging.String("key", key), logging.Err(err))
			}
			return nil
		}
	}
}
