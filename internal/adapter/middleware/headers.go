package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assetfin-backend/pkg/id"

	"github.com/google/uuid"
)

// requestMeta is what the idempotency headers identify: who sent which request when.
type requestMeta struct {
	ID      string
	At      time.Time
	OwnerID string
}

// readRequestMeta validates the three idempotency headers against now.
func readRequestMeta(h http.Header, now time.Time) (requestMeta, error) {
	var m requestMeta

	m.ID = strings.ToLower(strings.TrimSpace(h.Get(HeaderRequestID)))
	if m.ID == "" {
		return m, errors.New("missing " + HeaderRequestID)
	}
	if !validRequestID(m.ID) {
		return m, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return m, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, errors.New(HeaderRequestAt + " too skewed")
	}
	m.At = at

	m.OwnerID = strings.TrimSpace(h.Get(HeaderOwnerID))
	if m.OwnerID == "" {
		return m, errors.New("missing " + HeaderOwnerID)
	}
	if !id.Valid(m.OwnerID) {
		return m, errors.New("invalid " + HeaderOwnerID)
	}
	return m, nil
}

// validRequestID accepts a dashed v4 uuid or the 32-hex id form.
func validRequestID(s string) bool {
	if id.Valid(s) {
		return true
	}
	u, err := uuid.Parse(s)
	return err == nil && len(s) == 36 && u.Version() == 4
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// a zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be epoch (s/ms) or RFC3339 with timezone", HeaderRequestAt)
	}
	return t.UTC(), nil
}
