package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "assetfin:idemp:"

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// replayable entries are finished and carry a body to send back
func (e idempEntry) replayable() bool { return !e.InProgress && e.Code != 0 && len(e.Body) > 0 }

func fingerprint(body []byte) string {
	s := sha256.Sum256(body)
	return hex.EncodeToString(s[:])
}

// idempStore keeps one entry per key: a short-lived in-progress marker taken
// with SETNX, later replaced by the final response or deleted.
type idempStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

func newIdempStore(rdb *redis.Client) *idempStore {
	return &idempStore{rdb: rdb, lockTTL: provisionalLockTTL}
}

// keys are scoped per owner so two owners can reuse a request id
func (s *idempStore) key(method, route, ownerID, requestID string) string {
	return keyPrefix + strings.ToLower(method) + ":" + route + ":" + ownerID + ":" + requestID
}

// reserve returns false when the key is already held.
func (s *idempStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	e.InProgress = true
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

func (s *idempStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("idempotency: decode %s: %w", key, err)
	}
	return e, nil
}

func (s *idempStore) commit(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	e.InProgress = false
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s *idempStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
