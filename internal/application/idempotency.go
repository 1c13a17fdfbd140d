package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func hashPayload(v any) string {
	b, _ := json.Marshal(v)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// replayIdempotent returns the cached response for a completed request
// with the same key and hash. A key reuse with a different payload is a
// conflict; a reserved-but-incomplete record replays nothing.
func replayIdempotent[T any](ctx context.Context, s *Service, key, requestHash string) (T, bool, error) {
	var out T
	if s.repos.Idempotency == nil || strings.TrimSpace(key) == "" {
		return out, false, nil
	}
	rec, err := s.repos.Idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return out, false, err
	}
	if rec.RequestHash != requestHash {
		return out, false, domain.ErrIdempotencyConflict
	}
	if len(rec.ResponseBody) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(rec.ResponseBody, &out); err != nil {
		return out, false, nil
	}
	return out, true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	if s.repos.Idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	err := s.repos.Idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if errors.Is(err, domain.ErrConflict) {
		return domain.ErrIdempotencyConflict
	}
	return err
}

func (s *Service) completeIdempotency(ctx context.Context, key string, responseCode int, payload any) {
	if s.repos.Idempotency == nil || strings.TrimSpace(key) == "" {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.repos.Idempotency.Complete(ctx, key, responseCode, b, s.nowFn())
}
