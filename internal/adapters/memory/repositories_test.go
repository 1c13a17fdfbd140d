package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

func TestBalanceRepository_UnknownAccountReadsZero(t *testing.T) {
	repos := NewRepositories()
	balance, err := repos.Balances.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if balance.Account != "ghost" || balance.Available != 0 {
		t.Fatalf("unexpected balance: %+v", balance)
	}
}

func TestPlatformRepository_RequiresSeeding(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	if _, err := repos.Platform.Get(ctx); err != domain.ErrNotFound {
		t.Fatalf("unseeded get: got %v", err)
	}
	if err := repos.Platform.Save(ctx, domain.Platform{FeeRateBps: 25}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	platform, err := repos.Platform.Get(ctx)
	if err != nil {
		t.Fatalf("Get after seed: %v", err)
	}
	if platform.FeeRateBps != 25 {
		t.Fatalf("platform: %+v", platform)
	}
}

func TestOutboxRepository_PreservesEnqueueOrder(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()
	for i, id := range []uuid.UUID{first, second} {
		err := repos.Outbox.Enqueue(ctx, ports.OutboxEvent{
			EventID:      id,
			EventType:    domain.EventPaymentCompleted,
			PartitionKey: "1",
			Payload:      []byte(`{}`),
			OccurredAt:   time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	rows, err := repos.Outbox.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnpublished error: %v", err)
	}
	if len(rows) != 2 || rows[0].OutboxID != first || rows[1].OutboxID != second {
		t.Fatalf("order not preserved: %+v", rows)
	}
	if err := repos.Outbox.MarkPublished(ctx, first, time.Now().UTC()); err != nil {
		t.Fatalf("MarkPublished error: %v", err)
	}
	rows, _ = repos.Outbox.FetchUnpublished(ctx, 10)
	if len(rows) != 1 || rows[0].OutboxID != second {
		t.Fatalf("published row still fetched: %+v", rows)
	}
}

func TestIdempotencyRepository_ExpiryReclaimsKey(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repos.Idempotency.Reserve(ctx, "key-1", "hash-a", now.Add(time.Hour)); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if err := repos.Idempotency.Reserve(ctx, "key-1", "hash-b", now.Add(time.Hour)); err != domain.ErrConflict {
		t.Fatalf("live key re-reserved: got %v", err)
	}
	if err := repos.Idempotency.Complete(ctx, "key-1", 200, []byte(`{"ok":true}`), now); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	rec, err := repos.Idempotency.Get(ctx, "key-1", now)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil || rec.ResponseCode != 200 || string(rec.ResponseBody) != `{"ok":true}` {
		t.Fatalf("record: %+v", rec)
	}
	// Past the TTL the key reads as absent.
	rec, err = repos.Idempotency.Get(ctx, "key-1", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if rec != nil {
		t.Fatalf("expired record returned: %+v", rec)
	}
}
