package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

// BalanceRepository stores one row per account that has ever transacted.
// Get returns a zero-valued Balance (with Account set) for unknown
// accounts instead of an error; the map's domain stays equal to accounts
// with history.
type BalanceRepository interface {
	Get(ctx context.Context, account string) (domain.Balance, error)
	Save(ctx context.Context, balance domain.Balance) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) error
	Get(ctx context.Context, paymentID uint64) (domain.Payment, error)
	Update(ctx context.Context, payment domain.Payment) error
}

type EscrowRepository interface {
	Create(ctx context.Context, escrow domain.Escrow) error
	Get(ctx context.Context, paymentID uint64) (domain.Escrow, error)
	Update(ctx context.Context, escrow domain.Escrow) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription domain.Subscription) error
	Get(ctx context.Context, subscriptionID uint64) (domain.Subscription, error)
	Update(ctx context.Context, subscription domain.Subscription) error
}

// PlatformRepository holds the singleton config-and-stats record.
type PlatformRepository interface {
	Get(ctx context.Context) (domain.Platform, error)
	Save(ctx context.Context, platform domain.Platform) error
}

type OutboxEvent struct {
	EventID          uuid.UUID
	EventType        string
	EventClass       string
	PartitionKey     string
	PartitionKeyPath string
	Payload          []byte
	SchemaVersion    string
	TraceID          string
	OccurredAt       time.Time
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}

// Repositories bundles the stores one ledger operation touches. TxRunner
// hands the application a transaction-scoped bundle so an operation's
// writes commit or roll back as one unit.
type Repositories struct {
	Balances      BalanceRepository
	Payments      PaymentRepository
	Escrows       EscrowRepository
	Subscriptions SubscriptionRepository
	Platform      PlatformRepository
	Outbox        OutboxRepository
	Idempotency   IdempotencyRepository
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
