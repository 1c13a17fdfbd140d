// Package memory backs the repository ports with in-process maps. It is
// the default store when no database is configured and the fixture for
// unit tests; behavior matches the postgres adapter row for row.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

type Repositories struct {
	Balances      *BalanceRepository
	Payments      *PaymentRepository
	Escrows       *EscrowRepository
	Subscriptions *SubscriptionRepository
	Platform      *PlatformRepository
	Outbox        *OutboxRepository
	Idempotency   *IdempotencyRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Balances:      &BalanceRepository{rows: map[string]domain.Balance{}},
		Payments:      &PaymentRepository{rows: map[uint64]domain.Payment{}},
		Escrows:       &EscrowRepository{rows: map[uint64]domain.Escrow{}},
		Subscriptions: &SubscriptionRepository{rows: map[uint64]domain.Subscription{}},
		Platform:      &PlatformRepository{},
		Outbox:        &OutboxRepository{rows: map[uuid.UUID]ports.OutboxRecord{}},
		Idempotency:   &IdempotencyRepository{rows: map[string]ports.IdempotencyRecord{}},
	}
}

func (r *Repositories) Ports() ports.Repositories {
	return ports.Repositories{
		Balances:      r.Balances,
		Payments:      r.Payments,
		Escrows:       r.Escrows,
		Subscriptions: r.Subscriptions,
		Platform:      r.Platform,
		Outbox:        r.Outbox,
		Idempotency:   r.Idempotency,
	}
}

// TxRunner passes the live repositories straight through: in-memory
// writes cannot fail after validation, so a separate commit phase buys
// nothing here. The postgres adapter is where rollback earns its keep.
type TxRunner struct {
	repos ports.Repositories
}

func NewTxRunner(repos *Repositories) *TxRunner {
	return &TxRunner{repos: repos.Ports()}
}

func (t *TxRunner) WithinTx(_ context.Context, fn func(ports.Repositories) error) error {
	return fn(t.repos)
}

type BalanceRepository struct {
	mu   sync.Mutex
	rows map[string]domain.Balance
}

func (r *BalanceRepository) Get(_ context.Context, account string) (domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[account]
	if !ok {
		return domain.Balance{Account: account}, nil
	}
	return row, nil
}

func (r *BalanceRepository) Save(_ context.Context, balance domain.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[balance.Account] = balance
	return nil
}

type PaymentRepository struct {
	mu   sync.Mutex
	rows map[uint64]domain.Payment
}

func (r *PaymentRepository) Create(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[payment.PaymentID]; ok {
		return domain.ErrConflict
	}
	r.rows[payment.PaymentID] = payment
	return nil
}

func (r *PaymentRepository) Get(_ context.Context, paymentID uint64) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[paymentID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return row, nil
}

func (r *PaymentRepository) Update(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[payment.PaymentID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.rows[payment.PaymentID] = payment
	return nil
}

type EscrowRepository struct {
	mu   sync.Mutex
	rows map[uint64]domain.Escrow
}

func (r *EscrowRepository) Create(_ context.Context, escrow domain.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[escrow.PaymentID]; ok {
		return domain.ErrConflict
	}
	r.rows[escrow.PaymentID] = escrow
	return nil
}

func (r *EscrowRepository) Get(_ context.Context, paymentID uint64) (domain.Escrow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[paymentID]
	if !ok {
		return domain.Escrow{}, domain.ErrPaymentNotFound
	}
	return row, nil
}

func (r *EscrowRepository) Update(_ context.Context, escrow domain.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[escrow.PaymentID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.rows[escrow.PaymentID] = escrow
	return nil
}

type SubscriptionRepository struct {
	mu   sync.Mutex
	rows map[uint64]domain.Subscription
}

func (r *SubscriptionRepository) Create(_ context.Context, subscription domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[subscription.SubscriptionID]; ok {
		return domain.ErrConflict
	}
	r.rows[subscription.SubscriptionID] = subscription
	return nil
}

func (r *SubscriptionRepository) Get(_ context.Context, subscriptionID uint64) (domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[subscriptionID]
	if !ok {
		return domain.Subscription{}, domain.ErrPaymentNotFound
	}
	return row, nil
}

func (r *SubscriptionRepository) Update(_ context.Context, subscription domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[subscription.SubscriptionID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.rows[subscription.SubscriptionID] = subscription
	return nil
}

type PlatformRepository struct {
	mu     sync.Mutex
	seeded bool
	row    domain.Platform
}

// Get errors until the singleton has been seeded once; initialization is
// explicit, never implied by a read.
func (r *PlatformRepository) Get(_ context.Context) (domain.Platform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.seeded {
		return domain.Platform{}, domain.ErrNotFound
	}
	return r.row, nil
}

func (r *PlatformRepository) Save(_ context.Context, platform domain.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeded = true
	r.row = platform
	return nil
}

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]ports.OutboxRecord
	order []uuid.UUID
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[event.EventID]; ok {
		return domain.ErrConflict
	}
	r.rows[event.EventID] = ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		FirstSeenAt:  event.OccurredAt,
	}
	r.order = append(r.order, event.EventID)
	return nil
}

func (r *OutboxRepository) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		row, ok := r.rows[id]
		if !ok || row.PublishedAt != nil {
			continue
		}
		out = append(out, row)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok {
		return domain.ErrNotFound
	}
	row.PublishedAt = &at
	r.rows[outboxID] = row
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok {
		return domain.ErrNotFound
	}
	row.RetryCount++
	row.LastError = errMsg
	row.LastErrorAt = &at
	r.rows[outboxID] = row
	return nil
}

type IdempotencyRepository struct {
	mu   sync.Mutex
	rows map[string]ports.IdempotencyRecord
}

func (r *IdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	if now.After(row.ExpiresAt) {
		delete(r.rows, key)
		return nil, nil
	}
	c := row
	c.ResponseBody = append([]byte(nil), row.ResponseBody...)
	return &c, nil
}

func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[key]; ok && time.Now().UTC().Before(row.ExpiresAt) {
		return domain.ErrConflict
	}
	r.rows[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return domain.ErrNotFound
	}
	row.ResponseCode = responseCode
	row.ResponseBody = append([]byte(nil), responseBody...)
	r.rows[key] = row
	return nil
}
