package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Balances:      &BalanceRepository{db: db},
		Payments:      &PaymentRepository{db: db},
		Escrows:       &EscrowRepository{db: db},
		Subscriptions: &SubscriptionRepository{db: db},
		Platform:      &PlatformRepository{db: db},
		Outbox:        &OutboxRepository{db: db},
		Idempotency:   &IdempotencyRepository{db: db},
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

// TxRunner rebinds the repositories to a gorm transaction so every write
// issued by the callback commits or rolls back together.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (t *TxRunner) WithinTx(ctx context.Context, fn func(ports.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx).Ports())
	})
}

type BalanceRepository struct {
	db *gorm.DB
}

func (r *BalanceRepository) Get(ctx context.Context, account string) (domain.Balance, error) {
	var row balanceModel
	err := r.db.WithContext(ctx).First(&row, "account = ?", account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Balance{Account: account}, nil
	}
	if err != nil {
		return domain.Balance{}, err
	}
	return toDomainBalance(row), nil
}

func (r *BalanceRepository) Save(ctx context.Context, balance domain.Balance) error {
	row := toBalanceModel(balance)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		UpdateAll: true,
	}).Create(&row).Error
}

type PaymentRepository struct {
	db *gorm.DB
}

func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) error {
	row := toPaymentModel(payment)
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *PaymentRepository) Get(ctx context.Context, paymentID uint64) (domain.Payment, error) {
	var row paymentModel
	err := r.db.WithContext(ctx).First(&row, "payment_id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}
	return toDomainPayment(row), nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment domain.Payment) error {
	row := toPaymentModel(payment)
	res := r.db.WithContext(ctx).Model(&paymentModel{}).
		Where("payment_id = ?", payment.PaymentID).
		Select("*").Omit("payment_id").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

type EscrowRepository struct {
	db *gorm.DB
}

func (r *EscrowRepository) Create(ctx context.Context, escrow domain.Escrow) error {
	row := toEscrowModel(escrow)
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *EscrowRepository) Get(ctx context.Context, paymentID uint64) (domain.Escrow, error) {
	var row escrowModel
	err := r.db.WithContext(ctx).First(&row, "payment_id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Escrow{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Escrow{}, err
	}
	return toDomainEscrow(row), nil
}

func (r *EscrowRepository) Update(ctx context.Context, escrow domain.Escrow) error {
	row := toEscrowModel(escrow)
	res := r.db.WithContext(ctx).Model(&escrowModel{}).
		Where("payment_id = ?", escrow.PaymentID).
		Select("*").Omit("payment_id").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) error {
	row := toSubscriptionModel(subscription)
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *SubscriptionRepository) Get(ctx context.Context, subscriptionID uint64) (domain.Subscription, error) {
	var row subscriptionModel
	err := r.db.WithContext(ctx).First(&row, "subscription_id = ?", subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Subscription{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Subscription{}, err
	}
	return toDomainSubscription(row), nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	row := toSubscriptionModel(subscription)
	res := r.db.WithContext(ctx).Model(&subscriptionModel{}).
		Where("subscription_id = ?", subscription.SubscriptionID).
		Select("*").Omit("subscription_id").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// PlatformRepository reads and writes the single config-and-stats row.
// Get fails until bootstrap has seeded it; reads never create state.
type PlatformRepository struct {
	db *gorm.DB
}

func (r *PlatformRepository) Get(ctx context.Context) (domain.Platform, error) {
	var row platformModel
	err := r.db.WithContext(ctx).First(&row, "platform_id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Platform{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Platform{}, err
	}
	return toDomainPlatform(row), nil
}

func (r *PlatformRepository) Save(ctx context.Context, platform domain.Platform) error {
	row := toPlatformModel(platform)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

type OutboxRepository struct {
	db *gorm.DB
}

func (r *OutboxRepository) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	now := time.Now().UTC()
	row := outboxModel{
		OutboxID:         event.EventID,
		EventType:        event.EventType,
		EventClass:       event.EventClass,
		PartitionKey:     event.PartitionKey,
		PartitionKeyPath: event.PartitionKeyPath,
		Payload:          string(event.Payload),
		SchemaVersion:    event.SchemaVersion,
		TraceID:          event.TraceID,
		FirstSeenAt:      event.OccurredAt,
		CreatedAt:        now,
	}
	if row.FirstSeenAt.IsZero() {
		row.FirstSeenAt = now
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.OutboxRecord{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      []byte(row.Payload),
			RetryCount:   row.RetryCount,
			PublishedAt:  row.PublishedAt,
			LastError:    row.LastError,
			LastErrorAt:  row.LastErrorAt,
			FirstSeenAt:  row.FirstSeenAt,
		})
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Update("published_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type IdempotencyRepository struct {
	db *gorm.DB
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).First(&row, "idempotency_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if now.After(row.ExpiresAt) {
		return nil, nil
	}
	record := ports.IdempotencyRecord{
		Key:          row.IdempotencyKey,
		RequestHash:  row.RequestHash,
		ResponseCode: row.ResponseCode,
		ExpiresAt:    row.ExpiresAt,
	}
	if row.ResponseBody != nil {
		record.ResponseBody = []byte(*row.ResponseBody)
	}
	return &record, nil
}

func (r *IdempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	now := time.Now().UTC()
	row := idempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Status:         "reserved",
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// Expired keys are reclaimable in place; a live key stays owned by
	// the first request that reserved it.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "idempotency_key"}},
		Where:   clause.Where{Exprs: []clause.Expression{gorm.Expr("ledger_idempotency.expires_at < ?", now)}},
		DoUpdates: clause.Assignments(map[string]any{
			"request_hash":  requestHash,
			"status":        "reserved",
			"response_code": 0,
			"response_body": nil,
			"expires_at":    expiresAt,
			"updated_at":    now,
		}),
	}).Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	body := string(responseBody)
	res := r.db.WithContext(ctx).Model(&idempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        "completed",
			"response_code": responseCode,
			"response_body": body,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
