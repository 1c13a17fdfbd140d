package postgres

import (
	"time"

	"github.com/google/uuid"
)

type balanceModel struct {
	Account       string `gorm:"column:account;primaryKey"`
	Available     uint64 `gorm:"column:available"`
	Locked        uint64 `gorm:"column:locked"`
	TotalSent     uint64 `gorm:"column:total_sent"`
	TotalReceived uint64 `gorm:"column:total_received"`
}

func (balanceModel) TableName() string { return "balances" }

type paymentModel struct {
	PaymentID       uint64  `gorm:"column:payment_id;primaryKey"`
	Sender          string  `gorm:"column:sender"`
	Recipient       string  `gorm:"column:recipient"`
	Amount          uint64  `gorm:"column:amount"`
	Fee             uint64  `gorm:"column:fee"`
	Status          string  `gorm:"column:status"`
	CreatedAt       uint64  `gorm:"column:created_at"`
	ExpiresAt       *uint64 `gorm:"column:expires_at"`
	Memo            string  `gorm:"column:memo"`
	EscrowCondition string  `gorm:"column:escrow_condition"`
}

func (paymentModel) TableName() string { return "payments" }

type escrowModel struct {
	PaymentID       uint64 `gorm:"column:payment_id;primaryKey"`
	Arbiter         string `gorm:"column:arbiter"`
	Released        bool   `gorm:"column:released"`
	DisputeDeadline uint64 `gorm:"column:dispute_deadline"`
}

func (escrowModel) TableName() string { return "escrows" }

type subscriptionModel struct {
	SubscriptionID uint64 `gorm:"column:subscription_id;primaryKey"`
	Payer          string `gorm:"column:payer"`
	Payee          string `gorm:"column:payee"`
	Amount         uint64 `gorm:"column:amount"`
	IntervalTicks  uint64 `gorm:"column:interval_ticks"`
	LastPayment    uint64 `gorm:"column:last_payment"`
	Active         bool   `gorm:"column:active"`
	PaymentsMade   uint64 `gorm:"column:payments_made"`
}

func (subscriptionModel) TableName() string { return "subscriptions" }

type platformModel struct {
	PlatformID       int16  `gorm:"column:platform_id;primaryKey"`
	FeeRateBps       uint64 `gorm:"column:fee_rate_bps"`
	MinPaymentAmount uint64 `gorm:"column:min_payment_amount"`
	TotalVolume      uint64 `gorm:"column:total_volume"`
	PaymentCounter   uint64 `gorm:"column:payment_counter"`
	LogicalClock     uint64 `gorm:"column:logical_clock"`
}

func (platformModel) TableName() string { return "platform" }

type outboxModel struct {
	OutboxID         uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType        string     `gorm:"column:event_type"`
	EventClass       string     `gorm:"column:event_class"`
	PartitionKey     string     `gorm:"column:partition_key"`
	PartitionKeyPath string     `gorm:"column:partition_key_path"`
	Payload          string     `gorm:"column:payload"`
	SchemaVersion    string     `gorm:"column:schema_version"`
	TraceID          string     `gorm:"column:trace_id"`
	RetryCount       int        `gorm:"column:retry_count"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	LastError        string     `gorm:"column:last_error"`
	LastErrorAt      *time.Time `gorm:"column:last_error_at"`
	FirstSeenAt      time.Time  `gorm:"column:first_seen_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "ledger_outbox" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (idempotencyModel) TableName() string { return "ledger_idempotency" }
