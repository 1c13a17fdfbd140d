package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type DepositReceivedPayload struct {
	Account   string `json:"account"`
	Amount    uint64 `json:"amount"`
	Available uint64 `json:"available"`
}

type WithdrawalProcessedPayload struct {
	Account   string `json:"account"`
	Amount    uint64 `json:"amount"`
	Available uint64 `json:"available"`
}

type PaymentCompletedPayload struct {
	PaymentID   uint64 `json:"payment_id"`
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Amount      uint64 `json:"amount"`
	Fee         uint64 `json:"fee"`
	CompletedAt uint64 `json:"completed_at"`
}

type EscrowCreatedPayload struct {
	PaymentID uint64 `json:"payment_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Arbiter   string `json:"arbiter"`
	Amount    uint64 `json:"amount"`
	Fee       uint64 `json:"fee"`
	Deadline  uint64 `json:"deadline"`
}

type EscrowReleasedPayload struct {
	PaymentID  uint64 `json:"payment_id"`
	ReleasedBy string `json:"released_by"`
	Amount     uint64 `json:"amount"`
}

type EscrowRefundedPayload struct {
	PaymentID uint64 `json:"payment_id"`
	Amount    uint64 `json:"amount"`
}

type SubscriptionCreatedPayload struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Payer          string `json:"payer"`
	Payee          string `json:"payee"`
	Amount         uint64 `json:"amount"`
	Interval       uint64 `json:"interval"`
}

type SubscriptionChargedPayload struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Amount         uint64 `json:"amount"`
	Fee            uint64 `json:"fee"`
	PaymentsMade   uint64 `json:"payments_made"`
	ChargedAt      uint64 `json:"charged_at"`
}

type SubscriptionCanceledPayload struct {
	SubscriptionID uint64 `json:"subscription_id"`
	CanceledAt     uint64 `json:"canceled_at"`
}
