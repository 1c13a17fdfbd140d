package domain

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusEscrowed  PaymentStatus = "escrowed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type EscrowCondition string

const (
	EscrowConditionNone           EscrowCondition = ""
	EscrowConditionArbiterRelease EscrowCondition = "arbiter-release"
)

// Payment is one transfer record. Instant payments are born Completed;
// escrow payments are born Escrowed and settle through release or refund.
// Records are never deleted.
type Payment struct {
	PaymentID       uint64
	Sender          string
	Recipient       string
	Amount          uint64
	Fee             uint64
	Status          PaymentStatus
	CreatedAt       uint64
	ExpiresAt       *uint64
	Memo            string
	EscrowCondition EscrowCondition
}

// Terminal reports whether the payment can no longer change state.
// Escrowed is the only live status.
func (p Payment) Terminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusRefunded:
		return true
	}
	return false
}
