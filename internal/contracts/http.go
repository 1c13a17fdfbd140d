package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

type WithdrawRequest struct {
	Amount uint64 `json:"amount"`
}

type CreatePaymentRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Memo      string `json:"memo,omitempty"`
}

type CreateEscrowRequest struct {
	Recipient string `json:"recipient"`
	Arbiter   string `json:"arbiter"`
	Amount    uint64 `json:"amount"`
	Deadline  uint64 `json:"deadline"`
	Memo      string `json:"memo,omitempty"`
}

type CreateSubscriptionRequest struct {
	Payee    string `json:"payee"`
	Amount   uint64 `json:"amount"`
	Interval uint64 `json:"interval"`
}

type SetFeeRateRequest struct {
	RateBps uint64 `json:"rate_bps"`
}

type SetMinPaymentRequest struct {
	MinAmount uint64 `json:"min_amount"`
}

type AdvanceClockRequest struct {
	Delta uint64 `json:"delta"`
}

type BalanceResponse struct {
	Account       string `json:"account"`
	Available     uint64 `json:"available"`
	Locked        uint64 `json:"locked"`
	TotalSent     uint64 `json:"total_sent"`
	TotalReceived uint64 `json:"total_received"`
}

type EscrowResponse struct {
	Arbiter         string `json:"arbiter"`
	Released        bool   `json:"released"`
	DisputeDeadline uint64 `json:"dispute_deadline"`
}

type PaymentResponse struct {
	PaymentID uint64          `json:"payment_id"`
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Amount    uint64          `json:"amount"`
	Fee       uint64          `json:"fee"`
	Status    string          `json:"status"`
	CreatedAt uint64          `json:"created_at"`
	ExpiresAt *uint64         `json:"expires_at,omitempty"`
	Memo      string          `json:"memo,omitempty"`
	Escrow    *EscrowResponse `json:"escrow,omitempty"`
}

type SubscriptionResponse struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Payer          string `json:"payer"`
	Payee          string `json:"payee"`
	Amount         uint64 `json:"amount"`
	Interval       uint64 `json:"interval"`
	LastPayment    uint64 `json:"last_payment"`
	Active         bool   `json:"active"`
	PaymentsMade   uint64 `json:"payments_made"`
}

type PlatformStatsResponse struct {
	FeeRateBps       uint64 `json:"fee_rate_bps"`
	MinPaymentAmount uint64 `json:"min_payment_amount"`
	TotalVolume      uint64 `json:"total_volume"`
	PaymentCounter   uint64 `json:"payment_counter"`
	LogicalClock     uint64 `json:"logical_clock"`
}

type FeeQuoteResponse struct {
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
}

type ClockResponse struct {
	LogicalClock uint64 `json:"logical_clock"`
}
