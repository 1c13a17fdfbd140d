package application

import (
	"sync"
	"time"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

type Config struct {
	ServiceName string
	// AdminAccount is compared against the caller on every privileged
	// operation. Set at initialization, never defaulted to a real id.
	AdminAccount    string
	IdempotencyTTL  time.Duration
	BalanceCacheTTL time.Duration
}

// Actor is the authenticated caller. Account is the opaque identifier
// asserted by the identity layer; the ledger never inspects its shape.
type Actor struct {
	Account        string
	RequestID      string
	IdempotencyKey string
}

type DepositInput struct {
	Amount uint64
}

type WithdrawInput struct {
	Amount uint64
}

type CreatePaymentInput struct {
	Recipient string
	Amount    uint64
	Memo      string
}

type CreateEscrowInput struct {
	Recipient string
	Arbiter   string
	Amount    uint64
	Deadline  uint64
	Memo      string
}

type CreateSubscriptionInput struct {
	Payee    string
	Amount   uint64
	Interval uint64
}

// Service owns the four ledger maps and the platform record. The mutex
// serializes operations into the total order the state machine assumes;
// there is no finer-grained locking because no operation suspends.
type Service struct {
	cfg   Config
	mu    sync.Mutex
	repos ports.Repositories
	tx    ports.TxRunner
	cache ports.Cache
	nowFn func() time.Time
}

type Dependencies struct {
	Config        Config
	Balances      ports.BalanceRepository
	Payments      ports.PaymentRepository
	Escrows       ports.EscrowRepository
	Subscriptions ports.SubscriptionRepository
	Platform      ports.PlatformRepository
	Outbox        ports.OutboxRepository
	Idempotency   ports.IdempotencyRepository
	Tx            ports.TxRunner
	Cache         ports.Cache
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M15-Payments-Ledger-Service"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.BalanceCacheTTL <= 0 {
		cfg.BalanceCacheTTL = 30 * time.Second
	}
	return &Service{
		cfg: cfg,
		repos: ports.Repositories{
			Balances:      deps.Balances,
			Payments:      deps.Payments,
			Escrows:       deps.Escrows,
			Subscriptions: deps.Subscriptions,
			Platform:      deps.Platform,
			Outbox:        deps.Outbox,
			Idempotency:   deps.Idempotency,
		},
		tx:    deps.Tx,
		cache: deps.Cache,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}
