package application

import (
	"context"
	"strings"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

// Deposit credits the caller's available funds. The settlement asset is
// presumed already in custody; this records the ledger side of the move.
func (s *Service) Deposit(ctx context.Context, actor Actor, input DepositInput) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Balance{}, domain.ErrUnauthorized
	}
	if input.Amount == 0 {
		return domain.Balance{}, domain.ErrInvalidAmount
	}
	requestHash := hashPayload(input)
	if cached, ok, err := replayIdempotent[domain.Balance](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Balance{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Balance{}, err
	}

	balance, err := s.repos.Balances.Get(ctx, actor.Account)
	if err != nil {
		return domain.Balance{}, err
	}
	balance.Available += input.Amount

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, balance); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventDepositReceived, actor.RequestID, contracts.DepositReceivedPayload{
			Account:   actor.Account,
			Amount:    input.Amount,
			Available: balance.Available,
		}, actor.Account)
	})
	if err != nil {
		return domain.Balance{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(actor.Account))
	s.completeIdempotency(ctx, actor.IdempotencyKey, 200, balance)
	return balance, nil
}

// Withdraw debits the caller's available funds and hands the amount back
// to the external transfer primitive. Custody release is atomic with the
// balance mutation at this boundary.
func (s *Service) Withdraw(ctx context.Context, actor Actor, input WithdrawInput) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Balance{}, domain.ErrUnauthorized
	}
	if input.Amount == 0 {
		return domain.Balance{}, domain.ErrInvalidAmount
	}
	requestHash := hashPayload(input)
	if cached, ok, err := replayIdempotent[domain.Balance](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Balance{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Balance{}, err
	}

	balance, err := s.repos.Balances.Get(ctx, actor.Account)
	if err != nil {
		return domain.Balance{}, err
	}
	if balance.Available < input.Amount {
		return domain.Balance{}, domain.ErrInsufficientBalance
	}
	balance.Available -= input.Amount

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, balance); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventWithdrawalProcessed, actor.RequestID, contracts.WithdrawalProcessedPayload{
			Account:   actor.Account,
			Amount:    input.Amount,
			Available: balance.Available,
		}, actor.Account)
	})
	if err != nil {
		return domain.Balance{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(actor.Account))
	s.completeIdempotency(ctx, actor.IdempotencyKey, 200, balance)
	return balance, nil
}

// CreatePayment settles an instant transfer: the sender pays principal
// plus fee, the recipient receives the principal, the fee is retained by
// the custodian and credited to nobody.
func (s *Service) CreatePayment(ctx context.Context, actor Actor, input CreatePaymentInput) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	input.Recipient = strings.TrimSpace(input.Recipient)
	if input.Recipient == "" || input.Recipient == actor.Account {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	if input.Amount == 0 || input.Amount < platform.MinPaymentAmount {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	fee := platform.Fee(input.Amount)
	total := input.Amount + fee
	if total < input.Amount {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	requestHash := hashPayload(input)
	if cached, ok, err := replayIdempotent[domain.Payment](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Payment{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Payment{}, err
	}

	sender, err := s.repos.Balances.Get(ctx, actor.Account)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := sender.Debit(total); err != nil {
		return domain.Payment{}, err
	}
	recipient, err := s.repos.Balances.Get(ctx, input.Recipient)
	if err != nil {
		return domain.Payment{}, err
	}
	recipient.Credit(input.Amount)

	payment := domain.Payment{
		PaymentID: platform.NextID(),
		Sender:    actor.Account,
		Recipient: input.Recipient,
		Amount:    input.Amount,
		Fee:       fee,
		Status:    domain.PaymentStatusCompleted,
		CreatedAt: platform.LogicalClock,
		Memo:      input.Memo,
	}
	platform.TotalVolume += input.Amount

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, sender); err != nil {
			return err
		}
		if err := r.Balances.Save(ctx, recipient); err != nil {
			return err
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := r.Platform.Save(ctx, platform); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventPaymentCompleted, actor.RequestID, contracts.PaymentCompletedPayload{
			PaymentID:   payment.PaymentID,
			Sender:      payment.Sender,
			Recipient:   payment.Recipient,
			Amount:      payment.Amount,
			Fee:         payment.Fee,
			CompletedAt: payment.CreatedAt,
		}, paymentPartitionKey(payment.PaymentID))
	})
	if err != nil {
		return domain.Payment{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(payment.Sender), balanceCacheKey(payment.Recipient), statsCacheKey)
	s.completeIdempotency(ctx, actor.IdempotencyKey, 200, payment)
	return payment, nil
}
