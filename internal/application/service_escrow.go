package application

import (
	"context"
	"strings"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

// CreateEscrowPayment locks principal plus fee against the sender and
// records an Escrowed payment with its arbitration row. Nothing settles
// and no volume is counted until release.
func (s *Service) CreateEscrowPayment(ctx context.Context, actor Actor, input CreateEscrowInput) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	input.Recipient = strings.TrimSpace(input.Recipient)
	input.Arbiter = strings.TrimSpace(input.Arbiter)
	if input.Recipient == "" || input.Arbiter == "" || input.Recipient == actor.Account {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	// Check order is load-bearing: amount floor, then deadline, then
	// balance. Callers distinguish failures by which error comes first.
	if input.Amount == 0 || input.Amount < platform.MinPaymentAmount {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if input.Deadline <= platform.LogicalClock {
		return domain.Payment{}, domain.ErrPaymentExpired
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
	if err := sender.Lock(total); err != nil {
		return domain.Payment{}, err
	}

	deadline := input.Deadline
	payment := domain.Payment{
		PaymentID:       platform.NextID(),
		Sender:          actor.Account,
		Recipient:       input.Recipient,
		Amount:          input.Amount,
		Fee:             fee,
		Status:          domain.PaymentStatusEscrowed,
		CreatedAt:       platform.LogicalClock,
		ExpiresAt:       &deadline,
		Memo:            input.Memo,
		EscrowCondition: domain.EscrowConditionArbiterRelease,
	}
	escrow := domain.Escrow{
		PaymentID:       payment.PaymentID,
		Arbiter:         input.Arbiter,
		Released:        false,
		DisputeDeadline: deadline,
	}

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, sender); err != nil {
			return err
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := r.Escrows.Create(ctx, escrow); err != nil {
			return err
		}
		if err := r.Platform.Save(ctx, platform); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventEscrowCreated, actor.RequestID, contracts.EscrowCreatedPayload{
			PaymentID: payment.PaymentID,
			Sender:    payment.Sender,
			Recipient: payment.Recipient,
			Arbiter:   escrow.Arbiter,
			Amount:    payment.Amount,
			Fee:       payment.Fee,
			Deadline:  escrow.DisputeDeadline,
		}, paymentPartitionKey(payment.PaymentID))
	})
	if err != nil {
		return domain.Payment{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(payment.Sender))
	s.completeIdempotency(ctx, actor.IdempotencyKey, 200, payment)
	return payment, nil
}

// ReleaseEscrow settles an escrowed payment. Any of sender, recipient or
// arbiter may release. The recipient receives the principal; the locked
// principal-plus-fee is consumed, so the fee leaves circulation exactly
// as on the instant path.
func (s *Service) ReleaseEscrow(ctx context.Context, actor Actor, paymentID uint64) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	payment, err := s.repos.Payments.Get(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	escrow, err := s.repos.Escrows.Get(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if !escrow.MayRelease(actor.Account, payment) {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	if payment.Status != domain.PaymentStatusEscrowed || escrow.Released {
		return domain.Payment{}, domain.ErrPaymentAlreadyCompleted
	}

	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	sender, err := s.repos.Balances.Get(ctx, payment.Sender)
	if err != nil {
		return domain.Payment{}, err
	}
	recipient, err := s.repos.Balances.Get(ctx, payment.Recipient)
	if err != nil {
		return domain.Payment{}, err
	}

	total := payment.Amount + payment.Fee
	if err := sender.ConsumeLocked(total); err != nil {
		return domain.Payment{}, err
	}
	// Only the principal counts toward the sender's lifetime sent total;
	// the consumed fee was never a transfer to anyone.
	sender.TotalSent += payment.Amount
	recipient.Credit(payment.Amount)
	payment.Status = domain.PaymentStatusCompleted
	escrow.Released = true
	platform.TotalVolume += payment.Amount

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, sender); err != nil {
			return err
		}
		if err := r.Balances.Save(ctx, recipient); err != nil {
			return err
		}
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		if err := r.Escrows.Update(ctx, escrow); err != nil {
			return err
		}
		if err := r.Platform.Save(ctx, platform); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventEscrowReleased, actor.RequestID, contracts.EscrowReleasedPayload{
			PaymentID:  payment.PaymentID,
			ReleasedBy: actor.Account,
			Amount:     payment.Amount,
		}, paymentPartitionKey(payment.PaymentID))
	})
	if err != nil {
		return domain.Payment{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(payment.Sender), balanceCacheKey(payment.Recipient), statsCacheKey)
	return payment, nil
}

// EmergencyRefund is the admin escape hatch for a stuck escrow: the
// whole locked principal-plus-fee moves back to the sender's available
// funds. Refunds never count toward settled volume.
func (s *Service) EmergencyRefund(ctx context.Context, actor Actor, paymentID uint64) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actor.Account == "" || actor.Account != s.cfg.AdminAccount {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	payment, err := s.repos.Payments.Get(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	escrow, err := s.repos.Escrows.Get(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != domain.PaymentStatusEscrowed || escrow.Released {
		return domain.Payment{}, domain.ErrPaymentAlreadyCompleted
	}

	sender, err := s.repos.Balances.Get(ctx, payment.Sender)
	if err != nil {
		return domain.Payment{}, err
	}
	// The fee rides back with the principal in one unlock; it is not
	// reissued as a separate credit. Refunds are the only path that
	// returns a fee.
	if err := sender.Unlock(payment.Amount + payment.Fee); err != nil {
		return domain.Payment{}, err
	}
	payment.Status = domain.PaymentStatusRefunded

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, sender); err != nil {
			return err
		}
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventEscrowRefunded, actor.RequestID, contracts.EscrowRefundedPayload{
			PaymentID: payment.PaymentID,
			Amount:    payment.Amount,
		}, paymentPartitionKey(payment.PaymentID))
	})
	if err != nil {
		return domain.Payment{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(payment.Sender))
	return payment, nil
}
