package application

import (
	"context"
	"strings"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

// CreateSubscription records a recurring debit agreement. No funds move
// or lock at creation; the first cycle becomes due one full interval
// after now.
func (s *Service) CreateSubscription(ctx context.Context, actor Actor, input CreateSubscriptionInput) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Subscription{}, domain.ErrUnauthorized
	}
	input.Payee = strings.TrimSpace(input.Payee)
	if input.Payee == "" || input.Payee == actor.Account {
		return domain.Subscription{}, domain.ErrInvalidAmount
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Subscription{}, err
	}
	if input.Amount == 0 || input.Amount < platform.MinPaymentAmount || input.Interval == 0 {
		return domain.Subscription{}, domain.ErrInvalidAmount
	}

	requestHash := hashPayload(input)
	if cached, ok, err := replayIdempotent[domain.Subscription](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Subscription{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Subscription{}, err
	}

	subscription := domain.Subscription{
		SubscriptionID: platform.NextID(),
		Payer:          actor.Account,
		Payee:          input.Payee,
		Amount:         input.Amount,
		Interval:       input.Interval,
		LastPayment:    platform.LogicalClock,
		Active:         true,
		PaymentsMade:   0,
	}

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Subscriptions.Create(ctx, subscription); err != nil {
			return err
		}
		if err := r.Platform.Save(ctx, platform); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventSubscriptionCreated, actor.RequestID, contracts.SubscriptionCreatedPayload{
			SubscriptionID: subscription.SubscriptionID,
			Payer:          subscription.Payer,
			Payee:          subscription.Payee,
			Amount:         subscription.Amount,
			Interval:       subscription.Interval,
		}, subscriptionPartitionKey(subscription.SubscriptionID))
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	s.completeIdempotency(ctx, actor.IdempotencyKey, 200, subscription)
	return subscription, nil
}

// ProcessSubscription settles one due cycle. Deliberately open to any
// authenticated caller: the agreement itself authorizes the debit, the
// caller only triggers it. Flagged as a design risk if the surface ever
// widens.
func (s *Service) ProcessSubscription(ctx context.Context, actor Actor, subscriptionID uint64) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Subscription{}, domain.ErrUnauthorized
	}
	subscription, err := s.repos.Subscriptions.Get(ctx, subscriptionID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if !subscription.Active {
		return domain.Subscription{}, domain.ErrPaymentAlreadyCompleted
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Subscription{}, err
	}
	// "Expired" here means not yet due. The error kind is shared with
	// escrow deadline violations and kept that way on purpose.
	if !subscription.Due(platform.LogicalClock) {
		return domain.Subscription{}, domain.ErrPaymentExpired
	}

	fee := platform.Fee(subscription.Amount)
	total := subscription.Amount + fee
	payer, err := s.repos.Balances.Get(ctx, subscription.Payer)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := payer.Debit(total); err != nil {
		return domain.Subscription{}, err
	}
	payee, err := s.repos.Balances.Get(ctx, subscription.Payee)
	if err != nil {
		return domain.Subscription{}, err
	}
	payee.Credit(subscription.Amount)

	subscription.LastPayment = platform.LogicalClock
	subscription.PaymentsMade++
	platform.TotalVolume += subscription.Amount

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Balances.Save(ctx, payer); err != nil {
			return err
		}
		if err := r.Balances.Save(ctx, payee); err != nil {
			return err
		}
		if err := r.Subscriptions.Update(ctx, subscription); err != nil {
			return err
		}
		if err := r.Platform.Save(ctx, platform); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventSubscriptionCharged, actor.RequestID, contracts.SubscriptionChargedPayload{
			SubscriptionID: subscription.SubscriptionID,
			Amount:         subscription.Amount,
			Fee:            fee,
			PaymentsMade:   subscription.PaymentsMade,
			ChargedAt:      subscription.LastPayment,
		}, subscriptionPartitionKey(subscription.SubscriptionID))
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	s.invalidateCache(ctx, balanceCacheKey(subscription.Payer), balanceCacheKey(subscription.Payee), statsCacheKey)
	return subscription, nil
}

// CancelSubscription deactivates the agreement permanently. Only the
// payer may cancel; there is no reactivation path.
func (s *Service) CancelSubscription(ctx context.Context, actor Actor, subscriptionID uint64) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Subscription{}, domain.ErrUnauthorized
	}
	subscription, err := s.repos.Subscriptions.Get(ctx, subscriptionID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if actor.Account != subscription.Payer {
		return domain.Subscription{}, domain.ErrUnauthorized
	}
	if !subscription.Active {
		return domain.Subscription{}, domain.ErrPaymentAlreadyCompleted
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Subscription{}, err
	}
	subscription.Active = false

	err = s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		if err := r.Subscriptions.Update(ctx, subscription); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, r, domain.EventSubscriptionCanceled, actor.RequestID, contracts.SubscriptionCanceledPayload{
			SubscriptionID: subscription.SubscriptionID,
			CanceledAt:     platform.LogicalClock,
		}, subscriptionPartitionKey(subscription.SubscriptionID))
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	return subscription, nil
}
