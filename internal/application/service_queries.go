package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

const statsCacheKey = "ledger:platform:stats"

func balanceCacheKey(account string) string {
	return "ledger:balance:" + account
}

func paymentPartitionKey(paymentID uint64) string {
	return strconv.FormatUint(paymentID, 10)
}

func subscriptionPartitionKey(subscriptionID uint64) string {
	return strconv.FormatUint(subscriptionID, 10)
}

func (s *Service) invalidateCache(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	_ = s.cache.Delete(ctx, keys...)
}

// PaymentDetail pairs a payment with its escrow row when one exists.
type PaymentDetail struct {
	Payment domain.Payment
	Escrow  *domain.Escrow
}

// GetBalance reads an account's balance. Unknown accounts read as
// all-zero; no row is created by looking.
func (s *Service) GetBalance(ctx context.Context, actor Actor, account string) (domain.Balance, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Balance{}, domain.ErrUnauthorized
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return domain.Balance{}, domain.ErrInvalidAmount
	}
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, balanceCacheKey(account)); err == nil && raw != "" {
			var cached domain.Balance
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}
	balance, err := s.repos.Balances.Get(ctx, account)
	if err != nil {
		return domain.Balance{}, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(balance); err == nil {
			_ = s.cache.Set(ctx, balanceCacheKey(account), string(b), s.cfg.BalanceCacheTTL)
		}
	}
	return balance, nil
}

func (s *Service) GetPayment(ctx context.Context, actor Actor, paymentID uint64) (PaymentDetail, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return PaymentDetail{}, domain.ErrUnauthorized
	}
	payment, err := s.repos.Payments.Get(ctx, paymentID)
	if err != nil {
		return PaymentDetail{}, err
	}
	detail := PaymentDetail{Payment: payment}
	if payment.EscrowCondition != domain.EscrowConditionNone {
		escrow, err := s.repos.Escrows.Get(ctx, paymentID)
		if err != nil {
			return PaymentDetail{}, err
		}
		detail.Escrow = &escrow
	}
	return detail, nil
}

func (s *Service) GetSubscription(ctx context.Context, actor Actor, subscriptionID uint64) (domain.Subscription, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Subscription{}, domain.ErrUnauthorized
	}
	return s.repos.Subscriptions.Get(ctx, subscriptionID)
}

// GetPlatformStats returns the singleton config-and-stats record.
func (s *Service) GetPlatformStats(ctx context.Context, actor Actor) (domain.Platform, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return domain.Platform{}, domain.ErrUnauthorized
	}
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey); err == nil && raw != "" {
			var cached domain.Platform
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Platform{}, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(platform); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, string(b), s.cfg.BalanceCacheTTL)
		}
	}
	return platform, nil
}

// QuoteFee computes the fee a hypothetical amount would carry under the
// current rate. Pure read, no side effects.
func (s *Service) QuoteFee(ctx context.Context, actor Actor, amount uint64) (uint64, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return 0, domain.ErrUnauthorized
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return 0, err
	}
	return platform.Fee(amount), nil
}

// CurrentTime returns the logical clock.
func (s *Service) CurrentTime(ctx context.Context, actor Actor) (uint64, error) {
	if strings.TrimSpace(actor.Account) == "" {
		return 0, domain.ErrUnauthorized
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return 0, err
	}
	return platform.LogicalClock, nil
}
