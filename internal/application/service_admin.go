package application

import (
	"context"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

func (s *Service) isAdmin(actor Actor) bool {
	return actor.Account != "" && actor.Account == s.cfg.AdminAccount
}

// SetFeeRate updates the platform fee. Rates are basis points, capped at
// 10%.
func (s *Service) SetFeeRate(ctx context.Context, actor Actor, rateBps uint64) (domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdmin(actor) {
		return domain.Platform{}, domain.ErrUnauthorized
	}
	if rateBps > domain.MaxFeeRateBps {
		return domain.Platform{}, domain.ErrInvalidAmount
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Platform{}, err
	}
	platform.FeeRateBps = rateBps
	if err := s.savePlatform(ctx, platform); err != nil {
		return domain.Platform{}, err
	}
	s.invalidateCache(ctx, statsCacheKey)
	return platform, nil
}

// SetMinPayment updates the payment floor. No upper bound is enforced.
func (s *Service) SetMinPayment(ctx context.Context, actor Actor, minAmount uint64) (domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdmin(actor) {
		return domain.Platform{}, domain.ErrUnauthorized
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return domain.Platform{}, err
	}
	platform.MinPaymentAmount = minAmount
	if err := s.savePlatform(ctx, platform); err != nil {
		return domain.Platform{}, err
	}
	s.invalidateCache(ctx, statsCacheKey)
	return platform, nil
}

// AdvanceClock moves logical time forward by delta. This is the only way
// time passes; escrow deadlines and subscription due dates compare
// against the value set here.
func (s *Service) AdvanceClock(ctx context.Context, actor Actor, delta uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdmin(actor) {
		return 0, domain.ErrUnauthorized
	}
	if delta == 0 {
		return 0, domain.ErrInvalidAmount
	}
	platform, err := s.repos.Platform.Get(ctx)
	if err != nil {
		return 0, err
	}
	platform.LogicalClock += delta
	if err := s.savePlatform(ctx, platform); err != nil {
		return 0, err
	}
	s.invalidateCache(ctx, statsCacheKey)
	return platform.LogicalClock, nil
}

func (s *Service) savePlatform(ctx context.Context, platform domain.Platform) error {
	return s.tx.WithinTx(ctx, func(r ports.Repositories) error {
		return r.Platform.Save(ctx, platform)
	})
}
