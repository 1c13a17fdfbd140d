package application

import (
	"context"
	"testing"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func TestAdmin_GatesPrivilegedOperations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	stranger := Actor{Account: "alice"}

	if _, err := svc.SetFeeRate(ctx, stranger, 50); err != domain.ErrUnauthorized {
		t.Fatalf("SetFeeRate by non-admin: got %v", err)
	}
	if _, err := svc.SetMinPayment(ctx, stranger, 100); err != domain.ErrUnauthorized {
		t.Fatalf("SetMinPayment by non-admin: got %v", err)
	}
	if _, err := svc.AdvanceClock(ctx, stranger, 1); err != domain.ErrUnauthorized {
		t.Fatalf("AdvanceClock by non-admin: got %v", err)
	}
	if _, err := svc.EmergencyRefund(ctx, Actor{}, 1); err != domain.ErrUnauthorized {
		t.Fatalf("EmergencyRefund by anonymous: got %v", err)
	}
}

func TestAdmin_FeeRateCap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := Actor{Account: testAdmin}

	if _, err := svc.SetFeeRate(ctx, admin, domain.MaxFeeRateBps+1); err != domain.ErrInvalidAmount {
		t.Fatalf("over-cap rate: got %v", err)
	}
	platform, err := svc.SetFeeRate(ctx, admin, domain.MaxFeeRateBps)
	if err != nil {
		t.Fatalf("SetFeeRate at cap: %v", err)
	}
	if platform.FeeRateBps != domain.MaxFeeRateBps {
		t.Fatalf("rate = %d", platform.FeeRateBps)
	}
	// Rate zero is a valid fee holiday.
	platform, err = svc.SetFeeRate(ctx, admin, 0)
	if err != nil {
		t.Fatalf("SetFeeRate zero: %v", err)
	}
	if platform.FeeRateBps != 0 {
		t.Fatalf("rate = %d", platform.FeeRateBps)
	}
}

func TestAdmin_MinPaymentEnforcedOnNextPayment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDeposit(t, svc, "alice", 10000)

	if _, err := svc.SetMinPayment(ctx, Actor{Account: testAdmin}, 500); err != nil {
		t.Fatalf("SetMinPayment error: %v", err)
	}
	if _, err := svc.CreatePayment(ctx, Actor{Account: "alice"}, CreatePaymentInput{Recipient: "bob", Amount: 499}); err != domain.ErrInvalidAmount {
		t.Fatalf("below-minimum payment: got %v", err)
	}
	if _, err := svc.CreatePayment(ctx, Actor{Account: "alice"}, CreatePaymentInput{Recipient: "bob", Amount: 500}); err != nil {
		t.Fatalf("at-minimum payment: %v", err)
	}
}

func TestAdmin_ClockOnlyMovesForward(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := Actor{Account: testAdmin}

	if _, err := svc.AdvanceClock(ctx, admin, 0); err != domain.ErrInvalidAmount {
		t.Fatalf("zero delta: got %v", err)
	}
	now, err := svc.AdvanceClock(ctx, admin, 7)
	if err != nil {
		t.Fatalf("AdvanceClock error: %v", err)
	}
	if now != 7 {
		t.Fatalf("clock = %d, want 7", now)
	}
	now, err = svc.AdvanceClock(ctx, admin, 3)
	if err != nil {
		t.Fatalf("AdvanceClock error: %v", err)
	}
	if now != 10 {
		t.Fatalf("clock = %d, want 10", now)
	}
	current, err := svc.CurrentTime(ctx, Actor{Account: "alice"})
	if err != nil {
		t.Fatalf("CurrentTime error: %v", err)
	}
	if current != 10 {
		t.Fatalf("current time = %d, want 10", current)
	}
}

func TestAdmin_RateChangeAppliesToLaterPaymentsOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDeposit(t, svc, "alice", 100000)

	first, err := svc.CreatePayment(ctx, Actor{Account: "alice"}, CreatePaymentInput{Recipient: "bob", Amount: 10000})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if first.Fee != 25 {
		t.Fatalf("first fee = %d, want 25", first.Fee)
	}
	if _, err := svc.SetFeeRate(ctx, Actor{Account: testAdmin}, 100); err != nil {
		t.Fatalf("SetFeeRate error: %v", err)
	}
	second, err := svc.CreatePayment(ctx, Actor{Account: "alice"}, CreatePaymentInput{Recipient: "bob", Amount: 10000})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if second.Fee != 100 {
		t.Fatalf("second fee = %d, want 100", second.Fee)
	}
	// The first payment's recorded fee is immutable.
	detail, err := svc.GetPayment(ctx, Actor{Account: "alice"}, first.PaymentID)
	if err != nil {
		t.Fatalf("GetPayment error: %v", err)
	}
	if detail.Payment.Fee != 25 {
		t.Fatalf("recorded fee changed: %d", detail.Payment.Fee)
	}
}
