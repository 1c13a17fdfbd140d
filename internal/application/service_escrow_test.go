package application

import (
	"context"
	"testing"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func createTestEscrow(t *testing.T, svc *Service) domain.Payment {
	t.Helper()
	mustDeposit(t, svc, "alice", 10000)
	payment, err := svc.CreateEscrowPayment(context.Background(), Actor{Account: "alice"}, CreateEscrowInput{
		Recipient: "bob",
		Arbiter:   "carol",
		Amount:    3000,
		Deadline:  100,
	})
	if err != nil {
		t.Fatalf("CreateEscrowPayment error: %v", err)
	}
	return payment
}

func TestEscrow_CreateLocksPrincipalPlusFee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	payment := createTestEscrow(t, svc)

	if payment.Fee != 7 {
		t.Fatalf("fee = %d, want 7", payment.Fee)
	}
	if payment.Status != domain.PaymentStatusEscrowed {
		t.Fatalf("status = %s", payment.Status)
	}
	if payment.ExpiresAt == nil || *payment.ExpiresAt != 100 {
		t.Fatalf("expires at: %+v", payment.ExpiresAt)
	}

	alice, _ := svc.GetBalance(ctx, Actor{Account: "alice"}, "alice")
	if alice.Available != 6993 || alice.Locked != 3007 {
		t.Fatalf("alice after lock: %+v", alice)
	}
	// Nothing has settled yet.
	if alice.TotalSent != 0 {
		t.Fatalf("lock advanced lifetime sent: %+v", alice)
	}
	stats, _ := svc.GetPlatformStats(ctx, Actor{Account: "alice"})
	if stats.TotalVolume != 0 {
		t.Fatalf("escrow creation counted toward volume: %d", stats.TotalVolume)
	}
}

func TestEscrow_DeadlineMustBeAheadOfClock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDeposit(t, svc, "alice", 10000)
	if _, err := svc.CreateEscrowPayment(ctx, Actor{Account: "alice"}, CreateEscrowInput{
		Recipient: "bob", Arbiter: "carol", Amount: 3000, Deadline: 0,
	}); err != domain.ErrPaymentExpired {
		t.Fatalf("deadline at clock: got %v", err)
	}
	// The deadline check runs before the balance check.
	if _, err := svc.CreateEscrowPayment(ctx, Actor{Account: "poor"}, CreateEscrowInput{
		Recipient: "bob", Arbiter: "carol", Amount: 3000, Deadline: 0,
	}); err != domain.ErrPaymentExpired {
		t.Fatalf("deadline check should precede balance check: got %v", err)
	}
}

func TestEscrow_ReleaseByEachPrincipal(t *testing.T) {
	for _, releaser := range []string{"alice", "bob", "carol"} {
		t.Run(releaser, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()
			payment := createTestEscrow(t, svc)

			released, err := svc.ReleaseEscrow(ctx, Actor{Account: releaser}, payment.PaymentID)
			if err != nil {
				t.Fatalf("ReleaseEscrow by %s: %v", releaser, err)
			}
			if released.Status != domain.PaymentStatusCompleted {
				t.Fatalf("status = %s", released.Status)
			}

			alice, _ := svc.GetBalance(ctx, Actor{Account: "alice"}, "alice")
			if alice.Available != 6993 || alice.Locked != 0 {
				t.Fatalf("alice after release: %+v", alice)
			}
			// Only the principal counts toward lifetime sent; the fee was
			// consumed, not transferred.
			if alice.TotalSent != 3000 {
				t.Fatalf("alice total sent = %d, want 3000", alice.TotalSent)
			}
			bob, _ := svc.GetBalance(ctx, Actor{Account: "bob"}, "bob")
			if bob.Available != 3000 || bob.TotalReceived != 3000 {
				t.Fatalf("bob after release: %+v", bob)
			}
			stats, _ := svc.GetPlatformStats(ctx, Actor{Account: "alice"})
			if stats.TotalVolume != 3000 {
				t.Fatalf("volume = %d, want 3000", stats.TotalVolume)
			}
		})
	}
}

func TestEscrow_ReleaseDeniedToStrangers(t *testing.T) {
	svc, _ := newTestService(t)
	payment := createTestEscrow(t, svc)
	if _, err := svc.ReleaseEscrow(context.Background(), Actor{Account: "mallory"}, payment.PaymentID); err != domain.ErrUnauthorized {
		t.Fatalf("stranger release: got %v", err)
	}
}

func TestEscrow_ReleaseIsExclusive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	payment := createTestEscrow(t, svc)

	if _, err := svc.ReleaseEscrow(ctx, Actor{Account: "carol"}, payment.PaymentID); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if _, err := svc.ReleaseEscrow(ctx, Actor{Account: "carol"}, payment.PaymentID); err != domain.ErrPaymentAlreadyCompleted {
		t.Fatalf("second release: got %v", err)
	}
	if _, err := svc.EmergencyRefund(ctx, Actor{Account: testAdmin}, payment.PaymentID); err != domain.ErrPaymentAlreadyCompleted {
		t.Fatalf("refund after release: got %v", err)
	}
}

func TestEscrow_EmergencyRefundRestoresEverything(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	payment := createTestEscrow(t, svc)

	if _, err := svc.EmergencyRefund(ctx, Actor{Account: "alice"}, payment.PaymentID); err != domain.ErrUnauthorized {
		t.Fatalf("non-admin refund: got %v", err)
	}

	refunded, err := svc.EmergencyRefund(ctx, Actor{Account: testAdmin}, payment.PaymentID)
	if err != nil {
		t.Fatalf("EmergencyRefund error: %v", err)
	}
	if refunded.Status != domain.PaymentStatusRefunded {
		t.Fatalf("status = %s", refunded.Status)
	}

	// Principal and fee both come back; the refund path is the only one
	// that returns the fee.
	alice, _ := svc.GetBalance(ctx, Actor{Account: "alice"}, "alice")
	if alice.Available != 10000 || alice.Locked != 0 {
		t.Fatalf("alice after refund: %+v", alice)
	}
	if alice.TotalSent != 0 {
		t.Fatalf("refund advanced lifetime sent: %+v", alice)
	}
	stats, _ := svc.GetPlatformStats(ctx, Actor{Account: "alice"})
	if stats.TotalVolume != 0 {
		t.Fatalf("refund counted toward volume: %d", stats.TotalVolume)
	}

	if _, err := svc.ReleaseEscrow(ctx, Actor{Account: "carol"}, payment.PaymentID); err != domain.ErrPaymentAlreadyCompleted {
		t.Fatalf("release after refund: got %v", err)
	}
}

func TestEscrow_RefundUnknownPayment(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.EmergencyRefund(context.Background(), Actor{Account: testAdmin}, 999); err != domain.ErrPaymentNotFound {
		t.Fatalf("unknown payment: got %v", err)
	}
}

func TestEscrow_GetPaymentIncludesArbitration(t *testing.T) {
	svc, _ := newTestService(t)
	payment := createTestEscrow(t, svc)
	detail, err := svc.GetPayment(context.Background(), Actor{Account: "bob"}, payment.PaymentID)
	if err != nil {
		t.Fatalf("GetPayment error: %v", err)
	}
	if detail.Escrow == nil {
		t.Fatal("expected escrow detail")
	}
	if detail.Escrow.Arbiter != "carol" || detail.Escrow.DisputeDeadline != 100 {
		t.Fatalf("escrow detail: %+v", detail.Escrow)
	}
}
