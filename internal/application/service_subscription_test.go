package application

import (
	"context"
	"testing"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func TestSubscription_Lifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := Actor{Account: testAdmin}
	mustDeposit(t, svc, "alice", 10000)

	sub, err := svc.CreateSubscription(ctx, Actor{Account: "alice"}, CreateSubscriptionInput{
		Payee: "bob", Amount: 1000, Interval: 10,
	})
	if err != nil {
		t.Fatalf("CreateSubscription error: %v", err)
	}
	if sub.SubscriptionID != 1 {
		t.Fatalf("subscription id = %d, want 1", sub.SubscriptionID)
	}
	if !sub.Active || sub.PaymentsMade != 0 || sub.LastPayment != 0 {
		t.Fatalf("new subscription: %+v", sub)
	}

	// Not due until a full interval has elapsed on the logical clock.
	if _, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID); err != domain.ErrPaymentExpired {
		t.Fatalf("premature charge: got %v", err)
	}

	if _, err := svc.AdvanceClock(ctx, admin, 10); err != nil {
		t.Fatalf("AdvanceClock error: %v", err)
	}
	charged, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID)
	if err != nil {
		t.Fatalf("ProcessSubscription error: %v", err)
	}
	if charged.PaymentsMade != 1 || charged.LastPayment != 10 {
		t.Fatalf("after charge: %+v", charged)
	}

	alice, _ := svc.GetBalance(ctx, Actor{Account: "alice"}, "alice")
	// 1000 principal plus fee floor(1000*25/10000)=2.
	if alice.Available != 8998 || alice.TotalSent != 1002 {
		t.Fatalf("alice after charge: %+v", alice)
	}
	bob, _ := svc.GetBalance(ctx, Actor{Account: "bob"}, "bob")
	if bob.Available != 1000 || bob.TotalReceived != 1000 {
		t.Fatalf("bob after charge: %+v", bob)
	}
	stats, _ := svc.GetPlatformStats(ctx, Actor{Account: "alice"})
	if stats.TotalVolume != 1000 {
		t.Fatalf("volume = %d, want 1000", stats.TotalVolume)
	}

	// The due date moved with the charge.
	if _, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID); err != domain.ErrPaymentExpired {
		t.Fatalf("immediate recharge: got %v", err)
	}
}

func TestSubscription_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	actor := Actor{Account: "alice"}

	if _, err := svc.CreateSubscription(ctx, actor, CreateSubscriptionInput{Payee: "", Amount: 100, Interval: 5}); err != domain.ErrInvalidAmount {
		t.Fatalf("empty payee: got %v", err)
	}
	if _, err := svc.CreateSubscription(ctx, actor, CreateSubscriptionInput{Payee: "alice", Amount: 100, Interval: 5}); err != domain.ErrInvalidAmount {
		t.Fatalf("self subscription: got %v", err)
	}
	if _, err := svc.CreateSubscription(ctx, actor, CreateSubscriptionInput{Payee: "bob", Amount: 0, Interval: 5}); err != domain.ErrInvalidAmount {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := svc.CreateSubscription(ctx, actor, CreateSubscriptionInput{Payee: "bob", Amount: 100, Interval: 0}); err != domain.ErrInvalidAmount {
		t.Fatalf("zero interval: got %v", err)
	}
}

func TestSubscription_ChargeFailsWithoutFunds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub, err := svc.CreateSubscription(ctx, Actor{Account: "alice"}, CreateSubscriptionInput{Payee: "bob", Amount: 1000, Interval: 5})
	if err != nil {
		t.Fatalf("CreateSubscription error: %v", err)
	}
	if _, err := svc.AdvanceClock(ctx, Actor{Account: testAdmin}, 5); err != nil {
		t.Fatalf("AdvanceClock error: %v", err)
	}
	if _, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID); err != domain.ErrInsufficientBalance {
		t.Fatalf("unfunded charge: got %v", err)
	}
	// A failed cycle leaves the agreement intact for retry after funding.
	mustDeposit(t, svc, "alice", 5000)
	charged, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID)
	if err != nil {
		t.Fatalf("charge after funding: %v", err)
	}
	if charged.PaymentsMade != 1 {
		t.Fatalf("payments made = %d, want 1", charged.PaymentsMade)
	}
}

func TestSubscription_CancelIsPayerOnlyAndFinal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub, err := svc.CreateSubscription(ctx, Actor{Account: "alice"}, CreateSubscriptionInput{Payee: "bob", Amount: 100, Interval: 5})
	if err != nil {
		t.Fatalf("CreateSubscription error: %v", err)
	}

	if _, err := svc.CancelSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID); err != domain.ErrUnauthorized {
		t.Fatalf("payee cancel: got %v", err)
	}
	canceled, err := svc.CancelSubscription(ctx, Actor{Account: "alice"}, sub.SubscriptionID)
	if err != nil {
		t.Fatalf("CancelSubscription error: %v", err)
	}
	if canceled.Active {
		t.Fatal("subscription still active after cancel")
	}
	if _, err := svc.CancelSubscription(ctx, Actor{Account: "alice"}, sub.SubscriptionID); err != domain.ErrPaymentAlreadyCompleted {
		t.Fatalf("double cancel: got %v", err)
	}
	if _, err := svc.AdvanceClock(ctx, Actor{Account: testAdmin}, 5); err != nil {
		t.Fatalf("AdvanceClock error: %v", err)
	}
	if _, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, sub.SubscriptionID); err != domain.ErrPaymentAlreadyCompleted {
		t.Fatalf("charge after cancel: got %v", err)
	}
}

func TestSubscription_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.ProcessSubscription(ctx, Actor{Account: "bob"}, 404); err != domain.ErrPaymentNotFound {
		t.Fatalf("charge unknown: got %v", err)
	}
	if _, err := svc.CancelSubscription(ctx, Actor{Account: "bob"}, 404); err != domain.ErrPaymentNotFound {
		t.Fatalf("cancel unknown: got %v", err)
	}
}

func TestSubscription_SharesIDCounterWithPayments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustDeposit(t, svc, "alice", 10000)

	payment, err := svc.CreatePayment(ctx, Actor{Account: "alice"}, CreatePaymentInput{Recipient: "bob", Amount: 100})
	if err != nil {
		t.Fatalf("CreatePayment error: %v", err)
	}
	sub, err := svc.CreateSubscription(ctx, Actor{Account: "alice"}, CreateSubscriptionInput{Payee: "bob", Amount: 100, Interval: 5})
	if err != nil {
		t.Fatalf("CreateSubscription error: %v", err)
	}
	if payment.PaymentID != 1 || sub.SubscriptionID != 2 {
		t.Fatalf("ids not shared: payment=%d subscription=%d", payment.PaymentID, sub.SubscriptionID)
	}
}
