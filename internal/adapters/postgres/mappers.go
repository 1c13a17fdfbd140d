package postgres

import (
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func toDomainBalance(m balanceModel) domain.Balance {
	return domain.Balance{
		Account: m.Account, Available: m.Available, Locked: m.Locked,
		TotalSent: m.TotalSent, TotalReceived: m.TotalReceived,
	}
}

func toBalanceModel(b domain.Balance) balanceModel {
	return balanceModel{
		Account: b.Account, Available: b.Available, Locked: b.Locked,
		TotalSent: b.TotalSent, TotalReceived: b.TotalReceived,
	}
}

func toDomainPayment(m paymentModel) domain.Payment {
	return domain.Payment{
		PaymentID: m.PaymentID, Sender: m.Sender, Recipient: m.Recipient,
		Amount: m.Amount, Fee: m.Fee, Status: domain.PaymentStatus(m.Status),
		CreatedAt: m.CreatedAt, ExpiresAt: m.ExpiresAt, Memo: m.Memo,
		EscrowCondition: domain.EscrowCondition(m.EscrowCondition),
	}
}

func toPaymentModel(p domain.Payment) paymentModel {
	return paymentModel{
		PaymentID: p.PaymentID, Sender: p.Sender, Recipient: p.Recipient,
		Amount: p.Amount, Fee: p.Fee, Status: string(p.Status),
		CreatedAt: p.CreatedAt, ExpiresAt: p.ExpiresAt, Memo: p.Memo,
		EscrowCondition: string(p.EscrowCondition),
	}
}

func toDomainEscrow(m escrowModel) domain.Escrow {
	return domain.Escrow{
		PaymentID: m.PaymentID, Arbiter: m.Arbiter,
		Released: m.Released, DisputeDeadline: m.DisputeDeadline,
	}
}

func toEscrowModel(e domain.Escrow) escrowModel {
	return escrowModel{
		PaymentID: e.PaymentID, Arbiter: e.Arbiter,
		Released: e.Released, DisputeDeadline: e.DisputeDeadline,
	}
}

func toDomainSubscription(m subscriptionModel) domain.Subscription {
	return domain.Subscription{
		SubscriptionID: m.SubscriptionID, Payer: m.Payer, Payee: m.Payee,
		Amount: m.Amount, Interval: m.IntervalTicks, LastPayment: m.LastPayment,
		Active: m.Active, PaymentsMade: m.PaymentsMade,
	}
}

func toSubscriptionModel(s domain.Subscription) subscriptionModel {
	return subscriptionModel{
		SubscriptionID: s.SubscriptionID, Payer: s.Payer, Payee: s.Payee,
		Amount: s.Amount, IntervalTicks: s.Interval, LastPayment: s.LastPayment,
		Active: s.Active, PaymentsMade: s.PaymentsMade,
	}
}

func toDomainPlatform(m platformModel) domain.Platform {
	return domain.Platform{
		FeeRateBps: m.FeeRateBps, MinPaymentAmount: m.MinPaymentAmount,
		TotalVolume: m.TotalVolume, PaymentCounter: m.PaymentCounter,
		LogicalClock: m.LogicalClock,
	}
}

func toPlatformModel(p domain.Platform) platformModel {
	return platformModel{
		PlatformID: 1, FeeRateBps: p.FeeRateBps, MinPaymentAmount: p.MinPaymentAmount,
		TotalVolume: p.TotalVolume, PaymentCounter: p.PaymentCounter,
		LogicalClock: p.LogicalClock,
	}
}
