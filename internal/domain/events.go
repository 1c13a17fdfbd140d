package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
)

const (
	EventDepositReceived      = "ledger.deposit_received"
	EventWithdrawalProcessed  = "ledger.withdrawal_processed"
	EventPaymentCompleted     = "payment.completed"
	EventEscrowCreated        = "escrow.created"
	EventEscrowReleased       = "escrow.released"
	EventEscrowRefunded       = "escrow.refunded"
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionCharged  = "subscription.charged"
	EventSubscriptionCanceled = "subscription.cancelled"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventDepositReceived, EventWithdrawalProcessed,
		EventPaymentCompleted,
		EventEscrowCreated, EventEscrowReleased, EventEscrowRefunded,
		EventSubscriptionCreated, EventSubscriptionCharged, EventSubscriptionCanceled:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventPaymentCompleted, EventEscrowReleased, EventEscrowRefunded, EventSubscriptionCharged:
		return CanonicalEventClassDomain
	case EventDepositReceived, EventWithdrawalProcessed, EventEscrowCreated,
		EventSubscriptionCreated, EventSubscriptionCanceled:
		return CanonicalEventClassAnalyticsOnly
	default:
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	switch eventType {
	case EventDepositReceived, EventWithdrawalProcessed:
		return "data.account"
	case EventSubscriptionCreated, EventSubscriptionCharged, EventSubscriptionCanceled:
		return "data.subscription_id"
	default:
		if IsCanonicalEmittedEvent(eventType) {
			return "data.payment_id"
		}
		return ""
	}
}
