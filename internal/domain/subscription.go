package domain

// Subscription is a recurring debit agreement. Ids come from the same
// counter as payment ids. No funds move at creation; every due cycle
// debits the payer and credits the payee.
type Subscription struct {
	SubscriptionID uint64
	Payer          string
	Payee          string
	Amount         uint64
	Interval       uint64
	LastPayment    uint64
	Active         bool
	PaymentsMade   uint64
}

// Due reports whether a full interval has elapsed since the last cycle.
func (s Subscription) Due(now uint64) bool {
	return now >= s.LastPayment+s.Interval
}
