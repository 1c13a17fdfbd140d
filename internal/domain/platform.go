package domain

import "math/bits"

// MaxFeeRateBps caps the platform fee at 10%.
const MaxFeeRateBps = 1000

// Platform is the singleton config-and-stats record. LogicalClock only
// moves on explicit admin action; TotalVolume counts settled principal
// (instant completions, escrow releases, subscription cycles) and never
// fees or refunds. PaymentCounter is the shared id source for payments
// and subscriptions.
type Platform struct {
	FeeRateBps       uint64
	MinPaymentAmount uint64
	TotalVolume      uint64
	PaymentCounter   uint64
	LogicalClock     uint64
}

// Fee computes floor(amount * rate / 10000) through a 128-bit
// intermediate so the result is exact for any uint64 amount. Valid for
// rates up to 10000; the platform cap keeps rates far below that.
func Fee(amount, rateBps uint64) uint64 {
	hi, lo := bits.Mul64(amount, rateBps)
	q, _ := bits.Div64(hi, lo, 10000)
	return q
}

// Fee applies the platform's configured rate.
func (p Platform) Fee(amount uint64) uint64 {
	return Fee(amount, p.FeeRateBps)
}

// NextID allocates the next payment/subscription id. Ids start at 1 and
// are never reused.
func (p *Platform) NextID() uint64 {
	p.PaymentCounter++
	return p.PaymentCounter
}
