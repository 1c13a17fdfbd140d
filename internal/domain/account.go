package domain

// Balance is the ledger row for one account. Accounts that have never
// transacted have no row; readers substitute a zero-valued Balance.
type Balance struct {
	Account       string
	Available     uint64
	Locked        uint64
	TotalSent     uint64
	TotalReceived uint64
}

// Debit removes amount from available funds and advances the lifetime
// sent counter.
func (b *Balance) Debit(amount uint64) error {
	if b.Available < amount {
		return ErrInsufficientBalance
	}
	b.Available -= amount
	b.TotalSent += amount
	return nil
}

// Credit adds amount to available funds and advances the lifetime
// received counter.
func (b *Balance) Credit(amount uint64) {
	b.Available += amount
	b.TotalReceived += amount
}

// Lock moves amount from available to locked. Lifetime counters are
// untouched until the locked funds settle or are refunded.
func (b *Balance) Lock(amount uint64) error {
	if b.Available < amount {
		return ErrInsufficientBalance
	}
	b.Available -= amount
	b.Locked += amount
	return nil
}

// Unlock moves amount from locked back to available. Unlocking more than
// is locked is a caller bug, not a business error; the guard keeps the
// invariant Locked >= 0 unconditionally.
func (b *Balance) Unlock(amount uint64) error {
	if b.Locked < amount {
		return ErrConflict
	}
	b.Locked -= amount
	b.Available += amount
	return nil
}

// ConsumeLocked removes settled funds from the locked pool without
// returning them to available. Used when an escrow releases: the
// principal goes to the recipient and the fee is retained.
func (b *Balance) ConsumeLocked(amount uint64) error {
	if b.Locked < amount {
		return ErrConflict
	}
	b.Locked -= amount
	return nil
}
