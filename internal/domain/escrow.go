package domain

// Escrow extends an escrowed payment with arbitration metadata. A row
// exists exactly for payments created through the escrow path.
//
// DisputeDeadline is recorded but release stays open to all three
// principals after it passes; no cutoff semantics are attached to it yet.
// TODO: product to decide whether release becomes arbiter-only past the
// dispute deadline.
type Escrow struct {
	PaymentID       uint64
	Arbiter         string
	Released        bool
	DisputeDeadline uint64
}

// MayRelease reports whether caller is one of the three principals
// allowed to release the escrowed payment.
func (e Escrow) MayRelease(caller string, p Payment) bool {
	return caller == e.Arbiter || caller == p.Sender || caller == p.Recipient
}
