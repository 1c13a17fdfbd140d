package domain

import "testing"

func TestBalance_DebitCredit(t *testing.T) {
	b := Balance{Account: "alice", Available: 100}
	if err := b.Debit(150); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := b.Debit(40); err != nil {
		t.Fatalf("Debit error: %v", err)
	}
	if b.Available != 60 || b.TotalSent != 40 {
		t.Fatalf("after debit: %+v", b)
	}
	b.Credit(25)
	if b.Available != 85 || b.TotalReceived != 25 {
		t.Fatalf("after credit: %+v", b)
	}
}

func TestBalance_LockUnlockConsume(t *testing.T) {
	b := Balance{Account: "alice", Available: 100}
	if err := b.Lock(120); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := b.Lock(60); err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if b.Available != 40 || b.Locked != 60 {
		t.Fatalf("after lock: %+v", b)
	}
	// Locking does not count toward lifetime totals.
	if b.TotalSent != 0 {
		t.Fatalf("lock moved lifetime counter: %+v", b)
	}
	if err := b.Unlock(100); err != ErrConflict {
		t.Fatalf("expected conflict unlocking more than locked, got %v", err)
	}
	if err := b.Unlock(10); err != nil {
		t.Fatalf("Unlock error: %v", err)
	}
	if b.Available != 50 || b.Locked != 50 {
		t.Fatalf("after unlock: %+v", b)
	}
	if err := b.ConsumeLocked(60); err != ErrConflict {
		t.Fatalf("expected conflict consuming more than locked, got %v", err)
	}
	if err := b.ConsumeLocked(50); err != nil {
		t.Fatalf("ConsumeLocked error: %v", err)
	}
	if b.Available != 50 || b.Locked != 0 {
		t.Fatalf("after consume: %+v", b)
	}
}

func TestEscrow_MayRelease(t *testing.T) {
	p := Payment{Sender: "alice", Recipient: "bob"}
	e := Escrow{Arbiter: "carol"}
	for _, caller := range []string{"alice", "bob", "carol"} {
		if !e.MayRelease(caller, p) {
			t.Fatalf("%s should be allowed to release", caller)
		}
	}
	if e.MayRelease("mallory", p) {
		t.Fatal("stranger should not be allowed to release")
	}
}

func TestSubscription_Due(t *testing.T) {
	s := Subscription{LastPayment: 10, Interval: 5}
	if s.Due(14) {
		t.Fatal("due before a full interval elapsed")
	}
	if !s.Due(15) {
		t.Fatal("not due at exactly one interval")
	}
	if !s.Due(40) {
		t.Fatal("not due long after the interval")
	}
}
