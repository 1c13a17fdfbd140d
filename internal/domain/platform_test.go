package domain

import (
	"math"
	"testing"
)

func TestFee_FloorsAtBasisPoints(t *testing.T) {
	cases := []struct {
		amount  uint64
		rateBps uint64
		want    uint64
	}{
		{0, 25, 0},
		{1, 25, 0},
		{999, 25, 2},
		{1000, 25, 2},
		{10000, 25, 25},
		{10001, 25, 25},
		{2000, 25, 5},
		{3000, 25, 7},
		{10000, 0, 0},
		{10000, 1000, 1000},
	}
	for _, tc := range cases {
		if got := Fee(tc.amount, tc.rateBps); got != tc.want {
			t.Fatalf("Fee(%d, %d) = %d, want %d", tc.amount, tc.rateBps, got, tc.want)
		}
	}
}

func TestFee_ExactForLargeAmounts(t *testing.T) {
	// Full-rate fee equals the amount exactly, even where a 64-bit
	// intermediate product would have wrapped.
	if got := Fee(math.MaxUint64, 10000); got != math.MaxUint64 {
		t.Fatalf("full-rate fee on max amount = %d", got)
	}
	// 1<<63 * 25 / 10000 computed independently: 2^63/400 floored.
	want := uint64(1<<63) / 400
	if got := Fee(1<<63, 25); got != want {
		t.Fatalf("Fee(1<<63, 25) = %d, want %d", got, want)
	}
}

func TestPlatform_NextIDStartsAtOne(t *testing.T) {
	p := Platform{}
	if id := p.NextID(); id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}
	if id := p.NextID(); id != 2 {
		t.Fatalf("second id = %d, want 2", id)
	}
	if p.PaymentCounter != 2 {
		t.Fatalf("counter = %d, want 2", p.PaymentCounter)
	}
}
