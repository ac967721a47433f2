package me

import "testing"

func TestBitCostTable(t *testing.T) {
	tab := NewBitCostTable(DefaultMaxSearchRange)
	tests := []struct {
		delta int
		want  int
	}{
		{0, 1},
		{1, 3}, {-1, 3},
		{2, 5}, {3, 5}, {-3, 5},
		{4, 7}, {7, 7}, {-7, 7},
		{8, 9}, {15, 9},
		{16, 11},
		{1023, 21}, {1024, 23},
	}
	for _, tt := range tests {
		if got := tab.Bits(tt.delta); got != tt.want {
			t.Errorf("Bits(%d) = %d, want %d", tt.delta, got, tt.want)
		}
	}
}

func TestBitCostTableSymmetricAndMonotonic(t *testing.T) {
	tab := NewBitCostTable(64)
	if tab.Range() != 64*8 {
		t.Fatalf("Range() = %d, want %d", tab.Range(), 64*8)
	}
	prev := tab.Bits(0)
	for d := 1; d <= tab.Range(); d++ {
		if tab.Bits(d) != tab.Bits(-d) {
			t.Fatalf("Bits(%d) = %d, Bits(%d) = %d", d, tab.Bits(d), -d, tab.Bits(-d))
		}
		if tab.Bits(d) < prev {
			t.Fatalf("Bits(%d) = %d shorter than Bits(%d) = %d", d, tab.Bits(d), d-1, prev)
		}
		if tab.Bits(d)&1 != 1 {
			t.Fatalf("Bits(%d) = %d is not an odd code length", d, tab.Bits(d))
		}
		prev = tab.Bits(d)
	}
}

func TestBitCostTableOutOfRangePanics(t *testing.T) {
	tab := NewBitCostTable(4)
	defer func() {
		if recover() == nil {
			t.Error("Bits beyond the table range did not panic")
		}
	}()
	tab.Bits(tab.Range() + 1)
}

func TestBitCostCost(t *testing.T) {
	tab := NewBitCostTable(16)
	got := tab.Cost(MV{X: 4, Y: -2}, MV{X: 1, Y: -2})
	if want := tab.Bits(3) + tab.Bits(0); got != want {
		t.Errorf("Cost = %d, want %d", got, want)
	}
}
