package me

import (
	"math"
	"testing"
)

func TestLambdaForQP(t *testing.T) {
	for qp := 0; qp <= MaxQP; qp++ {
		want := 0
		if qp >= 12 {
			want = int(math.Round(math.Pow(2, float64(qp-12)/6)))
		}
		if got := LambdaForQP(qp); got != want {
			t.Errorf("LambdaForQP(%d) = %d, want %d", qp, got, want)
		}
	}
	if LambdaForQP(-5) != LambdaForQP(0) || LambdaForQP(80) != LambdaForQP(MaxQP) {
		t.Error("out-of-range quantizers are not clamped")
	}
}

func TestSATQDThresholds(t *testing.T) {
	prev := SATQDThresholds(0, false)
	for qp := 0; qp <= MaxQP; qp++ {
		inter := SATQDThresholds(qp, false)
		intra := SATQDThresholds(qp, true)
		for i := range inter {
			if inter[i] < 1 {
				t.Fatalf("qp %d: threshold %d is zero", qp, i)
			}
			// The intra dead zone is wider, so fewer residuals survive.
			if intra[i] > inter[i] {
				t.Errorf("qp %d: intra threshold %d = %d above inter %d", qp, i, intra[i], inter[i])
			}
		}
		if qp > 0 && inter[8] < prev[8] {
			t.Errorf("qp %d: DC threshold %d below qp %d value %d", qp, inter[8], qp-1, prev[8])
		}
		prev = inter
	}

	// qp 28: qbits 19, t = 2^19 - 2^19/6 = 436907, DC scale 8192.
	if got := SATQDThresholds(28, false)[8]; got != 53 {
		t.Errorf("DC threshold at qp 28 = %d, want 53", got)
	}
}
