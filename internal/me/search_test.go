package me

import (
	"math/rand"
	"testing"

	"github.com/deepteams/avcme/internal/dsp"
)

func TestCandidates(t *testing.T) {
	cfg := NewConfig(SliceB, 4, 4, 28, true)
	cfg.POC = POCInfo{Cur: 1, Ref0: 0, Ref1: 2}
	tf := newTestFrame(t, cfg, flat(10), flat(10), flat(10))
	c := NewContext()
	c.Bind(tf.Frame)

	nb := Neighborhood{
		Avail:    allAvail(),
		Left:     puL0(9, -6),
		Top:      puBi(-14, 2, 4, 4),
		TopRight: puL1(100, 100),
		TopLeft:  puL0(20, 20),
	}
	s := newMBState(c, 1, 1, nb)
	c.candidates(s, L0)
	l := &s.cands[L0]

	// zero, left, top, top-left (top-right predicts from list 1 only),
	// spatial skip, temporal skip.
	if l.n != MaxCandidates {
		t.Fatalf("got %d candidates, want %d", l.n, MaxCandidates)
	}
	want := []MV{{}, {X: 2, Y: -1}, {X: -3, Y: 1}, {X: 5, Y: 5}}
	for i, v := range want {
		if l.mv[i] != v {
			t.Errorf("candidate %d = %+v, want %+v", i, l.mv[i], v)
		}
	}
	if l.spatialSkip != 4 || l.temporalSkip != 5 {
		t.Errorf("skip seeds at %d, %d, want 4, 5", l.spatialSkip, l.temporalSkip)
	}
	for i := 0; i < l.n; i++ {
		if !s.rng.Contains(l.mv[i]) {
			t.Errorf("candidate %d = %+v outside %+v", i, l.mv[i], s.rng)
		}
	}
}

func TestCandidatesClipped(t *testing.T) {
	cfg := NewConfig(SliceP, 2, 2, 28, false)
	tf := newTestFrame(t, cfg, flat(10), flat(10), nil)
	c := NewContext()
	c.Bind(tf.Frame)
	nb := Neighborhood{Avail: Availability{Left: true}, Left: puL0(-4000, 4000)}
	s := newMBState(c, 1, 0, nb)
	c.candidates(s, L0)
	l := &s.cands[L0]
	if l.n != 3 {
		t.Fatalf("got %d candidates, want 3", l.n)
	}
	if got, want := l.mv[1], (MV{X: int16(s.rng.W), Y: int16(s.rng.S)}); got != want {
		t.Errorf("clipped seed = %+v, want %+v", got, want)
	}
}

func TestFullPelSearchRange(t *testing.T) {
	cfg := NewConfig(SliceP, 10, 8, 28, false)
	tests := []struct {
		x, y int
		want Range
	}{
		{0, 0, Range{W: -15, E: 127, N: -15, S: 127}},
		{9, 7, Range{W: -127, E: 15, N: -127, S: 15}},
		{2, 1, Range{W: -47, E: 127, N: -31, S: 111}},
	}
	for _, tt := range tests {
		if got := cfg.SearchRange(tt.x, tt.y); got != tt.want {
			t.Errorf("SearchRange(%d,%d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFlatBlockConvergesToZero(t *testing.T) {
	cfg := NewConfig(SliceP, 3, 3, 28, false)
	cfg.SATQD = false
	cfg.MinSAD = MinSADDisabled
	tf := newTestFrame(t, cfg, flat(90), flat(90), nil)
	c := NewContext()
	c.Bind(tf.Frame)
	s := newMBState(c, 1, 1, Neighborhood{Avail: allAvail(), Left: puL0(0, 0), Top: puL0(0, 0), TopRight: puL0(0, 0)})
	c.candidates(s, L0)
	c.fullPelSearch(s, L0)
	p := &s.part[L0]
	if !p.mv.IsZero() || p.distortion != 0 {
		t.Errorf("flat search ended at %+v with distortion %d", p.mv, p.distortion)
	}

	d, nonZero := tf.Metrics.SATQD16x16(c.src(s), c.refAt(s, L0, MV{}), tf.Src.Stride, tf.Ref[L0].Stride, &cfg.Thresholds)
	if d != 0 || nonZero {
		t.Errorf("zero-residual predicate = (%d, %v), want (0, false)", d, nonZero)
	}
}

func TestSATQDShortCircuitsSearch(t *testing.T) {
	cfg := NewConfig(SliceP, 3, 3, 28, false)
	tf := newTestFrame(t, cfg, flat(90), flat(90), nil)
	c := NewContext()
	c.Bind(tf.Frame)
	var out MBResult
	nb := Neighborhood{Avail: allAvail(), Left: puL0(0, 0), Top: puL0(0, 0), TopRight: puL0(0, 0)}
	c.EstimateMB(1, 1, &nb, cfg.MinSAD, &out)
	if !out.MinSADReached || out.MinSAD != 0 {
		t.Errorf("min SAD state = (%v, %d), want (true, 0)", out.MinSADReached, out.MinSAD)
	}
	if !out.Skip || !out.PU.Info[L0].MV.IsZero() {
		t.Errorf("result %+v, want zero-vector skip", out.PU)
	}
}

func TestZeroResidualForcesZeroDistortion(t *testing.T) {
	// A uniform difference of one quantizes to nothing at qp 28 although
	// its SAD is 256.
	cfg := NewConfig(SliceP, 3, 3, 28, false)
	tf := newTestFrame(t, cfg, flat(91), flat(90), nil)
	c := NewContext()
	c.Bind(tf.Frame)
	var out MBResult
	nb := Neighborhood{Avail: allAvail(), Left: puL0(0, 0), Top: puL0(0, 0), TopRight: puL0(0, 0)}
	c.EstimateMB(1, 1, &nb, cfg.MinSAD, &out)
	if !out.MinSADReached || out.MinSAD != 0 {
		t.Errorf("min SAD state = (%v, %d), want (true, 0)", out.MinSADReached, out.MinSAD)
	}
	if out.Distortion != 0 || out.Cost > 0 {
		t.Errorf("distortion %d cost %d, want zero distortion", out.Distortion, out.Cost)
	}
	if !out.Skip || !out.PU.Info[L0].MV.IsZero() {
		t.Errorf("result %+v, want zero-vector skip", out.PU)
	}
}

func TestFloorIsPerMacroblock(t *testing.T) {
	// Every macroblock of the row stops at its zero skip vector. The left
	// macroblock reaching the floor with a lower SAD must not tighten the
	// floor of the next one.
	bumps := map[[2]int]bool{{5, 5}: true, {21, 5}: true, {22, 9}: true}
	src := func(x, y int) byte {
		if bumps[[2]int{x, y}] {
			return 190
		}
		return 90
	}
	want := []int{100, 200, 0}
	for _, perJob := range []int{0, 1} {
		cfg := NewConfig(SliceP, 3, 1, 28, false)
		cfg.SATQD = false
		cfg.MinSAD = 300
		tf := newTestFrame(t, cfg, src, flat(90), nil)
		tf.runSerial(perJob)
		for x, d := range want {
			r := tf.at(x, 0)
			if !r.MinSADReached || r.MinSAD != d || r.Distortion != d {
				t.Errorf("perJob=%d MB %d: reached=%v minSAD=%d distortion=%d, want %d",
					perJob, x, r.MinSADReached, r.MinSAD, r.Distortion, d)
			}
		}
	}
}

// shiftedFrame builds a P frame whose source is the waves texture moved by
// (dx, dy) full pels relative to the reference.
func shiftedFrame(t *testing.T, cfg *Config, dx, dy int) *testFrame {
	return newTestFrame(t, cfg, shifted(waves, dx, dy), waves, nil)
}

func TestDiamondIterationBound(t *testing.T) {
	for _, iters := range []int{0, 1, 2, 3} {
		cfg := NewConfig(SliceP, 4, 4, 28, false)
		cfg.DiamondIterations = iters
		tf := shiftedFrame(t, cfg, 6, 5)
		c := NewContext()
		c.Bind(tf.Frame)
		s := newMBState(c, 1, 1, Neighborhood{})
		c.candidates(s, L0)
		c.evalSeeds(s, L0)
		start := s.part[L0].mv
		c.diamond(s, L0)
		p := &s.part[L0]
		if p.steps > iters {
			t.Errorf("iters %d: took %d steps", iters, p.steps)
		}
		moved := absInt(int(p.mv.X-start.X)) + absInt(int(p.mv.Y-start.Y))
		if moved > iters {
			t.Errorf("iters %d: moved %d unit steps", iters, moved)
		}
	}
}

func TestDiamondCostMonotonic(t *testing.T) {
	prev := maxCost
	for iters := 0; iters <= DefaultDiamondIterations; iters++ {
		cfg := NewConfig(SliceP, 4, 4, 28, false)
		cfg.DiamondIterations = iters
		cfg.MinSAD = MinSADDisabled
		tf := shiftedFrame(t, cfg, 7, -4)
		c := NewContext()
		c.Bind(tf.Frame)
		s := newMBState(c, 2, 2, Neighborhood{})
		c.candidates(s, L0)
		c.fullPelSearch(s, L0)
		cost := s.part[L0].cost
		if cost > prev {
			t.Fatalf("iters %d: cost %d above %d with fewer iterations", iters, cost, prev)
		}
		prev = cost
	}
}

func TestSearchStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cfg := NewConfig(SliceP, 3, 3, 20, false)
	cfg.MaxSearchX, cfg.MaxSearchY = 16, 16
	tf := newTestFrame(t, cfg, noise(1), noise(2), nil)
	c := NewContext()
	c.Bind(tf.Frame)
	for iter := 0; iter < 50; iter++ {
		x, y := rng.Intn(3), rng.Intn(3)
		nb := Neighborhood{
			Avail: cfg.Availability(x, y),
			Left:  puL0(int16(rng.Intn(64)-32), int16(rng.Intn(64)-32)),
			Top:   puL0(int16(rng.Intn(64)-32), int16(rng.Intn(64)-32)),
		}
		s := newMBState(c, x, y, nb)
		c.candidates(s, L0)
		c.searchList(s, L0)
		if !reachable(s.rng, s.part[L0].mv) {
			t.Fatalf("iter %d: MB (%d,%d) vector %+v outside %+v", iter, x, y, s.part[L0].mv, s.rng)
		}
		if d := absInt(int(s.part[L0].mv.X)) & 3; d != 0 && d != 2 {
			t.Fatalf("iter %d: vector %+v is not half-pel aligned", iter, s.part[L0].mv)
		}
	}
}

func TestSubPelFindsHalfPelShift(t *testing.T) {
	cfg := NewConfig(SliceP, 4, 4, 28, false)
	cfg.SATQD = false
	cfg.MinSAD = MinSADDisabled
	tf := newTestFrame(t, cfg, flat(0), noise(5), nil)
	c := NewContext()
	c.Bind(tf.Frame)

	// Replace the source block of MB (1,1) with the reference interpolated
	// half a pel to the right.
	ref := &tf.Ref[L0]
	hx := make([]byte, dsp.HPBufSize)
	hy := make([]byte, dsp.HPBufSize)
	hxy := make([]byte, dsp.HPBufSize)
	tf.Metrics.HalfPel(ref.Pix, ref.Offset(16, 16), ref.Stride, hx, hy, hxy)
	for y := 0; y < 16; y++ {
		copy(tf.Src.Pix[tf.Src.Offset(16, 16+y):], hx[y*dsp.HPStride+1:y*dsp.HPStride+17])
	}

	var out MBResult
	nb := Neighborhood{}
	c.EstimateMB(1, 1, &nb, cfg.MinSAD, &out)
	if want := (MV{X: 2}); out.PU.Info[L0].MV != want {
		t.Fatalf("vector = %+v, want %+v", out.PU.Info[L0].MV, want)
	}
	if out.Distortion != 0 {
		t.Errorf("distortion = %d, want 0", out.Distortion)
	}
	if !out.PredValid {
		t.Fatal("interpolated prediction not kept")
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if out.Pred[y*16+x] != tf.Src.Pix[tf.Src.Offset(16+x, 16+y)] {
				t.Fatalf("prediction differs from source at (%d,%d)", x, y)
			}
		}
	}
}
