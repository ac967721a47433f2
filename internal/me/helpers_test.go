package me

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/deepteams/avcme/internal/dsp"
)

// newPlane allocates a padded plane for a w x h picture and fills every
// pixel, padding included, from fn.
func newPlane(w, h int, fn func(x, y int) byte) Plane {
	stride := w + 2*PlanePad
	p := Plane{
		Pix:    make([]byte, stride*(h+2*PlanePad)),
		Stride: stride,
		Origin: PlanePad*stride + PlanePad,
	}
	for y := -PlanePad; y < h+PlanePad; y++ {
		for x := -PlanePad; x < w+PlanePad; x++ {
			p.Pix[p.Offset(x, y)] = fn(x, y)
		}
	}
	return p
}

func flat(v byte) func(x, y int) byte {
	return func(int, int) byte { return v }
}

// waves is a smooth texture whose SAD surface has a single basin for shifts
// well below its periods.
func waves(x, y int) byte {
	v := 128 + 50*math.Sin(2*math.Pi*float64(x)/32) + 50*math.Sin(2*math.Pi*float64(y)/24)
	return byte(math.Round(v))
}

func shifted(fn func(x, y int) byte, dx, dy int) func(x, y int) byte {
	return func(x, y int) byte { return fn(x+dx, y+dy) }
}

// noise returns a texture of independent random pixels.
func noise(seed int64) func(x, y int) byte {
	rng := rand.New(rand.NewSource(seed))
	vals := make(map[[2]int]byte)
	return func(x, y int) byte {
		k := [2]int{x, y}
		v, ok := vals[k]
		if !ok {
			v = byte(rng.Intn(256))
			vals[k] = v
		}
		return v
	}
}

type testFrame struct {
	*Frame
	w, h int
}

// newTestFrame wires a frame of w x h pixels. ref1 may be nil for P pictures.
func newTestFrame(t testing.TB, cfg *Config, src, ref0, ref1 func(x, y int) byte) *testFrame {
	t.Helper()
	w, h := cfg.WidthMBs*dsp.MBSize, cfg.HeightMBs*dsp.MBSize
	f := &Frame{
		Cfg:      cfg,
		Bits:     NewBitCostTable(max(cfg.MaxSearchX, cfg.MaxSearchY)),
		Metrics:  dsp.Select(dsp.BackendGeneric, nil),
		Src:      newPlane(w, h, src),
		Field:    make([]MBResult, cfg.WidthMBs*cfg.HeightMBs),
		Progress: NewCompletionMap(cfg.WidthMBs, cfg.HeightMBs),
	}
	f.Ref[L0] = newPlane(w, h, ref0)
	if ref1 != nil {
		f.Ref[L1] = newPlane(w, h, ref1)
	}
	return &testFrame{Frame: f, w: w, h: h}
}

// runSerial estimates the whole frame on one context.
func (tf *testFrame) runSerial(perJob int) {
	c := NewContext()
	c.Bind(tf.Frame)
	for _, r := range Runs(tf.Cfg.WidthMBs, tf.Cfg.HeightMBs, perJob) {
		c.EstimateRun(r)
	}
}

// runParallel estimates the frame with workers goroutines pulling runs in
// raster order.
func (tf *testFrame) runParallel(workers, perJob int) {
	runs := make(chan Run)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewContext()
			c.Bind(tf.Frame)
			for r := range runs {
				c.EstimateRun(r)
			}
		}()
	}
	for _, r := range Runs(tf.Cfg.WidthMBs, tf.Cfg.HeightMBs, perJob) {
		runs <- r
	}
	close(runs)
	wg.Wait()
}

func (tf *testFrame) at(x, y int) *MBResult {
	return &tf.Field[y*tf.Cfg.WidthMBs+x]
}

// newMBState prepares the per-macroblock state the search stages expect,
// without running the orchestrator.
func newMBState(c *Context, x, y int, nb Neighborhood) *mbState {
	f := c.f
	s := &mbState{x: x, y: y, nb: nb, minSAD: f.Cfg.MinSAD}
	s.srcOff = f.Src.Offset(x*dsp.MBSize, y*dsp.MBSize)
	s.refOff[L0] = f.Ref[L0].Offset(x*dsp.MBSize, y*dsp.MBSize)
	s.refOff[L1] = f.Ref[L1].Offset(x*dsp.MBSize, y*dsp.MBSize)
	s.rng = f.Cfg.SearchRange(x, y)
	for i := range s.part {
		s.part[i].reset()
	}
	c.prepare(s)
	return s
}

// reachable reports whether the quarter-pel vector v lies in r or half a pel
// outside it.
func reachable(r Range, v MV) bool {
	x, y := int(v.X), int(v.Y)
	return x >= 4*r.W-2 && x <= 4*r.E+2 && y >= 4*r.N-2 && y <= 4*r.S+2
}
