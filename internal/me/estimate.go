package me

import "github.com/deepteams/avcme/internal/dsp"

// sliceOps is the routine set of one slice type.
type sliceOps struct {
	findSkip func(c *Context, s *mbState)
	compute  func(c *Context, s *mbState)
}

var sliceTable = [2]sliceOps{
	SliceP: {findSkip: findPSkip, compute: computeSingleList},
	SliceB: {findSkip: findBSkip, compute: computeMultiList},
}

// searchList runs full-pel and, when enabled, half-pel search for list.
func (c *Context) searchList(s *mbState, list int) {
	c.fullPelSearch(s, list)
	if c.f.Cfg.HalfPel && !s.minSADReached {
		c.subPel(s, list)
	}
}

// takeSkip replaces the searched motion of list by its skip motion when the
// skip is cheaper.
func (s *mbState) takeSkip(list int) {
	sk, p := &s.skip[list], &s.part[list]
	if sk.cost < p.cost {
		p.mv, p.cost, p.distortion = sk.mv, sk.cost, sk.distortion
		p.buf = noBuf
	}
}

// computeSingleList estimates a P macroblock.
func computeSingleList(c *Context, s *mbState) {
	c.candidates(s, L0)
	s.skip[L0].reset()
	c.skipCost(s, L0)
	s.part[L0].reset()
	if !s.minSADReached {
		c.searchList(s, L0)
	}
	s.takeSkip(L0)
}

// computeMultiList estimates a B macroblock: list 0, list 1, then the
// bi-predictive pairs. A minimum-SAD hit ends the list loop early.
func computeMultiList(c *Context, s *mbState) {
	last := L1
	for list := L0; list <= L1; list++ {
		c.candidates(s, list)
		s.skip[list].reset()
		if int(s.skipType) == list {
			c.skipCost(s, list)
		}
		s.part[list].reset()
		if s.minSADReached {
			last = list
			break
		}
		c.searchList(s, list)
	}
	for list := L0; list <= last; list++ {
		s.takeSkip(list)
	}
	if last == L1 && !s.minSADReached {
		c.biPred(s)
	}
}

// EstimateMB estimates the macroblock at (x, y) given its neighbor snapshot
// and minimum-SAD floor, and stores the outcome in out.
func (c *Context) EstimateMB(x, y int, nb *Neighborhood, floor int, out *MBResult) {
	f := c.f
	s := mbState{x: x, y: y, nb: *nb, minSAD: floor}
	mb := dsp.MBSize
	s.srcOff = f.Src.Offset(x*mb, y*mb)
	s.refOff[L0] = f.Ref[L0].Offset(x*mb, y*mb)
	if f.Cfg.Slice == SliceB {
		s.refOff[L1] = f.Ref[L1].Offset(x*mb, y*mb)
	}
	s.rng = f.Cfg.SearchRange(x, y)
	for i := range s.part {
		s.part[i].reset()
	}

	c.prepare(&s)
	c.ops.compute(c, &s)
	c.finish(&s, out)
}

// finish selects the cheapest mode and writes the macroblock result.
func (c *Context) finish(s *mbState, out *MBResult) {
	last := PredL0
	if c.f.Cfg.Slice == SliceB {
		last = PredBi
	}
	mode := PredL0
	for m := PredL1; m <= last; m++ {
		if s.part[m].cost < s.part[mode].cost {
			mode = m
		}
	}

	*out = MBResult{
		Cost:          s.part[mode].cost,
		Distortion:    s.part[mode].distortion,
		SkipMV:        s.skipMV,
		MinSADReached: s.minSADReached,
		MinSAD:        s.minSAD,
	}
	pu := &out.PU
	pu.Mode = mode
	pu.Info[L0].MV = s.part[L0].mv
	pu.Info[L1].MV = s.part[L1].mv
	if mode == PredBi {
		pair := biPairMV(s, s.part[PredBi].pair)
		pu.Info[L0].MV, pu.Info[L1].MV = pair[L0], pair[L1]
	}
	pu.Info[L0].RefIdx = RefUnused
	pu.Info[L1].RefIdx = RefUnused
	if mode != PredL1 {
		pu.Info[L0].RefIdx = 0
	}
	if mode != PredL0 {
		pu.Info[L1].RefIdx = 0
	}
	if c.f.Cfg.Slice == SliceP {
		pu.Info[L1].MV = MV{}
	}

	if p := &s.part[mode]; p.buf != noBuf {
		dsp.CopyBlock(out.Pred[:], dsp.MBSize, c.ring[p.buf][p.bufOff:], dsp.HPStride, dsp.MBSize, dsp.MBSize)
		out.PredValid = true
	}

	if c.f.Cfg.Slice == SliceP {
		out.Skip = IsPSkip(pu, s.skipMV[L0])
	} else {
		out.Skip = IsBSkip(pu, &s.bskip)
	}
}
