package me

// Full-pel search: skip evaluation, seed evaluation and diamond refinement.

func (c *Context) src(s *mbState) []byte {
	return c.f.Src.Pix[s.srcOff:]
}

// refAt returns the list reference data at full-pel displacement v.
func (c *Context) refAt(s *mbState, list int, v MV) []byte {
	r := &c.f.Ref[list]
	return r.Pix[s.refOff[list]+int(v.Y)*r.Stride+int(v.X):]
}

// mvCost returns the rate term of coding the quarter-pel vector v.
func (c *Context) mvCost(s *mbState, list int, v MV) int {
	return c.f.Cfg.Lambda * c.f.Bits.Cost(v, s.pred[list])
}

// checkFloor records that the distortion d reached the minimum-SAD floor.
func (s *mbState) checkFloor(d int) bool {
	if d <= s.minSAD {
		s.minSADReached = true
		s.minSAD = d
	}
	return s.minSADReached
}

// skipCost evaluates the skip vector of list. With the zero-residual
// predictor enabled, a block certain to code no residual ends the search
// with its distortion counted as zero.
func (c *Context) skipCost(s *mbState, list int) {
	cfg := c.f.Cfg
	p := &s.skip[list]
	v := s.rng.clip(fullPel(s.skipMV[list]))
	ref := c.refAt(s, list, v)
	src := c.src(s)

	var d int
	if cfg.SATQD {
		var nonZero bool
		d, nonZero = c.f.Metrics.SATQD16x16(src, ref, c.f.Src.Stride, c.f.Ref[list].Stride, &cfg.Thresholds)
		if !nonZero {
			d = 0
			s.minSADReached = true
			s.minSAD = 0
		}
	} else {
		d = c.sad16(src, ref, c.f.Src.Stride, c.f.Ref[list].Stride, maxCost)
	}
	s.checkFloor(d)

	q := qpel(v)
	bits := c.f.Bits.Cost(q, s.pred[list]) - cfg.SkipBias[cfg.Slice]
	p.mv = q
	p.distortion = d
	p.cost = d + cfg.Lambda*bits
}

// evalSeeds picks the cheapest distinct seed of list as the starting point
// of the diamond.
func (c *Context) evalSeeds(s *mbState, list int) {
	l := &s.cands[list]
	p := &s.part[list]
	src := c.src(s)
	srcStride, refStride := c.f.Src.Stride, c.f.Ref[list].Stride
	for i := 0; i < l.n; i++ {
		if l.seenBefore(i) {
			continue
		}
		v := l.mv[i]
		d := c.sad16(src, c.refAt(s, list, v), srcStride, refStride, p.cost)
		cost := d + c.mvCost(s, list, qpel(v))
		if cost < p.cost {
			p.mv, p.cost, p.distortion = v, cost, d
		}
	}
	s.checkFloor(p.distortion)
}

// diamondStep lists the unit moves in DiamondSADFunc order.
var diamondStep = [4]MV{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// diamond refines the full-pel vector of list by unit steps. Each step moves
// to the strictly cheapest neighbor; search ends when no neighbor improves,
// a neighbor would leave the window, or the iteration budget runs out.
func (c *Context) diamond(s *mbState, list int) {
	cfg := c.f.Cfg
	p := &s.part[list]
	win := Range{
		W: max(s.rng.W, int(p.mv.X)-cfg.SearchX),
		E: min(s.rng.E, int(p.mv.X)+cfg.SearchX),
		N: max(s.rng.N, int(p.mv.Y)-cfg.SearchY),
		S: min(s.rng.S, int(p.mv.Y)+cfg.SearchY),
	}
	ref := &c.f.Ref[list]
	src := c.src(s)
	var sad [4]int
	for iters := cfg.diamondIterations(); p.steps < iters; p.steps++ {
		x, y := int(p.mv.X), int(p.mv.Y)
		if x-1 < win.W || x+1 > win.E || y-1 < win.N || y+1 > win.S {
			return
		}
		c.f.Metrics.SAD4Diamond(src, c.f.Src.Stride, ref.Pix, s.refOff[list]+y*ref.Stride+x, ref.Stride, &sad)
		best := -1
		for k, d := range sad {
			v := MV{X: p.mv.X + diamondStep[k].X, Y: p.mv.Y + diamondStep[k].Y}
			cost := d + c.mvCost(s, list, qpel(v))
			if cost < p.cost {
				best = k
				p.cost, p.distortion = cost, d
			}
		}
		if best < 0 {
			return
		}
		p.mv.X += diamondStep[best].X
		p.mv.Y += diamondStep[best].Y
		if s.checkFloor(p.distortion) {
			p.steps++
			return
		}
	}
}

// fullPelSearch runs seed evaluation and diamond refinement for list and leaves the
// result in quarter-pel units.
func (c *Context) fullPelSearch(s *mbState, list int) {
	c.evalSeeds(s, list)
	if !s.minSADReached {
		c.diamond(s, list)
	}
	p := &s.part[list]
	p.mv = qpel(p.mv)
}
