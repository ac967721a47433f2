package me

// MaxCandidates bounds the seed list: zero, three spatial neighbors and the
// spatial and temporal skip vectors.
const MaxCandidates = 6

// candidateList holds full-pel search seeds.
type candidateList struct {
	mv [MaxCandidates]MV
	n  int
	// Positions of the skip seeds, -1 when absent.
	spatialSkip  int
	temporalSkip int
}

func (l *candidateList) add(v MV) int {
	if l.n == MaxCandidates {
		panic("me: search candidate list overflow")
	}
	l.mv[l.n] = v
	l.n++
	return l.n - 1
}

// seenBefore reports whether the candidate at index i repeats an earlier
// one.
func (l *candidateList) seenBefore(i int) bool {
	for j := 0; j < i; j++ {
		if l.mv[j] == l.mv[i] {
			return true
		}
	}
	return false
}

// prepare computes the predictors and skip parameters of the macroblock.
// B pictures need the predictors of both lists for spatial direct.
func (c *Context) prepare(s *mbState) {
	s.pred[L0] = predictList(&s.nb, L0)
	if c.f.Cfg.Slice == SliceB {
		s.pred[L1] = predictList(&s.nb, L1)
	}
	c.ops.findSkip(c, s)
}

func findPSkip(_ *Context, s *mbState) {
	s.skipMV[L0] = PSkipMV(&s.nb, s.pred[L0])
	s.skipType = PredL0
}

func findBSkip(c *Context, s *mbState) {
	var col *PU
	if c.f.Colocated != nil {
		col = &c.f.Colocated[s.y*c.f.Cfg.WidthMBs+s.x]
	}
	s.bskip = BSkip(&s.nb, col, s.pred, c.f.Cfg.POC)
	s.skipMV = s.bskip.SpatialMV
	s.skipType = s.bskip.Type
}

// candidates fills the seed list of list. Seeds are full-pel and lie inside
// the search range.
func (c *Context) candidates(s *mbState, list int) {
	l := &s.cands[list]
	*l = candidateList{spatialSkip: -1, temporalSkip: -1}
	nb := &s.nb
	seed := func(pu *PU) {
		l.add(s.rng.clip(fullPel(pu.Info[list].MV)))
	}

	l.add(MV{})
	if usable(&nb.Left, nb.Avail.Left, list) {
		seed(&nb.Left)
	}
	if usable(&nb.Top, nb.Avail.Top, list) {
		seed(&nb.Top)
	}
	if usable(&nb.TopRight, nb.Avail.TopRight, list) {
		seed(&nb.TopRight)
	} else if usable(&nb.TopLeft, nb.Avail.TopLeft, list) {
		seed(&nb.TopLeft)
	}

	l.spatialSkip = l.add(s.rng.clip(fullPel(s.skipMV[list])))
	if c.f.Cfg.Slice == SliceB {
		l.temporalSkip = l.add(s.rng.clip(fullPel(s.bskip.TemporalMV[list])))
	}
}
