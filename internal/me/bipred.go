package me

import "github.com/deepteams/avcme/internal/dsp"

// biPairs is the number of bi-predictive candidate pairs: spatial skip,
// temporal skip and the best single-list vectors.
const biPairs = 3

// freeBuffers returns the two ring entries not holding a list winner.
func freeBuffers(s *mbState) [2]int {
	var free [2]int
	j := 0
	for i := 0; i < subpelBuffers && j < 2; i++ {
		if i != s.part[L0].buf && i != s.part[L1].buf {
			free[j] = i
			j++
		}
	}
	return free
}

// biPairMV returns the quarter-pel vectors of candidate pair i.
func biPairMV(s *mbState, i int) [2]MV {
	var v [2]MV
	for list := L0; list <= L1; list++ {
		l := &s.cands[list]
		switch i {
		case 0:
			v[list] = qpel(l.mv[l.spatialSkip])
		case 1:
			v[list] = qpel(l.mv[l.temporalSkip])
		default:
			v[list] = s.part[list].mv
		}
	}
	return v
}

// predBlock returns the prediction of list for the quarter-pel vector v.
// Fractional vectors are only produced by sub-pel refinement, whose winning
// block is still in the ring.
func (c *Context) predBlock(s *mbState, list int, v MV) ([]byte, int) {
	if v.X&3 != 0 || v.Y&3 != 0 {
		p := &s.part[list]
		return c.ring[p.buf][p.bufOff:], dsp.HPStride
	}
	return c.refAt(s, list, MV{X: v.X >> 2, Y: v.Y >> 2}), c.f.Ref[list].Stride
}

// biPred evaluates the averaged prediction of each candidate pair. The
// winning average stays in its ring entry; later pairs write to the other
// free entry.
func (c *Context) biPred(s *mbState) {
	cfg := c.f.Cfg
	p := &s.part[PredBi]
	p.reset()
	free := freeBuffers(s)
	dst := 0
	src := c.src(s)
	for i := 0; i < biPairs; i++ {
		v := biPairMV(s, i)
		a, aStride := c.predBlock(s, L0, v[L0])
		b, bStride := c.predBlock(s, L1, v[L1])
		out := c.ring[free[dst]]
		c.f.Metrics.Avg(out, dsp.HPStride, a, aStride, b, bStride, dsp.MBSize, dsp.MBSize)
		d := c.sad16(src, out, c.f.Src.Stride, dsp.HPStride, maxCost)

		bits := c.f.Bits.Cost(v[L0], s.pred[L0]) + c.f.Bits.Cost(v[L1], s.pred[L1])
		if i == 0 && s.skipType == PredBi {
			bits -= cfg.SkipBias[SliceB]
		}
		cost := d + cfg.Lambda*bits
		if cost < p.cost {
			p.cost, p.distortion = cost, d
			p.pair = i
			p.buf = free[dst]
			p.bufOff = 0
			dst ^= 1
		}
	}
}
