package me

import "github.com/deepteams/avcme/internal/dsp"

// subpelStep lists the half-pel moves, in quarter-pel units, in
// SubPelSADFunc order.
var subpelStep = [8]MV{
	{X: 2}, {X: -2}, {Y: 2}, {Y: -2},
	{X: 2, Y: 2}, {X: -2, Y: 2}, {X: 2, Y: -2}, {X: -2, Y: -2},
}

// planeBuffers picks three ring entries for the half-pel planes of list,
// leaving alone the entry that holds an earlier list's winning prediction.
func planeBuffers(s *mbState, list int) [3]int {
	bufs := [3]int{0, 1, 2}
	if list == L1 {
		if held := s.part[L0].buf; held >= 0 && held < 3 {
			bufs[held] = 3
		}
	}
	return bufs
}

// subPel refines the quarter-pel vector of list to the best of the eight
// surrounding half-pel positions.
func (c *Context) subPel(s *mbState, list int) {
	p := &s.part[list]
	bufs := planeBuffers(s, list)
	hx, hy, hxy := c.ring[bufs[0]], c.ring[bufs[1]], c.ring[bufs[2]]

	ref := &c.f.Ref[list]
	full := MV{X: p.mv.X >> 2, Y: p.mv.Y >> 2}
	c.f.Metrics.HalfPel(ref.Pix, s.refOff[list]+int(full.Y)*ref.Stride+int(full.X), ref.Stride, hx, hy, hxy)

	var sad [8]int
	c.f.Metrics.SubPelSAD16x16(c.src(s), c.f.Src.Stride, hx, hy, hxy, &sad)

	best := -1
	bestMV := p.mv
	for i, d := range sad {
		v := MV{X: p.mv.X + subpelStep[i].X, Y: p.mv.Y + subpelStep[i].Y}
		cost := d + c.mvCost(s, list, v)
		if cost < p.cost {
			best = i
			bestMV = v
			p.cost, p.distortion = cost, d
		}
	}
	if best < 0 {
		return
	}
	plane, off := dsp.SubPelOffset(best)
	p.mv = bestMV
	p.buf = bufs[plane]
	p.bufOff = off
}
