package me

// PredictMV returns the motion-vector predictor from the left (A), top (B)
// and top-right (C) neighbors of one list. Neighbors must already be
// normalized: an unusable neighbor carries RefUnused and a zero vector.
//
// If exactly one neighbor references the current picture its vector is the
// predictor; otherwise the component-wise median of the three is used.
func PredictMV(a, b, c MEInfo) MV {
	am, bm, cm := a.RefIdx == 0, b.RefIdx == 0, c.RefIdx == 0
	switch {
	case am && !bm && !cm:
		return a.MV
	case !am && bm && !cm:
		return b.MV
	case !am && !bm && cm:
		return c.MV
	}
	return MV{
		X: median3(a.MV.X, b.MV.X, c.MV.X),
		Y: median3(a.MV.Y, b.MV.Y, c.MV.Y),
	}
}

func median3(a, b, c int16) int16 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

var unusable = MEInfo{RefIdx: RefUnused}

// usable reports whether pu may serve as a motion neighbor for list.
func usable(pu *PU, avail bool, list int) bool {
	return avail && !pu.Intra && pu.Mode != complement(list)
}

// normalizedNeighbors returns the A, B, C motion of list as seen by the
// predictor. A missing top-right is replaced by the top-left neighbor.
func normalizedNeighbors(nb *Neighborhood, list int) (a, b, c MEInfo) {
	a, b, c = unusable, unusable, unusable
	if usable(&nb.Left, nb.Avail.Left, list) {
		a = nb.Left.Info[list]
	}
	if usable(&nb.Top, nb.Avail.Top, list) {
		b = nb.Top.Info[list]
	}
	switch {
	case nb.Avail.TopRight:
		if usable(&nb.TopRight, true, list) {
			c = nb.TopRight.Info[list]
		}
	case usable(&nb.TopLeft, nb.Avail.TopLeft, list):
		c = nb.TopLeft.Info[list]
	}
	return a, b, c
}

// predictList returns the predictor of list for the macroblock described by
// nb. The snapshot itself is not modified.
func predictList(nb *Neighborhood, list int) MV {
	a, b, c := normalizedNeighbors(nb, list)
	return PredictMV(a, b, c)
}
