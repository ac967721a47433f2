package me

// PSkipMV returns the motion vector a P macroblock must carry to be coded as
// skip. It is zero when the left or top neighbor is unavailable, or when
// either of them references the current picture with a zero vector.
// Otherwise it is the list-0 predictor.
func PSkipMV(nb *Neighborhood, pred MV) MV {
	if !nb.Avail.Left || !nb.Avail.Top {
		return MV{}
	}
	if zeroRef(&nb.Left) || zeroRef(&nb.Top) {
		return MV{}
	}
	return pred
}

func zeroRef(pu *PU) bool {
	return !pu.Intra && pu.Info[L0].RefIdx == 0 && pu.Info[L0].MV.IsZero()
}

// IsPSkip reports whether a P macroblock with the final motion pu is a skip
// candidate.
func IsPSkip(pu *PU, skip MV) bool {
	return pu.Mode == PredL0 && pu.Info[L0].MV == skip
}

// BSkipParams describes the direct-mode motion of a B macroblock.
type BSkipParams struct {
	// SpatialMV is the spatial direct vector of each list.
	SpatialMV [2]MV
	// TemporalMV is the temporal direct vector of each list.
	TemporalMV [2]MV
	// ModeAvail has bit i set when a causal neighbor predicts from list i.
	ModeAvail uint8
	// Type is the prediction direction spatial direct implies.
	Type PredMode
	// ColZero reports a co-located block that is stationary.
	ColZero bool
}

// colocatedMotion returns the vector and reference index of the co-located
// block that temporal direct and the stationarity test read.
func colocatedMotion(col *PU) (MV, int8) {
	if col == nil || col.Intra {
		return MV{}, RefUnused
	}
	if col.Mode != PredL1 {
		return col.Info[L0].MV, 0
	}
	return col.Info[L1].MV, 0
}

// BSkip derives the spatial and temporal direct parameters of a B macroblock.
// pred holds the predictor of each list; col is the co-located block of the
// list-1 reference picture, nil when it is unknown.
func BSkip(nb *Neighborhood, col *PU, pred [2]MV, poc POCInfo) BSkipParams {
	var p BSkipParams

	mvCol, refCol := colocatedMotion(col)
	p.ColZero = refCol == 0 && absInt(int(mvCol.X)) <= 1 && absInt(int(mvCol.Y)) <= 1

	c, cAvail := &nb.TopRight, nb.Avail.TopRight
	if !cAvail {
		c, cAvail = &nb.TopLeft, nb.Avail.TopLeft
	}
	neighbors := [3]struct {
		pu    *PU
		avail bool
	}{{&nb.Left, nb.Avail.Left}, {&nb.Top, nb.Avail.Top}, {c, cAvail}}
	for list := L0; list <= L1; list++ {
		for _, n := range neighbors {
			if usable(n.pu, n.avail, list) && n.pu.Info[list].Uses() {
				p.ModeAvail |= 1 << list
			}
		}
	}

	switch p.ModeAvail {
	case 1:
		p.Type = PredL0
	case 2:
		p.Type = PredL1
	default:
		p.Type = PredBi
	}

	for list := L0; list <= L1; list++ {
		if p.ModeAvail&(1<<list) != 0 && !p.ColZero {
			p.SpatialMV[list] = pred[list]
		}
	}

	tb := clampInt(poc.Cur-poc.Ref0, -128, 127)
	td := clampInt(poc.Ref1-poc.Ref0, -128, 127)
	scale := TemporalScale(tb, td)
	l0x := clampMV((scale*int(mvCol.X)+128)>>8, MaxMVX)
	l0y := clampMV((scale*int(mvCol.Y)+128)>>8, MaxMVY)
	p.TemporalMV[L0] = MV{X: int16(l0x), Y: int16(l0y)}
	p.TemporalMV[L1] = MV{X: int16(clampMV(l0x-int(mvCol.X), MaxMVX)), Y: int16(clampMV(l0y-int(mvCol.Y), MaxMVY))}
	return p
}

// Largest legal quarter-pel vector components.
const (
	MaxMVX = 8191
	MaxMVY = 2047
)

// clampMV limits a quarter-pel component to [-lim-1, lim] and rounds it down
// to a full-pel position.
func clampMV(v, lim int) int {
	return clampInt(v, -lim-1, lim) &^ 3
}

// TemporalScale returns the distance scale factor of temporal direct
// prediction for clipped POC distances tb (current to list-0 reference) and
// td (list-1 to list-0 reference). td must not be zero.
func TemporalScale(tb, td int) int {
	if td == 0 {
		panic("me: temporal direct with coincident reference pictures")
	}
	tx := (16384 + absInt(td/2)) / td
	return clampInt((tb*tx+32)>>6, -1024, 1023)
}

// IsBSkip reports whether a B macroblock with the final motion pu matches the
// spatial direct motion described by p.
func IsBSkip(pu *PU, p *BSkipParams) bool {
	switch pu.Mode {
	case PredBi:
		return (p.ModeAvail == 0 || p.ModeAvail == 3) &&
			pu.Info[L0].MV == p.SpatialMV[L0] && pu.Info[L1].MV == p.SpatialMV[L1]
	case PredL0:
		return p.ModeAvail == 1 && pu.Info[L0].MV == p.SpatialMV[L0]
	case PredL1:
		return p.ModeAvail == 2 && pu.Info[L1].MV == p.SpatialMV[L1]
	}
	return false
}
