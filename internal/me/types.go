// Package me implements block motion estimation for 16x16 macroblocks:
// candidate seeding, full-pel diamond search, half-pel refinement, P/B skip
// evaluation and bi-predictive selection.
//
// Motion vectors are stored in quarter-pel units. Full-pel search positions
// are kept in full-pel units and shifted by two before they leave the search.
package me

// MV is a motion vector in quarter-pel units unless stated otherwise.
type MV struct {
	X, Y int16
}

// IsZero reports whether both components are zero.
func (v MV) IsZero() bool { return v.X == 0 && v.Y == 0 }

// List indices.
const (
	L0 = 0
	L1 = 1
)

// PredMode is the prediction direction of a partition.
type PredMode uint8

const (
	PredL0 PredMode = iota
	PredL1
	PredBi
)

func (p PredMode) String() string {
	switch p {
	case PredL0:
		return "L0"
	case PredL1:
		return "L1"
	case PredBi:
		return "BI"
	default:
		return "?"
	}
}

// complement returns the prediction mode that uses only the other list.
func complement(list int) PredMode {
	return PredMode(list ^ 1)
}

// RefUnused marks a list that a partition does not reference. Any
// non-negative reference index names a picture of that list; the engine
// works with one picture per list, index 0.
const RefUnused int8 = -1

// MEInfo is the motion of one list of a partition.
type MEInfo struct {
	RefIdx int8
	MV     MV
}

// Uses reports whether the list is referenced.
func (m MEInfo) Uses() bool { return m.RefIdx >= 0 }

// PU is the motion record of one 16x16 prediction unit.
type PU struct {
	Info  [2]MEInfo
	Mode  PredMode
	Intra bool
}

// SliceType selects the prediction rules of a picture.
type SliceType uint8

const (
	SliceP SliceType = iota
	SliceB
)

func (s SliceType) String() string {
	if s == SliceB {
		return "B"
	}
	return "P"
}

// Availability of the four causal neighbors of a macroblock.
type Availability struct {
	Left, Top, TopRight, TopLeft bool
}

// Neighborhood is the by-value snapshot of the neighbor motion visible to one
// macroblock.
type Neighborhood struct {
	Avail    Availability
	Left     PU
	Top      PU
	TopRight PU
	TopLeft  PU
}

// Range is an inclusive rectangle of full-pel displacements.
type Range struct {
	W, E, N, S int
}

// Contains reports whether the full-pel displacement v lies in r.
func (r Range) Contains(v MV) bool {
	x, y := int(v.X), int(v.Y)
	return x >= r.W && x <= r.E && y >= r.N && y <= r.S
}

// clip clamps the full-pel displacement v into r.
func (r Range) clip(v MV) MV {
	return MV{X: int16(clampInt(int(v.X), r.W, r.E)), Y: int16(clampInt(int(v.Y), r.N, r.S))}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// fullPel rounds a quarter-pel vector to the nearest full-pel position.
func fullPel(v MV) MV {
	return MV{X: (v.X + 2) >> 2, Y: (v.Y + 2) >> 2}
}

// qpel converts a full-pel vector to quarter-pel units.
func qpel(v MV) MV {
	return MV{X: v.X << 2, Y: v.Y << 2}
}

// POCInfo carries the picture order counts needed for temporal direct
// scaling in B slices.
type POCInfo struct {
	Cur, Ref0, Ref1 int
}
