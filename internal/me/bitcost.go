package me

// BitCostTable maps a quarter-pel motion-vector component difference to the
// length in bits of its signed exp-Golomb code. It is immutable once built.
type BitCostTable struct {
	bits   []uint8
	center int
}

// NewBitCostTable builds a table covering every difference two vectors inside
// a search window of maxRange full pels can produce.
func NewBitCostTable(maxRange int) *BitCostTable {
	diff := maxRange << 2 << 1
	t := &BitCostTable{
		bits:   make([]uint8, 2*diff+1),
		center: diff,
	}
	t.bits[diff] = 1
	// A value v != 0 has code number 2|v|-1 or 2|v|, both of length
	// 2*floor(log2(|v|))+3.
	for length, lo := 3, 1; lo <= diff; length, lo = length+2, lo<<1 {
		hi := min(2*lo-1, diff)
		for v := lo; v <= hi; v++ {
			t.bits[diff+v] = uint8(length)
			t.bits[diff-v] = uint8(length)
		}
	}
	return t
}

// Bits returns the code length of delta. Deltas outside the table's range
// indicate a caller bug and panic.
func (t *BitCostTable) Bits(delta int) int {
	return int(t.bits[t.center+delta])
}

// Cost returns the bit cost of coding mv against pred.
func (t *BitCostTable) Cost(mv, pred MV) int {
	return t.Bits(int(mv.X)-int(pred.X)) + t.Bits(int(mv.Y)-int(pred.Y))
}

// Range returns the largest absolute delta the table covers.
func (t *BitCostTable) Range() int { return t.center }
