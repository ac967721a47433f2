// Package dsp holds the pixel kernels used by motion estimation: block
// distortion metrics, the zero-residual predictor, half-pel interpolation and
// bi-predictive averaging.
//
// Kernels are reached through a Metrics function table. A table is chosen
// once per estimator (see Select) so that the search loops never branch on
// backend or speed settings.
package dsp

// MBSize is the luma macroblock edge length.
const MBSize = 16

// Half-pel scratch plane geometry. Every plane produced by a HalfPelFunc uses
// HPStride as row stride and holds at most HPRows rows of HPStride bytes.
const (
	HPStride  = 32
	HPRows    = MBSize + 1
	HPBufSize = HPStride * HPRows
)

// SADFunc returns the sum of absolute differences between the block at src
// and the block at ref. Both slices start at the block origin. Variants that
// terminate early stop once the running sum exceeds maxSAD and return the
// partial sum, which is then strictly greater than maxSAD.
type SADFunc func(src, ref []byte, srcStride, refStride, maxSAD int) int

// DiamondSADFunc computes the 16x16 SAD at the four unit-step neighbors of the
// reference position refOff, in the order left, right, top, bottom.
type DiamondSADFunc func(src []byte, srcStride int, ref []byte, refOff, refStride int, sad *[4]int)

// SubPelSADFunc computes the 16x16 SAD at the eight half-pel positions around a
// full-pel position, using the planes produced by a HalfPelFunc. The output
// order is +x, -x, +y, -y, (+x,+y), (-x,+y), (+x,-y), (-x,-y).
type SubPelSADFunc func(src []byte, srcStride int, halfX, halfY, halfXY []byte, sad *[8]int)

// SATQDFunc returns the 16x16 SAD together with a flag that is false only when
// every 4x4 sub-block is certain to quantize to an all-zero residual under the
// nine per-position thresholds th.
type SATQDFunc func(src, est []byte, srcStride, estStride int, th *[9]uint16) (distortion int, nonZero bool)

// HalfPelFunc fills the three half-pel planes around the 16x16 block at refOff.
//
//	halfX:  16 rows x 17 columns, column c sits between full pels c-1 and c
//	halfY:  17 rows x 16 columns, row r sits between full pels r-1 and r
//	halfXY: 17 rows x 17 columns, both offsets applied
//
// The reference must have at least 3 readable pixels beyond the block plus
// one on every side.
type HalfPelFunc func(ref []byte, refOff, refStride int, halfX, halfY, halfXY []byte)

// AvgFunc writes the rounded average (a+b+1)>>1 of two w x h blocks to dst.
type AvgFunc func(dst []byte, dstStride int, a []byte, aStride int, b []byte, bStride int, w, h int)

// SADMode selects the 16x16 distortion variant used by the search.
type SADMode int

const (
	// SADFull evaluates every row and exits once the partial sum exceeds the
	// ceiling.
	SADFull SADMode = iota
	// SADEarlyExit8 evaluates even rows, checks the ceiling, then odd rows.
	SADEarlyExit8
	// SADFast evaluates even rows only and doubles the result.
	SADFast
)

func (m SADMode) String() string {
	switch m {
	case SADFull:
		return "full"
	case SADEarlyExit8:
		return "ea8"
	case SADFast:
		return "fast"
	default:
		return "unknown"
	}
}

// Metrics is a complete set of kernels for one backend.
type Metrics struct {
	Backend Backend

	SAD16x16     SADFunc
	SAD16x16Fast SADFunc
	SAD16x16EA8  SADFunc
	SAD16x8      SADFunc
	SAD8x8       SADFunc
	SAD4x4       SADFunc

	SAD4Diamond    DiamondSADFunc
	SubPelSAD16x16 SubPelSADFunc
	SATQD16x16     SATQDFunc

	HalfPel HalfPelFunc
	Avg     AvgFunc
}

// SAD16 returns the 16x16 distortion kernel for mode.
func (m *Metrics) SAD16(mode SADMode) SADFunc {
	switch mode {
	case SADFast:
		return m.SAD16x16Fast
	case SADEarlyExit8:
		return m.SAD16x16EA8
	default:
		return m.SAD16x16
	}
}

// CopyBlock copies a w x h block.
func CopyBlock(dst []byte, dstStride int, src []byte, srcStride int, w, h int) {
	for y := 0; y < h; y++ {
		copy(dst[y*dstStride:y*dstStride+w], src[y*srcStride:y*srcStride+w])
	}
}

func clip8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
