package dsp

// The zero-residual predictor works on each 4x4 sub-block of the 16x16
// difference. Absolute differences are grouped by their position class in
// the 4x4 integer transform:
//
//	s1: corners of rows 0 and 3     s4: middle of rows 0 and 3
//	s2: corners of rows 1 and 2     s3: middle of rows 1 and 2
//
// Linear combinations of these bound the magnitude of each transform
// coefficient class. A sub-block is declared non-zero as soon as any bound
// reaches its threshold. Threshold order is the one produced by the rate
// controller: th[8] bounds the DC term, th[0..7] bound the AC classes.

type satqdGroups struct{ s1, s2, s3, s4 int }

// nonZero reports whether the 4x4 block with the given groups may produce a
// non-zero quantized coefficient.
func (g satqdGroups) nonZero(th *[9]uint16) bool {
	sad1 := g.s1 + g.s2 + g.s3 + g.s4
	sad2 := sad1 << 1
	ls1 := sad2 - (g.s2 + g.s3)
	ls2 := sad2 - (g.s1 + g.s4)
	ls3 := sad2 - (g.s3 + g.s4)
	ls4 := sad2 - (g.s3 - (g.s1 << 1))
	ls5 := sad2 - (g.s4 - (g.s2 << 1))
	ls6 := sad2 - (g.s1 + g.s2)
	ls7 := sad2 - (g.s2 - (g.s4 << 1))
	ls8 := sad2 - (g.s1 - (g.s3 << 1))
	return int(th[8]) <= sad1 ||
		int(th[0]) <= ls2 ||
		int(th[1]) <= ls1 ||
		int(th[2]) <= ls8 ||
		int(th[3]) <= ls5 ||
		int(th[4]) <= ls6 ||
		int(th[5]) <= ls3 ||
		int(th[6]) <= ls7 ||
		int(th[7]) <= ls4
}

func satqd16x16(src, est []byte, srcStride, estStride int, th *[9]uint16) (int, bool) {
	distortion := 0
	nonZero := false
	for by := 0; by < 16; by += 4 {
		for bx := 0; bx < 16; bx += 4 {
			var d [4][4]int
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					d[y][x] = absDiff(src[(by+y)*srcStride+bx+x], est[(by+y)*estStride+bx+x])
				}
			}
			g := satqdGroups{
				s1: d[0][0] + d[0][3] + d[3][0] + d[3][3],
				s2: d[1][0] + d[1][3] + d[2][0] + d[2][3],
				s3: d[1][1] + d[1][2] + d[2][1] + d[2][2],
				s4: d[0][1] + d[0][2] + d[3][1] + d[3][2],
			}
			distortion += g.s1 + g.s2 + g.s3 + g.s4
			if !nonZero && g.nonZero(th) {
				nonZero = true
			}
		}
	}
	return distortion, nonZero
}

func satqd16x16Unrolled(src, est []byte, srcStride, estStride int, th *[9]uint16) (int, bool) {
	distortion := 0
	nonZero := false
	for by := 0; by < 16; by += 4 {
		s0 := src[by*srcStride:]
		s1 := s0[srcStride:]
		s2 := s1[srcStride:]
		s3 := s2[srcStride:]
		e0 := est[by*estStride:]
		e1 := e0[estStride:]
		e2 := e1[estStride:]
		e3 := e2[estStride:]
		for bx := 0; bx < 16; bx += 4 {
			a0, b0 := s0[bx:bx+4], e0[bx:bx+4]
			a1, b1 := s1[bx:bx+4], e1[bx:bx+4]
			a2, b2 := s2[bx:bx+4], e2[bx:bx+4]
			a3, b3 := s3[bx:bx+4], e3[bx:bx+4]
			g := satqdGroups{
				s1: ad(a0[0], b0[0]) + ad(a0[3], b0[3]) + ad(a3[0], b3[0]) + ad(a3[3], b3[3]),
				s2: ad(a1[0], b1[0]) + ad(a1[3], b1[3]) + ad(a2[0], b2[0]) + ad(a2[3], b2[3]),
				s3: ad(a1[1], b1[1]) + ad(a1[2], b1[2]) + ad(a2[1], b2[1]) + ad(a2[2], b2[2]),
				s4: ad(a0[1], b0[1]) + ad(a0[2], b0[2]) + ad(a3[1], b3[1]) + ad(a3[2], b3[2]),
			}
			distortion += g.s1 + g.s2 + g.s3 + g.s4
			if !nonZero && g.nonZero(th) {
				nonZero = true
			}
		}
	}
	return distortion, nonZero
}
