package dsp

// Reference distortion kernels.

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func sadRows(src, ref []byte, srcStride, refStride, w, h, maxSAD int, exit bool) int {
	sad := 0
	for y := 0; y < h; y++ {
		s := src[y*srcStride:]
		r := ref[y*refStride:]
		for x := 0; x < w; x++ {
			sad += absDiff(s[x], r[x])
		}
		if exit && sad > maxSAD {
			return sad
		}
	}
	return sad
}

func sad16x16(src, ref []byte, srcStride, refStride, maxSAD int) int {
	return sadRows(src, ref, srcStride, refStride, 16, 16, maxSAD, true)
}

func sad16x8(src, ref []byte, srcStride, refStride, maxSAD int) int {
	return sadRows(src, ref, srcStride, refStride, 16, 8, maxSAD, true)
}

func sad8x8(src, ref []byte, srcStride, refStride, maxSAD int) int {
	return sadRows(src, ref, srcStride, refStride, 8, 8, maxSAD, true)
}

// sad4x4 never exits early; maxSAD is ignored.
func sad4x4(src, ref []byte, srcStride, refStride, maxSAD int) int {
	return sadRows(src, ref, srcStride, refStride, 4, 4, maxSAD, false)
}

// sad16x16Fast samples even rows and doubles the sum. maxSAD is ignored.
func sad16x16Fast(src, ref []byte, srcStride, refStride, maxSAD int) int {
	return sadRows(src, ref, 2*srcStride, 2*refStride, 16, 8, maxSAD, false) << 1
}

// sad16x16EA8 sums the even rows, returns that partial sum if it already
// exceeds maxSAD, and otherwise adds the odd rows.
func sad16x16EA8(src, ref []byte, srcStride, refStride, maxSAD int) int {
	sad := sadRows(src, ref, 2*srcStride, 2*refStride, 16, 8, maxSAD, false)
	if sad > maxSAD {
		return sad
	}
	return sad + sadRows(src[srcStride:], ref[refStride:], 2*srcStride, 2*refStride, 16, 8, maxSAD, false)
}

func sad4Diamond(src []byte, srcStride int, ref []byte, refOff, refStride int, sad *[4]int) {
	sad[0] = sadRows(src, ref[refOff-1:], srcStride, refStride, 16, 16, 0, false)
	sad[1] = sadRows(src, ref[refOff+1:], srcStride, refStride, 16, 16, 0, false)
	sad[2] = sadRows(src, ref[refOff-refStride:], srcStride, refStride, 16, 16, 0, false)
	sad[3] = sadRows(src, ref[refOff+refStride:], srcStride, refStride, 16, 16, 0, false)
}

func subPelSAD16x16(src []byte, srcStride int, halfX, halfY, halfXY []byte, sad *[8]int) {
	const s = HPStride
	sad[0] = sadRows(src, halfX[1:], srcStride, s, 16, 16, 0, false)
	sad[1] = sadRows(src, halfX, srcStride, s, 16, 16, 0, false)
	sad[2] = sadRows(src, halfY[s:], srcStride, s, 16, 16, 0, false)
	sad[3] = sadRows(src, halfY, srcStride, s, 16, 16, 0, false)
	sad[4] = sadRows(src, halfXY[s+1:], srcStride, s, 16, 16, 0, false)
	sad[5] = sadRows(src, halfXY[s:], srcStride, s, 16, 16, 0, false)
	sad[6] = sadRows(src, halfXY[1:], srcStride, s, 16, 16, 0, false)
	sad[7] = sadRows(src, halfXY, srcStride, s, 16, 16, 0, false)
}

// SubPelOffset returns the byte offset of the block for half-pel position i
// (in SubPelSADFunc order) inside the plane it is read from, and which plane
// that is: 0 for halfX, 1 for halfY, 2 for halfXY.
func SubPelOffset(i int) (plane, off int) {
	switch i {
	case 0:
		return 0, 1
	case 1:
		return 0, 0
	case 2:
		return 1, HPStride
	case 3:
		return 1, 0
	case 4:
		return 2, HPStride + 1
	case 5:
		return 2, HPStride
	case 6:
		return 2, 1
	default:
		return 2, 0
	}
}

func avgBlock(dst []byte, dstStride int, a []byte, aStride int, b []byte, bStride int, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst[y*dstStride+x] = byte((int(a[y*aStride+x]) + int(b[y*bStride+x]) + 1) >> 1)
		}
	}
}
