package dsp

// Unrolled kernels. Each row is consumed in one expression over a
// bounds-checked sub-slice so the compiler drops per-element checks. Row
// ordering and early-exit points match the reference kernels exactly.

func ad(a, b byte) int {
	d := int(a) - int(b)
	m := d >> 63
	return (d ^ m) - m
}

func row16(s, r []byte) int {
	s = s[:16]
	r = r[:16]
	return ad(s[0], r[0]) + ad(s[1], r[1]) + ad(s[2], r[2]) + ad(s[3], r[3]) +
		ad(s[4], r[4]) + ad(s[5], r[5]) + ad(s[6], r[6]) + ad(s[7], r[7]) +
		ad(s[8], r[8]) + ad(s[9], r[9]) + ad(s[10], r[10]) + ad(s[11], r[11]) +
		ad(s[12], r[12]) + ad(s[13], r[13]) + ad(s[14], r[14]) + ad(s[15], r[15])
}

func row8(s, r []byte) int {
	s = s[:8]
	r = r[:8]
	return ad(s[0], r[0]) + ad(s[1], r[1]) + ad(s[2], r[2]) + ad(s[3], r[3]) +
		ad(s[4], r[4]) + ad(s[5], r[5]) + ad(s[6], r[6]) + ad(s[7], r[7])
}

func row4(s, r []byte) int {
	s = s[:4]
	r = r[:4]
	return ad(s[0], r[0]) + ad(s[1], r[1]) + ad(s[2], r[2]) + ad(s[3], r[3])
}

func sad16x16Unrolled(src, ref []byte, srcStride, refStride, maxSAD int) int {
	sad := 0
	for y := 0; y < 16; y++ {
		sad += row16(src[y*srcStride:], ref[y*refStride:])
		if sad > maxSAD {
			break
		}
	}
	return sad
}

func sad16x8Unrolled(src, ref []byte, srcStride, refStride, maxSAD int) int {
	sad := 0
	for y := 0; y < 8; y++ {
		sad += row16(src[y*srcStride:], ref[y*refStride:])
		if sad > maxSAD {
			break
		}
	}
	return sad
}

func sad8x8Unrolled(src, ref []byte, srcStride, refStride, maxSAD int) int {
	sad := 0
	for y := 0; y < 8; y++ {
		sad += row8(src[y*srcStride:], ref[y*refStride:])
		if sad > maxSAD {
			break
		}
	}
	return sad
}

func sad4x4Unrolled(src, ref []byte, srcStride, refStride, _ int) int {
	return row4(src, ref) +
		row4(src[srcStride:], ref[refStride:]) +
		row4(src[2*srcStride:], ref[2*refStride:]) +
		row4(src[3*srcStride:], ref[3*refStride:])
}

func evenRows16(src, ref []byte, srcStride, refStride int) int {
	sad := 0
	for y := 0; y < 16; y += 2 {
		sad += row16(src[y*srcStride:], ref[y*refStride:])
	}
	return sad
}

func sad16x16FastUnrolled(src, ref []byte, srcStride, refStride, _ int) int {
	return evenRows16(src, ref, srcStride, refStride) << 1
}

func sad16x16EA8Unrolled(src, ref []byte, srcStride, refStride, maxSAD int) int {
	sad := evenRows16(src, ref, srcStride, refStride)
	if sad > maxSAD {
		return sad
	}
	return sad + evenRows16(src[srcStride:], ref[refStride:], srcStride, refStride)
}

func sad4DiamondUnrolled(src []byte, srcStride int, ref []byte, refOff, refStride int, sad *[4]int) {
	var l, r, t, b int
	for y := 0; y < 16; y++ {
		s := src[y*srcStride:]
		o := refOff + y*refStride
		l += row16(s, ref[o-1:])
		r += row16(s, ref[o+1:])
		t += row16(s, ref[o-refStride:])
		b += row16(s, ref[o+refStride:])
	}
	sad[0], sad[1], sad[2], sad[3] = l, r, t, b
}

func subPelSAD16x16Unrolled(src []byte, srcStride int, halfX, halfY, halfXY []byte, sad *[8]int) {
	const s = HPStride
	var acc [8]int
	for y := 0; y < 16; y++ {
		p := src[y*srcStride:]
		o := y * s
		acc[0] += row16(p, halfX[o+1:])
		acc[1] += row16(p, halfX[o:])
		acc[2] += row16(p, halfY[o+s:])
		acc[3] += row16(p, halfY[o:])
		acc[4] += row16(p, halfXY[o+s+1:])
		acc[5] += row16(p, halfXY[o+s:])
		acc[6] += row16(p, halfXY[o+1:])
		acc[7] += row16(p, halfXY[o:])
	}
	*sad = acc
}

func avgBlockUnrolled(dst []byte, dstStride int, a []byte, aStride int, b []byte, bStride int, w, h int) {
	for y := 0; y < h; y++ {
		d := dst[y*dstStride : y*dstStride+w]
		pa := a[y*aStride : y*aStride+w]
		pb := b[y*bStride : y*bStride+w]
		for x := range d {
			d[x] = byte((uint(pa[x]) + uint(pb[x]) + 1) >> 1)
		}
	}
}
