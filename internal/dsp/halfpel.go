package dsp

// Six-tap (1, -5, 20, 20, -5, 1) half-sample interpolation.

func tap6(p []byte, o, step int) int {
	return int(p[o-2*step]) - 5*int(p[o-step]) + 20*int(p[o]) +
		20*int(p[o+step]) - 5*int(p[o+2*step]) + int(p[o+3*step])
}

func halfPel16x16(ref []byte, refOff, refStride int, halfX, halfY, halfXY []byte) {
	const s = HPStride
	// halfX: sample between columns c-1 and c.
	for y := 0; y < 16; y++ {
		o := refOff + y*refStride - 1
		for x := 0; x < 17; x++ {
			halfX[y*s+x] = clip8((tap6(ref, o+x, 1) + 16) >> 5)
		}
	}
	// halfY: sample between rows r-1 and r.
	for y := 0; y < 17; y++ {
		o := refOff + (y-1)*refStride
		for x := 0; x < 16; x++ {
			halfY[y*s+x] = clip8((tap6(ref, o+x, refStride) + 16) >> 5)
		}
	}
	// halfXY from unrounded vertical intermediates; 22 columns cover the
	// horizontal taps of 17 outputs.
	var mid [22]int
	for y := 0; y < 17; y++ {
		o := refOff + (y-1)*refStride - 3
		for x := range mid {
			mid[x] = tap6(ref, o+x, refStride)
		}
		for x := 0; x < 17; x++ {
			v := mid[x] - 5*mid[x+1] + 20*mid[x+2] + 20*mid[x+3] - 5*mid[x+4] + mid[x+5]
			halfXY[y*s+x] = clip8((v + 512) >> 10)
		}
	}
}
