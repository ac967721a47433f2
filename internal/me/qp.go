package me

// MaxQP is the largest H.264 quantizer.
const MaxQP = 51

// lambdaTable holds the motion lambda per quantizer, round(2^((qp-12)/6))
// with zero below qp 12.
var lambdaTable = [MaxQP + 1]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 4,
	4, 4, 5, 6, 6, 7, 8, 9, 10, 11, 13, 14,
	16, 18, 20, 23, 25, 29, 32, 36, 40, 45, 51, 57,
	64, 72, 81, 91,
}

// LambdaForQP returns the multiplier applied to motion-vector bit costs.
func LambdaForQP(qp int) int {
	return int(lambdaTable[clampInt(qp, 0, MaxQP)])
}

// quantScale is the forward 4x4 quantizer scale per qp%6 for the three
// coefficient position classes: even/even, odd/odd and mixed.
var quantScale = [6][3]int{
	{13107, 5243, 8066},
	{11916, 4660, 7490},
	{10082, 4194, 6554},
	{9362, 3647, 5825},
	{8192, 3355, 5243},
	{7282, 2893, 4559},
}

// quantMatrix expands quantScale into raster order for one qp%6.
func quantMatrix(rem int) [16]int {
	var m [16]int
	for i := range m {
		r, c := i>>2, i&3
		switch {
		case r&1 == 0 && c&1 == 0:
			m[i] = quantScale[rem][0]
		case r&1 == 1 && c&1 == 1:
			m[i] = quantScale[rem][1]
		default:
			m[i] = quantScale[rem][2]
		}
	}
	return m
}

// SATQDThresholds returns the nine zero-residual thresholds at quantizer qp.
// A coefficient quantizes to zero when |coef| * scale < 2^qbits - deadzone;
// dividing that bound by the scale of each position class gives the
// distortion bound the predictor tests against.
func SATQDThresholds(qp int, intra bool) [9]uint16 {
	qp = clampInt(qp, 0, MaxQP)
	qbits := 15 + qp/6
	deadzone := (1 << qbits) / 6
	if intra {
		deadzone = (1 << qbits) / 3
	}
	t := (1 << qbits) - deadzone
	m := quantMatrix(qp % 6)
	div := [9]int{
		max(m[3], m[11]),
		max(m[1], m[9]),
		m[15],
		m[7],
		max(m[12], m[14]),
		max(m[4], m[6]),
		m[13],
		m[5],
		max(m[0], m[2], m[8], m[10]),
	}
	var th [9]uint16
	for i, d := range div {
		th[i] = uint16(max(t/d, 1))
	}
	return th
}
