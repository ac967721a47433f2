package dsp

// BT.601 studio-range luma in 16-bit fixed point:
// Y = 16 + 0.2569 R + 0.5044 G + 0.0979 B.
const (
	lumaFix  = 16
	lumaHalf = 1 << (lumaFix - 1)
	lumaR    = 16839
	lumaG    = 33059
	lumaB    = 6420
	lumaBias = 16 << lumaFix
)

// RGBToY converts 8-bit R, G, B to studio-range luma.
func RGBToY(r, g, b int) uint8 {
	return uint8((lumaR*r + lumaG*g + lumaB*b + lumaHalf + lumaBias) >> lumaFix)
}

// RGBA16ToY converts the 16-bit channels returned by color.Color.RGBA. Alpha
// is ignored.
func RGBA16ToY(r, g, b uint32) uint8 {
	return RGBToY(int(r>>8), int(g>>8), int(b>>8))
}

// ExtendEdges replicates the border pixels of the w x h picture whose pixel
// (0,0) is at origin: left and right columns outward by the given widths,
// then the extended top and bottom rows outward by the given heights.
func ExtendEdges(pix []byte, origin, stride, w, h, left, right, top, bottom int) {
	for y := 0; y < h; y++ {
		row := pix[origin+y*stride-left : origin+y*stride+w+right]
		l, r := row[left], row[left+w-1]
		for i := 0; i < left; i++ {
			row[i] = l
		}
		for i := left + w; i < len(row); i++ {
			row[i] = r
		}
	}
	first := pix[origin-left : origin+w+right]
	last := pix[origin+(h-1)*stride-left : origin+(h-1)*stride+w+right]
	for i := 1; i <= top; i++ {
		copy(pix[origin-i*stride-left:], first)
	}
	for i := 1; i <= bottom; i++ {
		copy(pix[origin+(h-1+i)*stride-left:], last)
	}
}
