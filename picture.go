package avcme

import (
	"fmt"
	"image"

	"github.com/deepteams/avcme/internal/dsp"
	"github.com/deepteams/avcme/internal/me"
	"github.com/deepteams/avcme/internal/pool"
)

// Picture is an 8-bit luma picture stored with the border the search reads
// beyond the visible area. Pictures whose size is not a multiple of 16 are
// extended to whole macroblocks by edge replication.
type Picture struct {
	width, height int
	plane         me.Plane
	buf           []byte
}

// NewPicture allocates a black picture of the given size.
func NewPicture(width, height int) (*Picture, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	mbW, mbH := mbCount(width), mbCount(height)
	stride := mbW*dsp.MBSize + 2*me.PlanePad
	size := stride * (mbH*dsp.MBSize + 2*me.PlanePad)
	p := &Picture{
		width:  width,
		height: height,
		buf:    pool.Get(size),
	}
	p.plane = me.Plane{Pix: p.buf, Stride: stride, Origin: me.PlanePad*stride + me.PlanePad}
	clear(p.buf)
	return p, nil
}

// PictureFromLuma copies a width x height luma plane whose rows start
// stride bytes apart.
func PictureFromLuma(pix []byte, stride, width, height int) (*Picture, error) {
	p, err := NewPicture(width, height)
	if err != nil {
		return nil, err
	}
	if stride < width || len(pix) < (height-1)*stride+width {
		p.Release()
		return nil, fmt.Errorf("%w: %d bytes with stride %d for %dx%d", ErrInvalidDimensions, len(pix), stride, width, height)
	}
	for y := 0; y < height; y++ {
		copy(p.row(y), pix[y*stride:y*stride+width])
	}
	p.Extend()
	return p, nil
}

// PictureFromImage converts img to luma. Gray and YCbCr images are copied
// directly; other images are converted with BT.601 coefficients.
func PictureFromImage(img image.Image) (*Picture, error) {
	b := img.Bounds()
	p, err := NewPicture(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	switch m := img.(type) {
	case *image.Gray:
		for y := 0; y < p.height; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(p.row(y), m.Pix[off:off+p.width])
		}
	case *image.YCbCr:
		for y := 0; y < p.height; y++ {
			off := m.YOffset(b.Min.X, b.Min.Y+y)
			copy(p.row(y), m.Y[off:off+p.width])
		}
	case *image.RGBA:
		for y := 0; y < p.height; y++ {
			row := p.row(y)
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range row {
				px := m.Pix[off+4*x : off+4*x+3]
				row[x] = dsp.RGBToY(int(px[0]), int(px[1]), int(px[2]))
			}
		}
	default:
		for y := 0; y < p.height; y++ {
			row := p.row(y)
			for x := range row {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = dsp.RGBA16ToY(r, g, bl)
			}
		}
	}
	p.Extend()
	return p, nil
}

func mbCount(pixels int) int {
	return (pixels + dsp.MBSize - 1) / dsp.MBSize
}

// row returns the visible pixels of row y.
func (p *Picture) row(y int) []byte {
	off := p.plane.Offset(0, y)
	return p.buf[off : off+p.width]
}

// Width returns the picture width in pixels.
func (p *Picture) Width() int { return p.width }

// Height returns the picture height in pixels.
func (p *Picture) Height() int { return p.height }

// At returns the luma sample at (x, y), which may lie in the border.
func (p *Picture) At(x, y int) uint8 { return p.buf[p.plane.Offset(x, y)] }

// Set writes the luma sample at (x, y) inside the visible area. Call Extend
// after the last write.
func (p *Picture) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	p.buf[p.plane.Offset(x, y)] = v
}

// Extend refreshes the macroblock padding and the search border from the
// visible edge pixels.
func (p *Picture) Extend() {
	pad := me.PlanePad
	right := mbCount(p.width)*dsp.MBSize - p.width + pad
	bottom := mbCount(p.height)*dsp.MBSize - p.height + pad
	dsp.ExtendEdges(p.buf, p.plane.Origin, p.plane.Stride, p.width, p.height, pad, right, pad, bottom)
}

// Release returns the picture memory to the pool. The picture must not be
// used afterwards.
func (p *Picture) Release() {
	if p.buf != nil {
		pool.Put(p.buf)
		p.buf = nil
	}
}
