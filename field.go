package avcme

import (
	"fmt"
	"io"

	"github.com/deepteams/avcme/internal/me"
	"github.com/deepteams/avcme/internal/mvbank"
)

// MBResult is the estimation outcome of one macroblock.
type MBResult = me.MBResult

// Field is the motion field of one picture: one result per macroblock in
// raster order.
type Field struct {
	widthMBs, heightMBs int
	slice               SliceType
	poc                 POC
	mbs                 []MBResult
}

func newField(slice SliceType, widthMBs, heightMBs int, poc POC) *Field {
	return &Field{
		widthMBs:  widthMBs,
		heightMBs: heightMBs,
		slice:     slice,
		poc:       poc,
		mbs:       make([]MBResult, widthMBs*heightMBs),
	}
}

// WidthMBs returns the field width in macroblocks.
func (f *Field) WidthMBs() int { return f.widthMBs }

// HeightMBs returns the field height in macroblocks.
func (f *Field) HeightMBs() int { return f.heightMBs }

// Slice returns the slice type the field was estimated for.
func (f *Field) Slice() SliceType { return f.slice }

// POC returns the picture order counts the field was estimated with. P
// fields carry zeros.
func (f *Field) POC() POC { return f.poc }

// At returns the result of the macroblock at (mbx, mby).
func (f *Field) At(mbx, mby int) *MBResult {
	return &f.mbs[mby*f.widthMBs+mbx]
}

// PU returns the motion of the macroblock at (mbx, mby).
func (f *Field) PU(mbx, mby int) PU { return f.At(mbx, mby).PU }

// Pred returns the interpolated or averaged 16x16 prediction chosen for the
// macroblock at (mbx, mby), or false when the motion points at full-pel
// reference samples.
func (f *Field) Pred(mbx, mby int) ([]byte, bool) {
	r := f.At(mbx, mby)
	if !r.PredValid {
		return nil, false
	}
	return r.Pred[:], true
}

// PUs returns the motion of every macroblock in raster order.
func (f *Field) PUs() []PU {
	pus := make([]PU, len(f.mbs))
	for i := range f.mbs {
		pus[i] = f.mbs[i].PU
	}
	return pus
}

// FieldStats summarizes a field.
type FieldStats struct {
	MBs    int
	Skip   int
	L0     int
	L1     int
	Bi     int
	Intra  int
	ZeroMV int
	// MinSAD counts macroblocks whose search stopped at the floor.
	MinSAD     int
	Cost       int64
	Distortion int64
}

// MeanCost returns the average cost per macroblock.
func (s FieldStats) MeanCost() float64 {
	if s.MBs == 0 {
		return 0
	}
	return float64(s.Cost) / float64(s.MBs)
}

// MeanDistortion returns the average SAD per macroblock.
func (s FieldStats) MeanDistortion() float64 {
	if s.MBs == 0 {
		return 0
	}
	return float64(s.Distortion) / float64(s.MBs)
}

// Stats counts the modes and sums the costs of f.
func (f *Field) Stats() FieldStats {
	s := FieldStats{MBs: len(f.mbs)}
	for i := range f.mbs {
		r := &f.mbs[i]
		if r.Skip {
			s.Skip++
		}
		if r.MinSADReached {
			s.MinSAD++
		}
		if r.PU.Intra {
			s.Intra++
			continue
		}
		switch r.PU.Mode {
		case PredL0:
			s.L0++
		case PredL1:
			s.L1++
		case PredBi:
			s.Bi++
		}
		if r.PU.Info[me.L0].MV.IsZero() && r.PU.Info[me.L1].MV.IsZero() {
			s.ZeroMV++
		}
		s.Cost += int64(r.Cost)
		s.Distortion += int64(r.Distortion)
	}
	return s
}

// WriteTo stores the motion of f in the motion-bank format. Predictions are
// not stored.
func (f *Field) WriteTo(w io.Writer) (int64, error) {
	h := mvbank.Header{WidthMBs: f.widthMBs, HeightMBs: f.heightMBs, Slice: f.slice, POC: f.poc}
	entries := make([]mvbank.Entry, len(f.mbs))
	for i := range f.mbs {
		r := &f.mbs[i]
		entries[i] = mvbank.Entry{
			PU:            r.PU,
			Cost:          r.Cost,
			Distortion:    r.Distortion,
			Skip:          r.Skip,
			MinSADReached: r.MinSADReached,
		}
	}
	return mvbank.Write(w, h, entries)
}

// ReadField loads a field stored with WriteTo.
func ReadField(r io.Reader) (*Field, error) {
	h, entries, err := mvbank.Read(r)
	if err != nil {
		return nil, fmt.Errorf("avcme: reading field: %w", err)
	}
	f := newField(h.Slice, h.WidthMBs, h.HeightMBs, h.POC)
	for i := range entries {
		e := &entries[i]
		f.mbs[i] = MBResult{
			PU:            e.PU,
			Cost:          e.Cost,
			Distortion:    e.Distortion,
			Skip:          e.Skip,
			MinSADReached: e.MinSADReached,
		}
	}
	return f, nil
}
