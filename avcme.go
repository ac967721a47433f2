package avcme

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/deepteams/avcme/internal/dsp"
	"github.com/deepteams/avcme/internal/me"
)

// MaxDimension is the largest accepted picture width or height in pixels.
const MaxDimension = 16384

// Errors returned by the estimator.
var (
	ErrInvalidDimensions = errors.New("avcme: invalid picture dimensions")
	ErrPictureSize       = errors.New("avcme: picture size does not match estimator")
	ErrInvalidOptions    = errors.New("avcme: invalid options")
	ErrPOCDistance       = errors.New("avcme: reference pictures have the same POC")
	ErrColocatedSize     = errors.New("avcme: co-located field size does not match")
	ErrMissingReference  = errors.New("avcme: missing reference picture")
)

// Motion types shared with the engine.
type (
	MV       = me.MV
	MEInfo   = me.MEInfo
	PU       = me.PU
	PredMode = me.PredMode
	// SliceType is P or B.
	SliceType = me.SliceType
	// POC holds the picture order counts of a B picture and its references.
	POC = me.POCInfo
)

const (
	PredL0 = me.PredL0
	PredL1 = me.PredL1
	PredBi = me.PredBi

	SliceP = me.SliceP
	SliceB = me.SliceB

	// RefUnused is the reference index of a list a macroblock does not use.
	RefUnused = me.RefUnused
)

// Speed trades search quality for time.
type Speed = me.Speed

const (
	SpeedSlow    = me.SpeedSlow
	SpeedNormal  = me.SpeedNormal
	SpeedFast    = me.SpeedFast
	SpeedFastest = me.SpeedFastest
)

// Backend selects the distortion kernel implementation.
type Backend = dsp.Backend

const (
	BackendAuto     = dsp.BackendAuto
	BackendGeneric  = dsp.BackendGeneric
	BackendUnrolled = dsp.BackendUnrolled
)

// Options controls motion estimation. Negative values of the integer
// tunables select their defaults.
type Options struct {
	// QP is the quantizer the pictures will be coded at (0-51, default 28).
	// It sets lambda and the zero-residual thresholds.
	QP int

	// MaxSearchRangeX and MaxSearchRangeY bound the search window in full
	// pels (default 256, also selected by zero). The window extends half of each value to either
	// side of the macroblock.
	MaxSearchRangeX int
	MaxSearchRangeY int

	// SearchRangeX and SearchRangeY bound the diamond refinement around
	// the best seed (defaults 64 and 48).
	SearchRangeX int
	SearchRangeY int

	// DisableHalfPel turns off half-pel refinement.
	DisableHalfPel bool

	// Speed selects search effort (default SpeedNormal). SpeedSlow doubles
	// the diamond iterations. SpeedFast uses a
	// 16x16 SAD that exits after the even rows; SpeedFastest samples even
	// rows only and quarters the diamond iterations.
	Speed Speed

	// FastSAD selects the early-exit SAD even at slow and normal speeds.
	FastSAD bool

	// DisableSATQD turns off the zero-residual predictor that ends the
	// search once a block cannot produce residual.
	DisableSATQD bool

	// MinSAD stops the search at or below this distortion. The default (-1)
	// is 0 while the zero-residual predictor is enabled, and no floor
	// otherwise. Set MinSADDisabled to turn it off explicitly.
	MinSAD int

	// SkipBiasP and SkipBiasB are the bit bonuses given to skip motion
	// (default 2 each). The P bias is multiplied by four when NumBFrames
	// is zero.
	SkipBiasP int
	SkipBiasB int

	// NumBFrames is the number of B pictures between references in the
	// stream being coded.
	NumBFrames int

	// DiamondIterations bounds the diamond refinement (default 16).
	DiamondIterations int

	// Workers is the number of goroutines per picture (default GOMAXPROCS).
	Workers int

	// MBsPerJob is the number of macroblocks of one row handed to a worker
	// at a time. Zero or negative hands out whole rows.
	MBsPerJob int

	// SliceMBs is the number of macroblocks per slice. Neighbors in other
	// slices are unavailable. Zero or negative is one slice per picture.
	SliceMBs int

	// Backend selects the distortion kernels (default BackendAuto).
	Backend Backend

	// Logger receives debug records. Nil uses slog.Default().
	Logger *slog.Logger
}

// MinSADDisabled is the MinSAD value that never stops the search.
const MinSADDisabled = -2

// DefaultOptions returns the default estimation options.
func DefaultOptions() *Options {
	return &Options{
		QP:                28,
		MaxSearchRangeX:   -1,
		MaxSearchRangeY:   -1,
		SearchRangeX:      -1,
		SearchRangeY:      -1,
		Speed:             SpeedNormal,
		MinSAD:            -1,
		SkipBiasP:         -1,
		SkipBiasB:         -1,
		DiamondIterations: -1,
	}
}

// Validate reports the first invalid option.
func (o *Options) Validate() error {
	if o.QP < 0 || o.QP > me.MaxQP {
		return fmt.Errorf("%w: QP %d (must be 0-%d)", ErrInvalidOptions, o.QP, me.MaxQP)
	}
	for _, r := range []struct {
		name string
		v    int
	}{
		{"MaxSearchRangeX", o.MaxSearchRangeX},
		{"MaxSearchRangeY", o.MaxSearchRangeY},
		{"SearchRangeX", o.SearchRangeX},
		{"SearchRangeY", o.SearchRangeY},
	} {
		if r.v > 2048 {
			return fmt.Errorf("%w: %s %d (must be at most 2048)", ErrInvalidOptions, r.name, r.v)
		}
	}
	if o.Speed < SpeedSlow || o.Speed > SpeedFastest {
		return fmt.Errorf("%w: Speed %d", ErrInvalidOptions, o.Speed)
	}
	if o.MinSAD < MinSADDisabled {
		return fmt.Errorf("%w: MinSAD %d", ErrInvalidOptions, o.MinSAD)
	}
	if o.SkipBiasP > 64 || o.SkipBiasB > 64 {
		return fmt.Errorf("%w: skip bias %d/%d (must be at most 64)", ErrInvalidOptions, o.SkipBiasP, o.SkipBiasB)
	}
	if o.NumBFrames < 0 {
		return fmt.Errorf("%w: NumBFrames %d", ErrInvalidOptions, o.NumBFrames)
	}
	if o.DiamondIterations > 1024 {
		return fmt.Errorf("%w: DiamondIterations %d (must be at most 1024)", ErrInvalidOptions, o.DiamondIterations)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: Workers %d", ErrInvalidOptions, o.Workers)
	}
	if o.Backend < BackendAuto || o.Backend > BackendUnrolled {
		return fmt.Errorf("%w: Backend %d", ErrInvalidOptions, o.Backend)
	}
	return nil
}

func orDefault(v, def int) int {
	if v < 0 {
		return def
	}
	return v
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// resolved returns a copy of o with every default applied.
func (o *Options) resolved() Options {
	r := *o
	r.MaxSearchRangeX = positiveOr(o.MaxSearchRangeX, me.DefaultMaxSearchRange)
	r.MaxSearchRangeY = positiveOr(o.MaxSearchRangeY, me.DefaultMaxSearchRange)
	r.SearchRangeX = positiveOr(o.SearchRangeX, me.DefaultSearchRangeX)
	r.SearchRangeY = positiveOr(o.SearchRangeY, me.DefaultSearchRangeY)
	r.SkipBiasP = orDefault(o.SkipBiasP, me.DefaultSkipBiasP)
	r.SkipBiasB = orDefault(o.SkipBiasB, me.DefaultSkipBiasB)
	r.DiamondIterations = orDefault(o.DiamondIterations, me.DefaultDiamondIterations)
	switch {
	case o.MinSAD == MinSADDisabled:
		r.MinSAD = me.MinSADDisabled
	case o.MinSAD < 0 && o.DisableSATQD:
		r.MinSAD = me.MinSADDisabled
	case o.MinSAD < 0:
		r.MinSAD = 0
	}
	if r.Workers == 0 {
		r.Workers = runtime.GOMAXPROCS(0)
	}
	if r.MBsPerJob < 0 {
		r.MBsPerJob = 0
	}
	if r.SliceMBs < 0 {
		r.SliceMBs = 0
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	return r
}

// config builds the engine configuration of one picture.
func (o *Options) config(slice SliceType, widthMBs, heightMBs int) *me.Config {
	c := me.NewConfig(slice, widthMBs, heightMBs, o.QP, o.NumBFrames > 0)
	c.MaxSearchX, c.MaxSearchY = o.MaxSearchRangeX, o.MaxSearchRangeY
	c.SearchX, c.SearchY = o.SearchRangeX, o.SearchRangeY
	c.HalfPel = !o.DisableHalfPel
	c.SATQD = !o.DisableSATQD
	c.Speed = o.Speed
	if o.FastSAD && c.Speed < SpeedFast {
		c.Speed = SpeedFast
	}
	c.MinSAD = o.MinSAD
	c.SkipBias = me.SkipBias(o.NumBFrames > 0, o.SkipBiasP, o.SkipBiasB)
	c.DiamondIterations = o.DiamondIterations
	c.SliceMBs = o.SliceMBs
	return c
}
