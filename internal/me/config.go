package me

import "github.com/deepteams/avcme/internal/dsp"

// Calibration defaults. They are exposed so callers can override them
// through Config.
const (
	// DefaultSkipBiasP is the bit bias favoring P skip when B pictures are
	// in use. Without B pictures the bias is four times larger.
	DefaultSkipBiasP = 2
	// DefaultSkipBiasB is the bit bias favoring B skip.
	DefaultSkipBiasB = 2
	// DefaultDiamondIterations bounds the diamond refinement steps.
	DefaultDiamondIterations = 16
	// DefaultMaxSearchRange is the frame-level search window in full pels.
	DefaultMaxSearchRange = 256
	// DefaultSearchRangeX and DefaultSearchRangeY bound the diamond window
	// around the best seed, in full pels.
	DefaultSearchRangeX = 64
	DefaultSearchRangeY = 48
	// MinSADDisabled is the minimum-SAD floor that never triggers.
	MinSADDisabled = -1
)

// Speed selects the distortion kernel and search effort.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedNormal
	SpeedFast
	SpeedFastest
)

func (s Speed) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedNormal:
		return "normal"
	case SpeedFast:
		return "fast"
	case SpeedFastest:
		return "fastest"
	default:
		return "unknown"
	}
}

// sadMode returns the 16x16 kernel variant used at speed s.
func (s Speed) sadMode() dsp.SADMode {
	switch s {
	case SpeedFast:
		return dsp.SADEarlyExit8
	case SpeedFastest:
		return dsp.SADFast
	default:
		return dsp.SADFull
	}
}

// Config holds the per-picture settings shared by every job of a picture.
// It is read-only while jobs run.
type Config struct {
	Slice SliceType

	// MaxSearchX and MaxSearchY bound the search window in full pels; the
	// window extends half of each value to either side.
	MaxSearchX, MaxSearchY int
	// SearchX and SearchY bound the diamond around the best seed.
	SearchX, SearchY int

	HalfPel bool
	SATQD   bool
	Speed   Speed

	// MinSAD is the distortion at or below which search stops. Use
	// MinSADDisabled to turn it off.
	MinSAD int

	// SkipBias is indexed by slice type.
	SkipBias [2]int

	DiamondIterations int

	Lambda     int
	Thresholds [9]uint16

	POC POCInfo

	// WidthMBs and HeightMBs are the picture size in macroblocks.
	WidthMBs, HeightMBs int
	// SliceMBs is the number of macroblocks per slice, 0 for one slice.
	SliceMBs int
}

// NewConfig returns a configuration with default settings for a picture of
// the given size at quantizer qp.
func NewConfig(slice SliceType, widthMBs, heightMBs, qp int, bFrames bool) *Config {
	c := &Config{
		Slice:             slice,
		MaxSearchX:        DefaultMaxSearchRange,
		MaxSearchY:        DefaultMaxSearchRange,
		SearchX:           DefaultSearchRangeX,
		SearchY:           DefaultSearchRangeY,
		HalfPel:           true,
		SATQD:             true,
		Speed:             SpeedNormal,
		MinSAD:            0,
		DiamondIterations: DefaultDiamondIterations,
		Lambda:            LambdaForQP(qp),
		Thresholds:        SATQDThresholds(qp, false),
		WidthMBs:          widthMBs,
		HeightMBs:         heightMBs,
	}
	c.SkipBias = SkipBias(bFrames, DefaultSkipBiasP, DefaultSkipBiasB)
	return c
}

// SkipBias returns the per-slice-type skip bias.
func SkipBias(bFrames bool, biasP, biasB int) [2]int {
	var b [2]int
	b[SliceB] = biasB
	if bFrames {
		b[SliceP] = biasP
	} else {
		b[SliceP] = 4 * biasP
	}
	return b
}

// diamondIterations returns the refinement step limit after the speed
// adjustment.
func (c *Config) diamondIterations() int {
	switch c.Speed {
	case SpeedSlow:
		return c.DiamondIterations << 1
	case SpeedFastest:
		return c.DiamondIterations >> 2
	}
	return c.DiamondIterations
}

// SearchRange returns the full-pel window of the macroblock at (mbx, mby).
// The window never reaches more than one macroblock beyond the picture and
// keeps one pixel clear on each side for the half-pel filter taps.
func (c *Config) SearchRange(mbx, mby int) Range {
	const mb = dsp.MBSize
	colsLeft := mb + mbx*mb
	colsRight := (c.WidthMBs - mbx) * mb
	rowsAbove := mb + mby*mb
	rowsBelow := (c.HeightMBs - mby) * mb
	return Range{
		W: -min(colsLeft, c.MaxSearchX>>1) + 1,
		E: min(colsRight, c.MaxSearchX>>1) - 1,
		N: -min(rowsAbove, c.MaxSearchY>>1) + 1,
		S: min(rowsBelow, c.MaxSearchY>>1) - 1,
	}
}

// Availability returns which causal neighbors of (mbx, mby) exist in the
// picture and belong to the same slice.
func (c *Config) Availability(mbx, mby int) Availability {
	idx := mby*c.WidthMBs + mbx
	start := 0
	if c.SliceMBs > 0 {
		start = idx - idx%c.SliceMBs
	}
	in := func(x, y int) bool {
		if x < 0 || y < 0 || x >= c.WidthMBs {
			return false
		}
		return y*c.WidthMBs+x >= start
	}
	return Availability{
		Left:     in(mbx-1, mby),
		Top:      in(mbx, mby-1),
		TopRight: in(mbx+1, mby-1),
		TopLeft:  in(mbx-1, mby-1),
	}
}
