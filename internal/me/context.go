package me

import (
	"github.com/deepteams/avcme/internal/dsp"
)

// Plane is a padded 8-bit luma plane. Origin is the offset of pixel (0,0);
// at least PlanePad pixels are readable around the visible area.
type Plane struct {
	Pix    []byte
	Stride int
	Origin int
}

// PlanePad is the border a reference plane needs: one macroblock of search
// beyond the picture plus the six-tap filter reach.
const PlanePad = 32

// Offset returns the byte offset of pixel (x, y).
func (p *Plane) Offset(x, y int) int {
	return p.Origin + y*p.Stride + x
}

// MBResult is the outcome of estimating one macroblock.
type MBResult struct {
	PU PU
	// Cost and Distortion of the chosen mode.
	Cost, Distortion int
	// Skip reports that the chosen motion equals the skip motion.
	Skip bool
	// SkipMV holds the P skip vector in [L0], or the spatial direct vectors
	// of a B macroblock.
	SkipMV [2]MV
	// MinSADReached reports that search stopped at the minimum-SAD floor.
	MinSADReached bool
	MinSAD        int
	// Pred holds the chosen interpolated or averaged prediction when
	// PredValid is set. Full-pel winners leave it unset.
	Pred      [dsp.MBSize * dsp.MBSize]byte
	PredValid bool
}

// Frame is everything the jobs of one picture share. Jobs only read it,
// except for their own Field entries.
type Frame struct {
	Cfg     *Config
	Bits    *BitCostTable
	Metrics *dsp.Metrics

	Src Plane
	// Ref holds the list-0 and list-1 reference planes. Ref[1] is unused in
	// P pictures.
	Ref [2]Plane
	// Colocated is the motion field of the list-1 reference, one PU per
	// macroblock in raster order. Nil treats every co-located block as intra.
	Colocated []PU

	// Field receives one result per macroblock in raster order.
	Field []MBResult
	// Progress publishes finished macroblocks to dependent rows.
	Progress *CompletionMap
}

// subpelBuffers is the size of the half-pel scratch ring: three planes for
// the list being refined plus one spare for the other list's winner.
const subpelBuffers = 4

const noBuf = -1

// Context is the scratch state of one worker. A Context is used by one
// goroutine at a time and may be reused across pictures.
type Context struct {
	ring [subpelBuffers][]byte

	// Per-picture state, set by Bind.
	f     *Frame
	ops   *sliceOps
	sad16 dsp.SADFunc
}

// NewContext allocates worker scratch.
func NewContext() *Context {
	c := &Context{}
	for i := range c.ring {
		c.ring[i] = make([]byte, dsp.HPBufSize)
	}
	return c
}

// Bind prepares c to run jobs of f.
func (c *Context) Bind(f *Frame) {
	c.f = f
	c.ops = &sliceTable[f.Cfg.Slice]
	c.sad16 = f.Metrics.SAD16(f.Cfg.Speed.sadMode())
}

// partState tracks the best motion found for one list (or the bi-predictive
// pair) of the current macroblock.
type partState struct {
	mv         MV
	cost       int
	distortion int
	// buf is the ring entry holding the prediction of mv, noBuf when mv
	// points at full-pel reference data.
	buf    int
	bufOff int
	// pair is the winning bi-predictive candidate pair.
	pair  int
	steps int
}

const maxCost = int(^uint(0) >> 1)

func (p *partState) reset() {
	*p = partState{cost: maxCost, distortion: maxCost, buf: noBuf}
}

// mbState is the per-macroblock working set.
type mbState struct {
	x, y   int
	srcOff int
	refOff [2]int
	rng    Range
	nb     Neighborhood

	pred     [2]MV
	skipMV   [2]MV
	bskip    BSkipParams
	skipType PredMode

	cands [2]candidateList

	minSAD        int
	minSADReached bool

	part [3]partState
	skip [2]partState
}
