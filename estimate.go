package avcme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/avcme/internal/dsp"
	"github.com/deepteams/avcme/internal/me"
)

// Estimator estimates motion fields for pictures of one size. It may be
// used by several goroutines at once.
type Estimator struct {
	opts                Options
	width, height       int
	widthMBs, heightMBs int
	bits                *me.BitCostTable
	metrics             *dsp.Metrics
	log                 *slog.Logger

	states sync.Pool
}

// jobState is the per-picture scratch of one estimation call.
type jobState struct {
	contexts []*me.Context
	progress *me.CompletionMap
	next     atomic.Int64
}

// NewEstimator returns an estimator for width x height pictures. If opts
// is nil, DefaultOptions() is used.
func NewEstimator(width, height int, opts *Options) (*Estimator, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	r := opts.resolved()
	e := &Estimator{
		opts:      r,
		width:     width,
		height:    height,
		widthMBs:  mbCount(width),
		heightMBs: mbCount(height),
		bits:      me.NewBitCostTable(max(r.MaxSearchRangeX, r.MaxSearchRangeY)),
		metrics:   dsp.Select(r.Backend, r.Logger),
		log:       r.Logger,
	}
	e.log.Debug("estimator ready",
		"width", width, "height", height,
		"backend", e.metrics.Backend.String(),
		"workers", r.Workers, "qp", r.QP, "speed", r.Speed.String())
	return e, nil
}

// Options returns the options in effect, with defaults applied.
func (e *Estimator) Options() Options { return e.opts }

func (e *Estimator) getState() *jobState {
	if v := e.states.Get(); v != nil {
		s := v.(*jobState)
		s.progress.Reset()
		s.next.Store(0)
		return s
	}
	s := &jobState{
		contexts: make([]*me.Context, e.opts.Workers),
		progress: me.NewCompletionMap(e.widthMBs, e.heightMBs),
	}
	for i := range s.contexts {
		s.contexts[i] = me.NewContext()
	}
	return s
}

func (e *Estimator) checkPicture(p *Picture) error {
	if p == nil {
		return ErrMissingReference
	}
	if p.width != e.width || p.height != e.height {
		return fmt.Errorf("%w: %dx%d, want %dx%d", ErrPictureSize, p.width, p.height, e.width, e.height)
	}
	return nil
}

// EstimateP estimates cur against the single reference ref.
func (e *Estimator) EstimateP(ctx context.Context, cur, ref *Picture) (*Field, error) {
	if err := e.checkPicture(cur); err != nil {
		return nil, fmt.Errorf("avcme: current picture: %w", err)
	}
	if err := e.checkPicture(ref); err != nil {
		return nil, fmt.Errorf("avcme: reference: %w", err)
	}
	cfg := e.opts.config(SliceP, e.widthMBs, e.heightMBs)
	f := &me.Frame{Src: cur.plane}
	f.Ref[me.L0] = ref.plane
	return e.estimate(ctx, cfg, f, POC{})
}

// EstimateB estimates cur against ref0 (list 0) and ref1 (list 1).
// colocated is the field of ref1 used for temporal direct motion; nil
// treats every co-located block as intra. poc gives the display order of
// the three pictures; the references must not share a POC.
func (e *Estimator) EstimateB(ctx context.Context, cur, ref0, ref1 *Picture, colocated *Field, poc POC) (*Field, error) {
	if err := e.checkPicture(cur); err != nil {
		return nil, fmt.Errorf("avcme: current picture: %w", err)
	}
	if err := e.checkPicture(ref0); err != nil {
		return nil, fmt.Errorf("avcme: list-0 reference: %w", err)
	}
	if err := e.checkPicture(ref1); err != nil {
		return nil, fmt.Errorf("avcme: list-1 reference: %w", err)
	}
	if poc.Ref1 == poc.Ref0 {
		return nil, fmt.Errorf("%w: %d", ErrPOCDistance, poc.Ref0)
	}
	cfg := e.opts.config(SliceB, e.widthMBs, e.heightMBs)
	cfg.POC = poc
	f := &me.Frame{Src: cur.plane}
	f.Ref[me.L0] = ref0.plane
	f.Ref[me.L1] = ref1.plane
	if colocated != nil {
		if colocated.widthMBs != e.widthMBs || colocated.heightMBs != e.heightMBs {
			return nil, fmt.Errorf("%w: %dx%d macroblocks, want %dx%d",
				ErrColocatedSize, colocated.widthMBs, colocated.heightMBs, e.widthMBs, e.heightMBs)
		}
		f.Colocated = colocated.PUs()
	}
	return e.estimate(ctx, cfg, f, poc)
}

// estimate runs the jobs of one picture. Workers claim row runs in raster
// order, so every run a worker waits on has already been claimed and runs
// to completion. Cancellation is observed between runs.
func (e *Estimator) estimate(ctx context.Context, cfg *me.Config, f *me.Frame, poc POC) (*Field, error) {
	start := time.Now()
	field := newField(cfg.Slice, e.widthMBs, e.heightMBs, poc)
	st := e.getState()
	defer e.states.Put(st)

	f.Cfg = cfg
	f.Bits = e.bits
	f.Metrics = e.metrics
	f.Field = field.mbs
	f.Progress = st.progress

	runs := me.Runs(e.widthMBs, e.heightMBs, e.opts.MBsPerJob)
	workers := min(len(st.contexts), len(runs))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range st.contexts[:workers] {
		c := c
		g.Go(func() error {
			c.Bind(f)
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(st.next.Add(1) - 1)
				if i >= len(runs) {
					return nil
				}
				c.EstimateRun(runs[i])
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.log.Enabled(ctx, slog.LevelDebug) {
		s := field.Stats()
		e.log.Debug("estimated picture",
			"slice", cfg.Slice.String(),
			"mbs", s.MBs,
			"skip", s.Skip,
			"bi", s.Bi,
			"min_sad", s.MinSAD,
			"mean_cost", s.MeanCost(),
			"elapsed", time.Since(start))
	}
	return field, nil
}
