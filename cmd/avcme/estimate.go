package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/deepteams/avcme"
	"github.com/deepteams/avcme/internal/dsp"
)

type estimateFlags struct {
	qp        int
	speed     string
	backend   string
	workers   int
	mbsPerJob int
	sliceMBs  int
	rangeX    int
	rangeY    int
	noHalfPel bool
	noSATQD   bool
	fastSAD   bool
	minSAD    int
	bframes   int
	poc       []int
	colocated string
	out       string
	listMBs   bool
}

func newEstimateCmd() *cobra.Command {
	var f estimateFlags
	cmd := &cobra.Command{
		Use:   "estimate [flags] <cur> <ref0> [ref1]",
		Short: "Estimate the motion field of a picture",
		Long: `Estimates a P motion field of <cur> against <ref0>, or a B motion field
when a second reference <ref1> is given. Frames are read as PNG, JPEG, GIF,
BMP or TIFF and converted to BT.601 luma.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), &f, args)
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&f.qp, "qp", "q", 28, "Quantizer the pictures will be coded at (0-51)")
	fl.StringVar(&f.speed, "speed", "normal", "Search speed: slow, normal, fast, fastest")
	fl.StringVar(&f.backend, "backend", "auto", "Distortion kernels: auto, generic, unrolled")
	fl.IntVarP(&f.workers, "workers", "j", 0, "Worker goroutines (0 = GOMAXPROCS)")
	fl.IntVar(&f.mbsPerJob, "mbs-per-job", 0, "Macroblocks per job (0 = whole rows)")
	fl.IntVar(&f.sliceMBs, "slice-mbs", 0, "Macroblocks per slice (0 = one slice)")
	fl.IntVar(&f.rangeX, "range-x", 0, "Horizontal search window in full pels (0 = default)")
	fl.IntVar(&f.rangeY, "range-y", 0, "Vertical search window in full pels (0 = default)")
	fl.BoolVar(&f.noHalfPel, "no-halfpel", false, "Disable half-pel refinement")
	fl.BoolVar(&f.noSATQD, "no-satqd", false, "Disable the zero-residual early exit")
	fl.BoolVar(&f.fastSAD, "fast-sad", false, "Use the early-exit SAD at every speed")
	fl.IntVar(&f.minSAD, "min-sad", -1, "Distortion floor that ends the search (-1 = automatic, -2 = off)")
	fl.IntVar(&f.bframes, "bframes", 0, "B pictures between references in the coded stream")
	fl.IntSliceVar(&f.poc, "poc", []int{1, 0, 2}, "Picture order counts cur,ref0,ref1 of a B picture")
	fl.StringVar(&f.colocated, "colocated", "", "Motion field of ref1 for temporal direct (B only)")
	fl.StringVarP(&f.out, "out", "o", "", "Write the motion field to this file")
	fl.BoolVar(&f.listMBs, "mbs", false, "Print the motion of every macroblock")
	return cmd
}

func (f *estimateFlags) options() (*avcme.Options, error) {
	speed, err := parseSpeed(f.speed)
	if err != nil {
		return nil, err
	}
	backend, ok := dsp.ParseBackend(f.backend)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", f.backend)
	}
	o := avcme.DefaultOptions()
	o.QP = f.qp
	o.Speed = speed
	o.Backend = backend
	o.Workers = f.workers
	o.MBsPerJob = f.mbsPerJob
	o.SliceMBs = f.sliceMBs
	o.MaxSearchRangeX = f.rangeX
	o.MaxSearchRangeY = f.rangeY
	o.DisableHalfPel = f.noHalfPel
	o.DisableSATQD = f.noSATQD
	o.FastSAD = f.fastSAD
	o.MinSAD = f.minSAD
	o.NumBFrames = f.bframes
	o.Logger = slog.Default()
	return o, o.Validate()
}

func parseSpeed(s string) (avcme.Speed, error) {
	for _, sp := range []avcme.Speed{avcme.SpeedSlow, avcme.SpeedNormal, avcme.SpeedFast, avcme.SpeedFastest} {
		if sp.String() == s {
			return sp, nil
		}
	}
	return avcme.SpeedNormal, fmt.Errorf("unknown speed %q", s)
}

func runEstimate(ctx context.Context, w io.Writer, f *estimateFlags, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := f.options()
	if err != nil {
		return err
	}

	pics := make([]*avcme.Picture, len(args))
	defer func() {
		for _, p := range pics {
			if p != nil {
				p.Release()
			}
		}
	}()
	for i, path := range args {
		if pics[i], err = loadPicture(path); err != nil {
			return err
		}
	}
	width, height := pics[0].Width(), pics[0].Height()
	slog.Info("loaded frames", "count", len(pics), "width", width, "height", height)

	est, err := avcme.NewEstimator(width, height, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	var field *avcme.Field
	if len(pics) == 2 {
		field, err = est.EstimateP(ctx, pics[0], pics[1])
	} else {
		if len(f.poc) != 3 {
			return fmt.Errorf("--poc needs three values, got %d", len(f.poc))
		}
		var col *avcme.Field
		if f.colocated != "" {
			if col, err = loadField(f.colocated); err != nil {
				return err
			}
		}
		poc := avcme.POC{Cur: f.poc[0], Ref0: f.poc[1], Ref1: f.poc[2]}
		field, err = est.EstimateB(ctx, pics[0], pics[1], pics[2], col, poc)
	}
	if err != nil {
		return err
	}
	slog.Info("estimated field", "slice", field.Slice(), "elapsed", time.Since(start))

	printField(w, field, f.listMBs)

	if f.out != "" {
		if err := saveField(f.out, field); err != nil {
			return err
		}
		slog.Info("wrote field", "path", f.out)
	}
	return nil
}

func loadPicture(path string) (*avcme.Picture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer fh.Close()
	img, format, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	slog.Debug("decoded frame", "path", path, "format", format)
	return avcme.PictureFromImage(img)
}

func loadField(path string) (*avcme.Field, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open field: %w", err)
	}
	defer fh.Close()
	return avcme.ReadField(fh)
}

func saveField(path string, field *avcme.Field) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create field: %w", err)
	}
	if _, err := field.WriteTo(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// printField writes the summary of field and, when all is set, one line per
// macroblock.
func printField(w io.Writer, field *avcme.Field, all bool) {
	s := field.Stats()
	poc := field.POC()
	fmt.Fprintf(w, "slice:      %s\n", field.Slice())
	fmt.Fprintf(w, "size:       %dx%d MBs\n", field.WidthMBs(), field.HeightMBs())
	if field.Slice() == avcme.SliceB {
		fmt.Fprintf(w, "poc:        cur=%d ref0=%d ref1=%d\n", poc.Cur, poc.Ref0, poc.Ref1)
	}
	fmt.Fprintf(w, "skip:       %d/%d\n", s.Skip, s.MBs)
	fmt.Fprintf(w, "modes:      L0=%d L1=%d BI=%d intra=%d\n", s.L0, s.L1, s.Bi, s.Intra)
	fmt.Fprintf(w, "zero mv:    %d\n", s.ZeroMV)
	fmt.Fprintf(w, "min sad:    %d\n", s.MinSAD)
	fmt.Fprintf(w, "mean cost:  %.1f\n", s.MeanCost())
	fmt.Fprintf(w, "mean sad:   %.1f\n", s.MeanDistortion())
	if !all {
		return
	}
	for y := 0; y < field.HeightMBs(); y++ {
		for x := 0; x < field.WidthMBs(); x++ {
			r := field.At(x, y)
			fmt.Fprintf(w, "%3d %3d %-2s", x, y, r.PU.Mode)
			for list := 0; list < 2; list++ {
				info := r.PU.Info[list]
				if info.Uses() {
					fmt.Fprintf(w, " L%d(%d,%d)", list, info.MV.X, info.MV.Y)
				}
			}
			if r.Skip {
				fmt.Fprint(w, " skip")
			}
			fmt.Fprintf(w, " cost=%d sad=%d\n", r.Cost, r.Distortion)
		}
	}
}
