package me

// Run is one job: N consecutive macroblocks of row Y starting at column X.
type Run struct {
	X, Y, N int
}

// Runs splits a picture into jobs of at most perJob macroblocks, in raster
// order. perJob <= 0 makes every row one job. Dispatching jobs in this order
// guarantees that every job a worker waits on has already been handed out.
func Runs(widthMBs, heightMBs, perJob int) []Run {
	if perJob <= 0 || perJob > widthMBs {
		perJob = widthMBs
	}
	perRow := (widthMBs + perJob - 1) / perJob
	runs := make([]Run, 0, perRow*heightMBs)
	for y := 0; y < heightMBs; y++ {
		for x := 0; x < widthMBs; x += perJob {
			runs = append(runs, Run{X: x, Y: y, N: min(perJob, widthMBs-x)})
		}
	}
	return runs
}

// EstimateRun estimates the macroblocks of r in order. Before each
// macroblock it waits for the top-right neighbor of the previous row; a run
// that starts mid-row first waits for its left neighbor.
func (c *Context) EstimateRun(r Run) {
	f := c.f
	cfg := f.Cfg
	w := cfg.WidthMBs
	row := f.Field[r.Y*w : (r.Y+1)*w]
	var above []MBResult
	if r.Y > 0 {
		above = f.Field[(r.Y-1)*w : r.Y*w]
	}

	var left, topLeft PU
	if r.X > 0 {
		f.Progress.Wait(r.X-1, r.Y)
		left = row[r.X-1].PU
		if above != nil {
			topLeft = above[r.X-1].PU
		}
	}

	for x := r.X; x < r.X+r.N; x++ {
		nb := Neighborhood{Avail: cfg.Availability(x, r.Y), Left: left, TopLeft: topLeft}
		if above != nil {
			f.Progress.Wait(min(x+1, w-1), r.Y-1)
			nb.Top = above[x].PU
			if x+1 < w {
				nb.TopRight = above[x+1].PU
			}
		}

		out := &row[x]
		c.EstimateMB(x, r.Y, &nb, cfg.MinSAD, out)

		topLeft = nb.Top
		left = out.PU
		f.Progress.Done(x, r.Y)
	}
}
