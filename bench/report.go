package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/oliverbestmann/fbobench/render"
)

// Report is the result of one completed benchmark run.
type Report struct {
	Sprites  int
	Textures int
	Targets  int
	Mode     Mode
	Backend  string

	// BatchesPerFrame is the number of draw call batches of a single
	// frame. Every batch after the first is a batch break caused by a
	// texture switch.
	BatchesPerFrame uint64

	// TotalBatches across the whole run.
	TotalBatches uint64

	Stats    FrameStats
	Pipeline render.PipelineStats
}

// BatchBreaks is the number of texture-switch boundaries per frame.
func (r *Report) BatchBreaks() uint64 {
	if r.BatchesPerFrame == 0 {
		return 0
	}

	return r.BatchesPerFrame - 1
}

// Write prints the report as a table.
func (r *Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	row := func(name string, value any) {
		fmt.Fprintf(tw, "%s\t%v\n", name, value)
	}

	fmt.Fprintf(tw, "=== RESULTS (%s, %s backend) ===\n", r.Mode, r.Backend)

	row("sprites", r.Sprites)
	row("textures", r.Textures)
	row("targets", r.Targets)
	row("frames", r.Stats.Frames)
	row("warmup frames", r.Stats.Warmup)
	row("batches/frame", r.BatchesPerFrame)
	row("batch breaks", r.BatchBreaks())
	row("target binds", r.Pipeline.Binds)
	row("msaa resolves", r.Pipeline.Resolves)
	row("mean fps", fmt.Sprintf("%.1f", r.Stats.MeanFPS))
	row("frame time p50", formatFrameTime(r.Stats.P50))
	row("frame time p95", formatFrameTime(r.Stats.P95))
	row("frame time p99", formatFrameTime(r.Stats.P99))

	return tw.Flush()
}

func formatFrameTime(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
