package bench

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/oliverbestmann/fbobench/glm"
	"github.com/oliverbestmann/fbobench/render"
)

var clearColor = glm.Vec4f{0, 0, 0, 0}

// progressInterval is how often the running frame rate is logged.
const progressInterval = 500 * time.Millisecond

// Driver runs one benchmark: it builds the texture set, produces the
// sprite draw requests every frame, routes them through batching and
// the render pipeline and feeds the frame timer.
type Driver struct {
	cfg Config

	backend    render.Backend
	pipeline   *render.Pipeline
	dispatcher render.Dispatcher
	timer      FrameTimer

	textures []render.Texture

	// offscreen targets, created lazily on first use and recreated
	// after a resize
	targets []*render.Target

	// viewport size the surface and targets are currently built for
	width  uint32
	height uint32

	// requests buffer, reused across frames
	requests []render.DrawRequest

	batchesPerFrame uint64

	// hooks, overridable for tests and for window integration
	now  func() time.Time
	size func() (uint32, uint32)
	poll func() bool
}

type Option func(*Driver)

// WithNow replaces the clock, used by tests to run deterministic
// frame counts.
func WithNow(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithSize supplies the current viewport size, normally wired to the
// window. Size changes destroy and recreate all render targets.
func WithSize(size func() (uint32, uint32)) Option {
	return func(d *Driver) { d.size = size }
}

// WithPoll is called once per frame, normally wired to the window
// event loop. Returning false ends the run early but cleanly.
func WithPoll(poll func() bool) Option {
	return func(d *Driver) { d.poll = poll }
}

func NewDriver(cfg Config, backend render.Backend, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:      cfg,
		backend:  backend,
		pipeline: render.NewPipeline(backend),
		targets:  make([]*render.Target, cfg.Targets),
		now:      time.Now,
	}

	d.width = cfg.Width
	d.height = cfg.Height
	d.size = func() (uint32, uint32) { return cfg.Width, cfg.Height }

	for _, opt := range opts {
		opt(d)
	}

	textures, err := BuildTextureSet(backend, cfg.Textures)
	if err != nil {
		return nil, fmt.Errorf("build texture set: %w", err)
	}

	d.textures = textures

	return d, nil
}

// Run executes the frame loop until the configured duration elapsed,
// then collects the report. The frame samples are consumed by this
// call, a Driver runs exactly once.
func (d *Driver) Run() (*Report, error) {
	slog.Info("Starting benchmark",
		slog.String("mode", d.cfg.Mode.String()),
		slog.String("backend", d.backend.Name()),
		slog.Int("sprites", d.cfg.Sprites),
		slog.Int("textures", d.cfg.Textures),
		slog.Duration("duration", d.cfg.Duration),
	)

	start := d.now()
	lastLog := start

	d.timer.Tick(start)

	for {
		now := d.now()

		elapsed := now.Sub(start)
		if elapsed >= d.cfg.Duration {
			break
		}

		if d.poll != nil && !d.poll() {
			slog.Info("Window closed, ending run early")
			break
		}

		if err := d.frame(float32(elapsed.Seconds())); err != nil {
			return nil, fmt.Errorf("frame %d: %w", d.timer.Frames(), err)
		}

		d.timer.Tick(d.now())

		if now.Sub(lastLog) >= progressInterval {
			slog.Info("Progress",
				slog.Duration("elapsed", elapsed.Round(100*time.Millisecond)),
				slog.String("fps", fmt.Sprintf("%.1f", d.timer.RecentFPS(30))),
			)

			lastLog = now
		}
	}

	stats, err := d.timer.Collect()
	if err != nil {
		return nil, err
	}

	return &Report{
		Sprites:         d.cfg.Sprites,
		Textures:        d.cfg.Textures,
		Targets:         d.cfg.Targets,
		Mode:            d.cfg.Mode,
		Backend:         d.backend.Name(),
		BatchesPerFrame: d.batchesPerFrame,
		TotalBatches:    d.dispatcher.BatchCount(),
		Stats:           stats,
		Pipeline:        d.pipeline.Stats(),
	}, nil
}

// Close releases the textures and render targets owned by the driver.
// The backend itself belongs to the caller.
func (d *Driver) Close() {
	for i, t := range d.targets {
		if t != nil {
			t.Release()
			d.targets[i] = nil
		}
	}

	for _, t := range d.textures {
		t.Release()
	}

	d.textures = nil
}

func (d *Driver) frame(elapsed float32) error {
	width, height := d.size()

	if width != d.width || height != d.height {
		if err := d.resize(width, height); err != nil {
			return err
		}
	}

	if err := d.backend.BeginFrame(); err != nil {
		return err
	}

	camera := Camera(width, height, d.cfg.Scale)
	world := WorldVisible(width, height, d.cfg.Scale)

	d.requests = EmitRequests(d.requests, d.textures, d.cfg.Sprites, elapsed, world, camera)

	batches := d.dispatcher.Coalesce(d.requests)
	d.batchesPerFrame = uint64(len(batches))

	var err error

	switch d.cfg.Mode {
	case ModeDirect:
		err = d.drawDirect(batches)
	default:
		err = d.drawOffscreen(batches)
	}

	if err != nil {
		return err
	}

	return d.backend.EndFrame()
}

// drawDirect renders all batches in a single pass straight into the
// default framebuffer.
func (d *Driver) drawDirect(batches []render.Batch) error {
	if err := d.pipeline.BeginPass(nil); err != nil {
		return err
	}

	if err := d.pipeline.Clear(clearColor); err != nil {
		return err
	}

	for _, batch := range batches {
		if err := d.pipeline.Draw(batch); err != nil {
			return err
		}
	}

	return d.pipeline.EndPass()
}

// drawOffscreen renders one pass per batch into the offscreen targets
// and then brings the result to the screen, either by blitting every
// target or with a single compositing pass. Consecutive passes into
// the same target rely on the pipeline to skip the redundant rebinds.
func (d *Driver) drawOffscreen(batches []render.Batch) error {
	cleared := make([]bool, len(d.targets))

	for i, batch := range batches {
		// block partition, batches of a frame map to contiguous target runs
		idx := i * len(d.targets) / len(batches)

		target, err := d.target(idx)
		if err != nil {
			return err
		}

		if err := d.pipeline.BeginPass(target); err != nil {
			return err
		}

		if !cleared[idx] {
			cleared[idx] = true

			if err := d.pipeline.Clear(clearColor); err != nil {
				return err
			}
		}

		if err := d.pipeline.Draw(batch); err != nil {
			return err
		}

		if err := d.pipeline.EndPass(); err != nil {
			return err
		}
	}

	// final pass to the screen
	if err := d.pipeline.BeginPass(nil); err != nil {
		return err
	}

	if err := d.pipeline.Clear(clearColor); err != nil {
		return err
	}

	used := make([]*render.Target, 0, len(d.targets))
	for _, t := range d.targets {
		if t != nil {
			used = append(used, t)
		}
	}

	switch d.cfg.Mode {
	case ModeFBO:
		for _, t := range used {
			if err := d.pipeline.Blit(t); err != nil {
				return err
			}
		}

	case ModeFBOComposite:
		if err := d.pipeline.Composite(used, ""); err != nil {
			return err
		}
	}

	return d.pipeline.EndPass()
}

// target returns offscreen target idx, creating it on first use at
// the current viewport size.
func (d *Driver) target(idx int) (*render.Target, error) {
	if d.targets[idx] != nil {
		return d.targets[idx], nil
	}

	var sampleCount uint32 = 1
	if d.cfg.MSAA {
		sampleCount = 4
	}

	target, err := d.backend.CreateTarget(render.TargetSpec{
		Width:       d.width,
		Height:      d.height,
		SampleCount: sampleCount,
		Label:       fmt.Sprintf("scene%d", idx),
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Created render target",
		slog.Int("index", idx),
		slog.Int("width", int(d.width)),
		slog.Int("height", int(d.height)),
		slog.Int("samples", int(sampleCount)),
	)

	d.targets[idx] = target

	return target, nil
}

// resize reconfigures the surface and drops all render targets, they
// are recreated lazily at the new size.
func (d *Driver) resize(width, height uint32) error {
	slog.Debug("Resize viewport",
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	if err := d.backend.Resize(width, height); err != nil {
		return err
	}

	for i, t := range d.targets {
		if t != nil {
			t.Release()
			d.targets[i] = nil
		}
	}

	d.pipeline.InvalidateBinding()

	d.width = width
	d.height = height

	return nil
}
