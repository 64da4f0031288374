package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/urfave/cli"

	"github.com/oliverbestmann/fbobench/bench"
	"github.com/oliverbestmann/fbobench/gpu"
	"github.com/oliverbestmann/fbobench/render"
	"github.com/oliverbestmann/fbobench/window"
)

func main() {
	app := cli.NewApp()
	app.Name = "fbobench"
	app.Usage = "measure the cost of redundant render target rebinds during sprite batching"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "sprites",
			Usage: "number of sprites to draw per frame",
			Value: 500,
		},
		cli.IntFlag{
			Name:  "textures",
			Usage: "number of textures to cycle through (more = more batch breaks)",
			Value: 16,
		},
		cli.IntFlag{
			Name:  "targets",
			Usage: "number of offscreen render targets in fbo and composite mode",
			Value: 1,
		},
		cli.Float64Flag{
			Name:  "scale",
			Usage: "camera scale factor",
			Value: 3.0,
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "how long to run",
			Value: 4 * time.Second,
		},
		cli.StringFlag{
			Name:  "mode",
			Usage: "render mode: direct, fbo or composite",
			Value: "direct",
		},
		cli.BoolFlag{
			Name:  "msaa",
			Usage: "render offscreen targets with 4x multisampling",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "render backend: wgpu or headless",
			Value: "wgpu",
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "window width",
			Value: 1920,
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "window height",
			Value: 1080,
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "write a cpu profile for the run",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}

	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Benchmark failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("v") {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	mode, err := bench.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	// the flags are plain ints, catch negatives before they wrap into
	// huge unsigned viewport sizes
	if c.Int("width") < 0 || c.Int("height") < 0 {
		return &bench.ConfigError{
			Field:  "size",
			Reason: fmt.Sprintf("viewport must not be negative, got %dx%d", c.Int("width"), c.Int("height")),
		}
	}

	cfg := bench.Config{
		Sprites:  c.Int("sprites"),
		Textures: c.Int("textures"),
		Targets:  c.Int("targets"),
		Scale:    float32(c.Float64("scale")),
		Duration: c.Duration("duration"),
		Mode:     mode,
		MSAA:     c.Bool("msaa"),
		Width:    uint32(c.Int("width")),
		Height:   uint32(c.Int("height")),
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if c.Bool("profile") {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	switch c.String("backend") {
	case "headless":
		return runHeadless(cfg)
	case "wgpu":
		return runWindowed(cfg)
	default:
		return &bench.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", c.String("backend"))}
	}
}

// runHeadless measures the cpu side of batching and dispatch only, no
// gpu and no window needed.
func runHeadless(cfg bench.Config) error {
	backend := render.NewHeadless()
	defer backend.Close()

	driver, err := bench.NewDriver(cfg, backend)
	if err != nil {
		return err
	}

	defer driver.Close()

	return finish(driver)
}

func runWindowed(cfg bench.Config) error {
	win, err := window.New(int(cfg.Width), int(cfg.Height), "fbobench")
	if err != nil {
		return err
	}

	defer win.Terminate()

	width, height := win.GetSize()

	backend, err := gpu.NewBackend(win.SurfaceDescriptor(), width, height)
	if err != nil {
		return err
	}

	defer backend.Close()

	driver, err := bench.NewDriver(cfg, backend,
		bench.WithSize(win.GetSize),
		bench.WithPoll(win.Poll),
	)
	if err != nil {
		return err
	}

	defer driver.Close()

	return finish(driver)
}

func finish(driver *bench.Driver) error {
	report, err := driver.Run()
	if err != nil {
		return err
	}

	return report.Write(os.Stdout)
}
