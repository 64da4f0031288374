// Package bench contains the benchmark harness: configuration,
// deterministic scene generation, frame timing and the driver that
// feeds the render pipeline.
package bench

import (
	"fmt"
	"time"
)

// Mode selects how batches travel to the screen.
type Mode int

const (
	// ModeDirect renders every batch straight into the default
	// framebuffer.
	ModeDirect Mode = iota

	// ModeFBO renders into offscreen targets and blits them to the
	// screen at the end of the frame.
	ModeFBO

	// ModeFBOComposite renders into offscreen targets and merges them
	// with a single compositing pass.
	ModeFBOComposite
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeFBO:
		return "fbo"
	case ModeFBOComposite:
		return "composite"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses the --mode flag value.
func ParseMode(value string) (Mode, error) {
	switch value {
	case "direct":
		return ModeDirect, nil
	case "fbo":
		return ModeFBO, nil
	case "composite":
		return ModeFBOComposite, nil
	default:
		return 0, &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", value)}
	}
}

// ConfigError describes an invalid benchmark parameter. Configuration
// is validated before the frame loop starts, a ConfigError is never
// retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Config are the parameters of a single benchmark run. All values are
// fixed for the duration of the run.
type Config struct {
	// Sprites drawn per frame.
	Sprites int

	// Textures in the generated texture set. Sprite i samples
	// texture i modulo Textures.
	Textures int

	// Targets is the number of offscreen render targets used in the
	// fbo and composite modes.
	Targets int

	// Scale is the camera zoom factor.
	Scale float32

	// Duration of the measured run.
	Duration time.Duration

	Mode Mode

	// MSAA enables 4x multisampling on the offscreen targets.
	MSAA bool

	// Initial viewport size.
	Width  uint32
	Height uint32
}

// DefaultConfig mirrors the defaults of the original harness.
func DefaultConfig() Config {
	return Config{
		Sprites:  500,
		Textures: 16,
		Targets:  1,
		Scale:    3.0,
		Duration: 4 * time.Second,
		Mode:     ModeDirect,
		Width:    1920,
		Height:   1080,
	}
}

func (c *Config) Validate() error {
	if c.Sprites < 0 {
		return &ConfigError{Field: "sprites", Reason: fmt.Sprintf("must not be negative, got %d", c.Sprites)}
	}

	if c.Textures < 1 {
		return &ConfigError{Field: "textures", Reason: fmt.Sprintf("need at least one texture, got %d", c.Textures)}
	}

	if c.Targets < 1 {
		return &ConfigError{Field: "targets", Reason: fmt.Sprintf("need at least one render target, got %d", c.Targets)}
	}

	if c.Scale <= 0 {
		return &ConfigError{Field: "scale", Reason: fmt.Sprintf("must be positive, got %v", c.Scale)}
	}

	if c.Duration <= 0 {
		return &ConfigError{Field: "duration", Reason: fmt.Sprintf("must be positive, got %v", c.Duration)}
	}

	if c.Width == 0 || c.Height == 0 {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("viewport must not be empty, got %dx%d", c.Width, c.Height)}
	}

	return nil
}
