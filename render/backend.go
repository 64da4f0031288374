// Package render contains the backend neutral parts of the harness
// rendering pipeline: render target lifecycle, the pass state machine
// with redundant-rebind suppression and draw call batching.
package render

import (
	"errors"

	"github.com/oliverbestmann/fbobench/glm"
)

var (
	// ErrInvalidPassState is returned when BeginPass is called while a
	// pass is already active, or EndPass while no pass is active. This
	// always indicates a bug in the calling code, never a transient
	// condition.
	ErrInvalidPassState = errors.New("render: invalid pass state")

	// ErrTargetCreate wraps failures to allocate the attachments of a
	// render target. The gpu state is considered unreliable afterwards,
	// callers must abort the run.
	ErrTargetCreate = errors.New("render: create render target")
)

// Texture identifies a sampleable texture owned by a Backend. Batching
// compares Texture handles by identity, so a handle must be created once
// and reused for every draw request that samples it.
type Texture interface {
	Release()
}

// Backend is the interface to an actual rendering implementation.
//
// A nil *Target passed to BindTarget selects the default framebuffer,
// the surface that is presented to the display.
//
// Backends are not safe for concurrent use. The frame loop is strictly
// sequential: BeginFrame, any number of BindTarget/Clear/Submit/Resolve
// calls, then EndFrame.
type Backend interface {
	// Name returns the backend identifier, for example "wgpu" or "headless".
	Name() string

	// CreateTarget allocates the attachments for an offscreen render
	// target. Failures wrap ErrTargetCreate.
	CreateTarget(spec TargetSpec) (*Target, error)

	// CreateTexture uploads a width x height RGBA8 pixel buffer and
	// returns a handle for use in draw requests.
	CreateTexture(width, height uint32, pixels []byte) (Texture, error)

	// Resize reconfigures the presentation surface. Any tracked binding
	// becomes stale, see Pipeline.InvalidateBinding.
	Resize(width, height uint32) error

	// BeginFrame acquires the surface for the next frame.
	BeginFrame() error

	// BindTarget makes target the destination of subsequent Clear, Submit,
	// Blit and Composite calls. A nil target binds the default framebuffer.
	BindTarget(target *Target) error

	// Clear fills the bound target with the given color.
	Clear(color glm.Vec4f) error

	// Submit issues one draw call rendering all requests of the batch
	// into the bound target.
	Submit(batch Batch) error

	// Resolve blits the multisampled color attachment of target into its
	// resolve attachment.
	Resolve(target *Target) error

	// Blit draws the output of src as a full screen quad into the bound
	// target, alpha blended over its content.
	Blit(src *Target) error

	// Composite draws a full screen quad into the bound target, sampling
	// the output of every source in order. Source attachments are
	// borrowed for the duration of the call only.
	Composite(sources []*Target, shader string) error

	// EndFrame presents the frame.
	EndFrame() error

	// Close releases all backend resources.
	Close()
}
