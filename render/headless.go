package render

import (
	"fmt"

	"github.com/oliverbestmann/fbobench/glm"
)

// HeadlessCounters records every operation a Headless backend saw.
type HeadlessCounters struct {
	Frames     uint64
	Binds      uint64
	Clears     uint64
	Draws      uint64
	Resolves   uint64
	Blits      uint64
	Composites uint64

	// DefaultBinds counts only the binds of the default framebuffer.
	DefaultBinds uint64

	// TargetsCreated counts CreateTarget calls,
	// ResolvesAllocated the resolve attachments among them.
	TargetsCreated    uint64
	ResolvesAllocated uint64
}

// Headless is a Backend without a gpu. It allocates dummy attachments
// and counts operations. Used for CPU-side dispatch measurements on
// machines without graphics and for exercising the pipeline in tests.
type Headless struct {
	counters HeadlessCounters

	bound   *Target
	inFrame bool
	closed  bool

	nextTexture uint64
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Name() string {
	return "headless"
}

func (h *Headless) CreateTarget(spec TargetSpec) (*Target, error) {
	if h.closed {
		return nil, fmt.Errorf("%w %q: backend closed", ErrTargetCreate, spec.Label)
	}

	h.counters.TargetsCreated++

	color := &headlessAttachment{label: spec.Label + ".color"}

	var resolve Attachment
	if spec.SampleCount > 1 {
		h.counters.ResolvesAllocated++
		resolve = &headlessAttachment{label: spec.Label + ".resolve"}
	}

	return NewTarget(spec, color, resolve), nil
}

func (h *Headless) CreateTexture(width, height uint32, pixels []byte) (Texture, error) {
	if want := int(width) * int(height) * 4; len(pixels) != want {
		return nil, fmt.Errorf("texture pixels: got %d bytes, want %d", len(pixels), want)
	}

	h.nextTexture++

	return &headlessTexture{id: h.nextTexture}, nil
}

func (h *Headless) Resize(width, height uint32) error {
	return nil
}

func (h *Headless) BeginFrame() error {
	h.inFrame = true
	return nil
}

func (h *Headless) BindTarget(target *Target) error {
	h.bound = target
	h.counters.Binds++

	if target == nil {
		h.counters.DefaultBinds++
	}

	return nil
}

func (h *Headless) Clear(color glm.Vec4f) error {
	h.counters.Clears++
	return nil
}

func (h *Headless) Submit(batch Batch) error {
	h.counters.Draws++
	return nil
}

func (h *Headless) Resolve(target *Target) error {
	if !target.MSAA() {
		return fmt.Errorf("resolve of single sample target")
	}

	h.counters.Resolves++

	return nil
}

func (h *Headless) Blit(src *Target) error {
	h.counters.Blits++
	return nil
}

func (h *Headless) Composite(sources []*Target, shader string) error {
	// borrow every source output once, like a real compositor would
	for _, src := range sources {
		_ = src.Output()
	}

	h.counters.Composites++

	return nil
}

func (h *Headless) EndFrame() error {
	h.inFrame = false
	h.counters.Frames++
	return nil
}

func (h *Headless) Close() {
	h.closed = true
}

// Counters returns a copy of the recorded operation counts.
func (h *Headless) Counters() HeadlessCounters {
	return h.counters
}

// Bound returns the currently bound target, nil meaning the default
// framebuffer.
func (h *Headless) Bound() *Target {
	return h.bound
}

type headlessAttachment struct {
	label    string
	released bool
}

func (a *headlessAttachment) Release() {
	if a.released {
		panic("double release of attachment " + a.label)
	}

	a.released = true
}

type headlessTexture struct {
	id       uint64
	released bool
}

func (t *headlessTexture) Release() {
	t.released = true
}
