package render

import (
	"fmt"

	"github.com/oliverbestmann/fbobench/glm"
)

// PipelineStats counts the gpu facing operations the pipeline issued.
type PipelineStats struct {
	// Binds is the number of target binds actually sent to the backend.
	// With rebind suppression this grows with the number of distinct
	// targets used per frame, not with the number of passes.
	Binds uint64

	// Resolves is the number of msaa resolve blits.
	Resolves uint64

	// Batches is the number of submitted draw call batches.
	Batches uint64

	// Passes is the number of completed BeginPass/EndPass cycles.
	Passes uint64
}

// Pipeline drives render passes against a Backend. It is a two state
// machine, idle or inside a pass, and it tracks which target is bound
// on the backend across pass boundaries.
//
// Ending a pass deliberately does not touch the binding: a rebind is
// only issued when the next pass requests a different target than the
// one already bound. A naive unconditional rebind to the default
// framebuffer after every pass costs one pipeline flush per batch,
// which is exactly the defect this harness measures.
//
// The full transition table for BeginPass:
//
//	bound      requested   action
//	---------  ----------  -------------
//	<nothing>  t           bind t
//	t          t           no-op
//	t          u != t      bind u
//
// where t and u range over offscreen targets and the default
// framebuffer alike.
type Pipeline struct {
	backend Backend

	// target of the active pass, nil for the default framebuffer
	active *Target
	inPass bool

	// target currently bound on the backend. Only meaningful
	// once boundSet is true.
	bound    *Target
	boundSet bool

	stats PipelineStats
}

func NewPipeline(backend Backend) *Pipeline {
	return &Pipeline{backend: backend}
}

// BeginPass starts a pass rendering into target, or into the default
// framebuffer if target is nil. Fails with ErrInvalidPassState when a
// pass is already active.
func (p *Pipeline) BeginPass(target *Target) error {
	if p.inPass {
		return fmt.Errorf("begin pass while pass is active: %w", ErrInvalidPassState)
	}

	if !p.boundSet || p.bound != target {
		if err := p.backend.BindTarget(target); err != nil {
			return fmt.Errorf("bind target: %w", err)
		}

		p.bound = target
		p.boundSet = true
		p.stats.Binds++
	}

	p.active = target
	p.inPass = true

	return nil
}

// EndPass finishes the active pass. Multisampled targets are resolved
// into their resolve attachment, exactly once per pass. The binding is
// left untouched for the next pass to reuse.
func (p *Pipeline) EndPass() error {
	if !p.inPass {
		return fmt.Errorf("end pass while idle: %w", ErrInvalidPassState)
	}

	if p.active != nil && p.active.MSAA() {
		if err := p.backend.Resolve(p.active); err != nil {
			return fmt.Errorf("resolve %dx msaa target: %w", p.active.SampleCount, err)
		}

		p.stats.Resolves++
	}

	p.active = nil
	p.inPass = false
	p.stats.Passes++

	return nil
}

// Clear fills the target of the active pass.
func (p *Pipeline) Clear(color glm.Vec4f) error {
	if !p.inPass {
		return fmt.Errorf("clear while idle: %w", ErrInvalidPassState)
	}

	return p.backend.Clear(color)
}

// Draw submits one batch into the active pass.
func (p *Pipeline) Draw(batch Batch) error {
	if !p.inPass {
		return fmt.Errorf("draw while idle: %w", ErrInvalidPassState)
	}

	if err := p.backend.Submit(batch); err != nil {
		return fmt.Errorf("submit batch of %d: %w", batch.Len(), err)
	}

	p.stats.Batches++

	return nil
}

// Blit stretches the output of src over the target of the active pass.
func (p *Pipeline) Blit(src *Target) error {
	if !p.inPass {
		return fmt.Errorf("blit while idle: %w", ErrInvalidPassState)
	}

	return p.backend.Blit(src)
}

// Composite draws one full screen quad into the active pass, sampling
// the outputs of all sources in order. It runs once per frame, not
// once per batch. The source attachments are borrowed read-only for
// the duration of the call, ownership never moves.
func (p *Pipeline) Composite(sources []*Target, shader string) error {
	if !p.inPass {
		return fmt.Errorf("composite while idle: %w", ErrInvalidPassState)
	}

	return p.backend.Composite(sources, shader)
}

// InvalidateBinding forgets the tracked binding, forcing a bind on the
// next BeginPass. Needed after the backend lost or recreated its
// surface, for example on resize.
func (p *Pipeline) InvalidateBinding() {
	p.bound = nil
	p.boundSet = false
}

// Stats returns the operation counters accumulated so far.
func (p *Pipeline) Stats() PipelineStats {
	return p.stats
}
