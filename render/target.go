package render

// Attachment is one gpu surface owned by a render target. Attachment
// identifiers are commonly reused by drivers after deletion, so every
// attachment has exactly one owner that is responsible for the Release
// call. Everyone else only ever borrows it.
type Attachment interface {
	Release()
}

// TargetSpec describes the attachments of a render target.
type TargetSpec struct {
	Width  uint32
	Height uint32

	// SampleCount > 1 enables multisampling. The target then also owns
	// a separate single sample resolve attachment.
	SampleCount uint32

	Label string
}

// Target is an offscreen render target. It exclusively owns its color
// attachment and, for multisampled targets, its resolve attachment.
//
// Consumers that want to read the rendered output borrow it via Output.
// If a consumer genuinely needs the attachment to outlive the target,
// it must go through ShareOutput instead of holding a second owning
// handle.
type Target struct {
	color   *SharedAttachment
	resolve *SharedAttachment

	Width       uint32
	Height      uint32
	SampleCount uint32

	released bool
}

// NewTarget wraps freshly allocated attachments into a Target. resolve
// must be nil exactly when spec.SampleCount <= 1.
func NewTarget(spec TargetSpec, color, resolve Attachment) *Target {
	if spec.SampleCount > 1 && resolve == nil {
		panic("multisampled target requires a resolve attachment")
	}

	if spec.SampleCount <= 1 && resolve != nil {
		panic("single sample target must not have a resolve attachment")
	}

	t := &Target{
		color:       Share(color),
		Width:       spec.Width,
		Height:      spec.Height,
		SampleCount: max(spec.SampleCount, 1),
	}

	if resolve != nil {
		t.resolve = Share(resolve)
	}

	return t
}

func (t *Target) MSAA() bool {
	return t.SampleCount > 1
}

// Color returns the color attachment, borrowed. The caller must not
// release it and must not hold on to it past the next Release or
// resize of the target.
func (t *Target) Color() Attachment {
	return t.color.Borrow()
}

// ResolveAttachment returns the resolve attachment, borrowed, or nil
// for single sample targets.
func (t *Target) ResolveAttachment() Attachment {
	if t.resolve == nil {
		return nil
	}

	return t.resolve.Borrow()
}

// Output returns the attachment holding the readable rendered image,
// borrowed: the resolve attachment for multisampled targets, the color
// attachment otherwise.
func (t *Target) Output() Attachment {
	if t.resolve != nil {
		return t.resolve.Borrow()
	}

	return t.color.Borrow()
}

// ShareOutput returns a reference counted handle on the output
// attachment. The attachment stays alive until both the target and all
// shared handles released it.
func (t *Target) ShareOutput() *SharedAttachment {
	if t.resolve != nil {
		return t.resolve.Retain()
	}

	return t.color.Retain()
}

// Release drops the targets ownership of its attachments. Idempotent.
// Attachments shared via ShareOutput survive until their last holder
// releases them.
func (t *Target) Release() {
	if t.released {
		return
	}

	t.released = true

	t.color.Release()

	if t.resolve != nil {
		t.resolve.Release()
	}
}

// SharedAttachment is a reference counted owner of an Attachment.
// The underlying attachment is released exactly once, when the last
// reference is gone. Not safe for concurrent use, the frame loop is
// single threaded.
type SharedAttachment struct {
	attachment Attachment
	refs       *int
}

// Share takes ownership of attachment and returns a handle with one
// reference.
func Share(attachment Attachment) *SharedAttachment {
	refs := 1
	return &SharedAttachment{attachment: attachment, refs: &refs}
}

// Retain adds a reference and returns a handle that must be released
// independently.
func (s *SharedAttachment) Retain() *SharedAttachment {
	if *s.refs <= 0 {
		panic("retain of released attachment")
	}

	*s.refs++

	return &SharedAttachment{attachment: s.attachment, refs: s.refs}
}

// Borrow returns the underlying attachment without transferring
// ownership. The caller must not release it.
func (s *SharedAttachment) Borrow() Attachment {
	if *s.refs <= 0 {
		panic("borrow of released attachment")
	}

	return s.attachment
}

// Release drops one reference, releasing the attachment when it was
// the last one. Calling Release twice on the same handle is a bug and
// panics instead of corrupting an unrelated resource.
func (s *SharedAttachment) Release() {
	if s.attachment == nil {
		panic("double release of shared attachment handle")
	}

	*s.refs--

	if *s.refs == 0 {
		s.attachment.Release()
	}

	s.attachment = nil
}
