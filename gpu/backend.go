package gpu

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/fbobench/glm"
	"github.com/oliverbestmann/fbobench/render"
)

const targetFormat = wgpu.TextureFormatRGBA8Unorm

// Backend implements render.Backend on top of a webgpu device.
type Backend struct {
	ctx *Context

	surfaceConfig *wgpu.SurfaceConfiguration

	// surface texture of the current frame, only valid between
	// BeginFrame and EndFrame
	surface     *wgpu.Texture
	surfaceView *wgpu.TextureView

	bound *render.Target

	sprite    *SpriteCommand
	composite *CompositeCommand
}

// NewBackend creates the wgpu device for the given surface and
// configures it at the given size.
func NewBackend(sd *wgpu.SurfaceDescriptor, width, height uint32) (*Backend, error) {
	ctx, err := NewContext(sd)
	if err != nil {
		return nil, fmt.Errorf("initializing wgpu: %w", err)
	}

	caps := ctx.Surface.GetCapabilities(ctx.Adapter)
	slog.Info("Available surface formats", slog.Any("formats", caps.Formats))

	b := &Backend{
		ctx: ctx,
		surfaceConfig: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      wgpu.TextureFormatBGRA8Unorm,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],

			// try to reduce input latency
			DesiredMaximumFrameLatency: 1,
		},
	}

	if err := b.Resize(width, height); err != nil {
		ctx.Release()
		return nil, err
	}

	b.sprite, err = NewSpriteCommand(ctx)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("initialize sprite command: %w", err)
	}

	b.composite, err = NewCompositeCommand(ctx)
	if err != nil {
		b.sprite.Release()
		ctx.Release()
		return nil, fmt.Errorf("initialize composite command: %w", err)
	}

	return b, nil
}

func (b *Backend) Name() string {
	return "wgpu"
}

func (b *Backend) Resize(width, height uint32) error {
	slog.Debug("Configure surface",
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	b.surfaceConfig.Width = width
	b.surfaceConfig.Height = height
	b.ctx.Surface.Configure(b.ctx.Device, b.surfaceConfig)

	return nil
}

func (b *Backend) CreateTarget(spec render.TargetSpec) (*render.Target, error) {
	sampleCount := max(spec.SampleCount, 1)

	color, err := NewTexture(b.ctx, NewTextureOptions{
		Format:      targetFormat,
		Width:       spec.Width,
		Height:      spec.Height,
		SampleCount: sampleCount,
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Label:       spec.Label + ".color",
	})
	if err != nil {
		return nil, fmt.Errorf("%w %q: color attachment: %w", render.ErrTargetCreate, spec.Label, err)
	}

	var resolve *Texture

	if sampleCount > 1 {
		resolve, err = NewTexture(b.ctx, NewTextureOptions{
			Format:      targetFormat,
			Width:       spec.Width,
			Height:      spec.Height,
			SampleCount: 1,
			Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
			Label:       spec.Label + ".resolve",
		})
		if err != nil {
			color.Release()

			return nil, fmt.Errorf("%w %q: resolve attachment: %w", render.ErrTargetCreate, spec.Label, err)
		}
	}

	if resolve != nil {
		return render.NewTarget(spec, color, resolve), nil
	}

	return render.NewTarget(spec, color, nil), nil
}

func (b *Backend) CreateTexture(width, height uint32, pixels []byte) (render.Texture, error) {
	t, err := NewTexture(b.ctx, NewTextureOptions{
		Format: targetFormat,
		Width:  width,
		Height: height,
		Label:  "UserTexture",
	})
	if err != nil {
		return nil, err
	}

	if err := t.WritePixels(b.ctx, pixels); err != nil {
		t.Release()
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	return t, nil
}

func (b *Backend) BeginFrame() error {
	surface, err := b.ctx.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}

	view, err := surface.CreateView(nil)
	if err != nil {
		surface.Release()

		return fmt.Errorf("create surface view: %w", err)
	}

	b.surface = surface
	b.surfaceView = view

	return nil
}

func (b *Backend) BindTarget(target *render.Target) error {
	b.bound = target
	return nil
}

// boundPass resolves the current binding into the attachment to render
// into: the surface for the default framebuffer, the color attachment
// of the bound offscreen target otherwise.
func (b *Backend) boundPass() passTarget {
	if b.bound == nil {
		return passTarget{
			view:        b.surfaceView,
			format:      b.surfaceConfig.Format,
			sampleCount: 1,
		}
	}

	color := b.bound.Color().(*Texture)

	return passTarget{
		view:        color.View(),
		format:      color.Format(),
		sampleCount: color.SampleCount(),
	}
}

func (b *Backend) Clear(color glm.Vec4f) error {
	dest := b.boundPass()

	enc, err := b.ctx.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "ClearTarget",
	})
	if err != nil {
		return err
	}

	defer enc.Release()

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "ClearTarget",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    dest.view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(color[0]),
					G: float64(color[1]),
					B: float64(color[2]),
					A: float64(color[3]),
				},
			},
		},
	})

	defer func() {
		if pass != nil {
			pass.Release()
		}
	}()

	if err := pass.End(); err != nil {
		return err
	}

	pass.Release()
	pass = nil

	buf, err := enc.Finish(&wgpu.CommandBufferDescriptor{Label: "ClearTarget"})
	if err != nil {
		return err
	}

	defer buf.Release()

	b.ctx.Queue.Submit(buf)

	return nil
}

func (b *Backend) Submit(batch render.Batch) error {
	for _, req := range batch.Requests {
		x, y, w, h := req.Quad.XYWH()

		// unit quad -> quad rect -> clip space
		transform := req.Transform.
			Translate(x, y).
			Scale(w, h)

		if err := b.sprite.Stage(req.Color, transform); err != nil {
			return err
		}
	}

	return b.sprite.DrawStaged(b.boundPass(), batch.Texture.(*Texture))
}

// Resolve blits the multisampled color attachment into the resolve
// attachment using an empty load/store pass with a resolve target.
func (b *Backend) Resolve(target *render.Target) error {
	color := target.Color().(*Texture)
	resolve := target.ResolveAttachment().(*Texture)

	enc, err := b.ctx.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "ResolveTarget",
	})
	if err != nil {
		return err
	}

	defer enc.Release()

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "ResolveTarget",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          color.View(),
				ResolveTarget: resolve.View(),
				LoadOp:        wgpu.LoadOpLoad,
				StoreOp:       wgpu.StoreOpStore,
			},
		},
	})

	defer func() {
		if pass != nil {
			pass.Release()
		}
	}()

	if err := pass.End(); err != nil {
		return err
	}

	pass.Release()
	pass = nil

	buf, err := enc.Finish(&wgpu.CommandBufferDescriptor{Label: "ResolveTarget"})
	if err != nil {
		return err
	}

	defer buf.Release()

	b.ctx.Queue.Submit(buf)

	return nil
}

func (b *Backend) Blit(src *render.Target) error {
	source := src.Output().(*Texture)

	// alpha blending so several blitted targets layer instead of the
	// last one erasing the others
	return b.composite.Draw(b.boundPass(), []*Texture{source}, "", wgpu.BlendStateAlphaBlending)
}

func (b *Backend) Composite(sources []*render.Target, shader string) error {
	textures := make([]*Texture, len(sources))
	for i, src := range sources {
		textures[i] = src.Output().(*Texture)
	}

	return b.composite.Draw(b.boundPass(), textures, shader, wgpu.BlendStateAlphaBlending)
}

func (b *Backend) EndFrame() error {
	b.ctx.Surface.Present()

	b.surfaceView.Release()
	b.surfaceView = nil

	// the surface texture must not be released after a successful present
	b.surface = nil

	return nil
}

func (b *Backend) Close() {
	if b.composite != nil {
		b.composite.Release()
	}

	if b.sprite != nil {
		b.sprite.Release()
	}

	if b.ctx != nil {
		b.ctx.Release()
	}
}
