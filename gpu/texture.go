package gpu

import (
	"fmt"

	"github.com/oliverbestmann/webgpu/wgpu"
)

// Texture wraps one wgpu.Texture together with its identity view.
// Unlike a whole render target, a Texture is always a single gpu
// surface: a multisampled render target is built from two of them.
type Texture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView

	format      wgpu.TextureFormat
	sampleCount uint32

	width  uint32
	height uint32

	released bool
}

type NewTextureOptions struct {
	Format      wgpu.TextureFormat
	Width       uint32
	Height      uint32
	SampleCount uint32
	Usage       wgpu.TextureUsage
	Label       string
}

func NewTexture(ctx *Context, opts NewTextureOptions) (*Texture, error) {
	if opts.SampleCount == 0 {
		opts.SampleCount = 1
	}

	if opts.Usage == 0 {
		opts.Usage = wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageRenderAttachment |
			wgpu.TextureUsageCopyDst |
			wgpu.TextureUsageCopySrc
	}

	desc := &wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        opts.Format,
		SampleCount:   opts.SampleCount,
		MipLevelCount: 1,

		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              opts.Width,
			Height:             opts.Height,
			DepthOrArrayLayers: 1,
		},

		Usage: opts.Usage,
	}

	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", opts.Label, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()

		return nil, fmt.Errorf("create texture view %q: %w", opts.Label, err)
	}

	return &Texture{
		texture:     texture,
		view:        view,
		format:      opts.Format,
		sampleCount: opts.SampleCount,
		width:       opts.Width,
		height:      opts.Height,
	}, nil
}

func (t *Texture) View() *wgpu.TextureView {
	return t.view
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) SampleCount() uint32 {
	return t.sampleCount
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

// WritePixels uploads a full RGBA8 pixel buffer into the texture.
func (t *Texture) WritePixels(ctx *Context, pixels []byte) error {
	layout := &wgpu.TexelCopyBufferLayout{
		Offset:       0,
		BytesPerRow:  t.width * 4,
		RowsPerImage: t.height,
	}

	size := &wgpu.Extent3D{
		Width:              t.width,
		Height:             t.height,
		DepthOrArrayLayers: 1,
	}

	dest := &wgpu.TexelCopyTextureInfo{
		Texture: t.texture,
		Aspect:  wgpu.TextureAspectAll,
	}

	if err := ctx.WriteTexture(dest, pixels, layout, size); err != nil {
		return fmt.Errorf("copy image data to texture: %w", err)
	}

	return nil
}

// Release frees the texture and its view. Idempotent, a texture handle
// is the single owner of its gpu resources.
func (t *Texture) Release() {
	if t.released {
		return
	}

	t.released = true

	t.view.Release()
	t.texture.Release()
}
