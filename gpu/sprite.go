package gpu

import (
	_ "embed"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/fbobench/glm"
)

//go:embed sprite.wgsl
var spriteShaderCode string

// maximum number of sprite instances to render in one draw call.
const maxSpriteInstances = 128 * 1024

type spriteInstance struct {
	Color glm.Vec4f

	// first and second row of the transposed affine into clip space
	TransformRow0 glm.Vec3f
	TransformRow1 glm.Vec3f
}

// passTarget names the attachment a draw call renders into.
type passTarget struct {
	view        *wgpu.TextureView
	format      wgpu.TextureFormat
	sampleCount uint32
}

// SpriteCommand renders a run of textured quad instances with a single
// draw call per batch.
type SpriteCommand struct {
	ctx *Context

	pipelineCache *PipelineCache[spritePipelineConfig]

	instances    []spriteInstance
	bufInstances *wgpu.Buffer
	bufIndices   *wgpu.Buffer
}

func NewSpriteCommand(ctx *Context) (*SpriteCommand, error) {
	bufInstances, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sprite.Instances",
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(spriteInstance{})) * maxSpriteInstances,
	})

	if err != nil {
		return nil, fmt.Errorf("create instance buffer: %w", err)
	}

	bufIndices, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Sprite.Indices",
		Contents: wgpu.ToBytes([]uint16{2, 0, 1, 1, 3, 2}),
		Usage:    wgpu.BufferUsageIndex,
	})

	if err != nil {
		bufInstances.Release()

		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	p := &SpriteCommand{
		ctx:          ctx,
		bufInstances: bufInstances,
		bufIndices:   bufIndices,
	}

	p.pipelineCache = NewPipelineCache[spritePipelineConfig](ctx)

	return p, nil
}

// Stage appends one instance to the staging buffer for the next DrawStaged.
func (p *SpriteCommand) Stage(color glm.Vec4f, transform glm.Mat3f) error {
	if len(p.instances)+1 > maxSpriteInstances {
		return fmt.Errorf("too many instances in one batch: %d", len(p.instances)+1)
	}

	p.instances = append(p.instances, spriteInstance{
		Color:         color,
		TransformRow0: transform.Row(0),
		TransformRow1: transform.Row(1),
	})

	return nil
}

// DrawStaged renders all staged instances into dest with a single
// indexed draw, sampling source. The staging buffer is reset in any
// case.
func (p *SpriteCommand) DrawStaged(dest passTarget, source *Texture) error {
	defer func() { p.instances = p.instances[:0] }()

	if len(p.instances) == 0 {
		return nil
	}

	slog.Debug("Rendering sprites", slog.Int("instanceCount", len(p.instances)))

	if err := p.ctx.Queue.WriteBuffer(p.bufInstances, 0, wgpu.ToBytes(p.instances)); err != nil {
		return fmt.Errorf("update instance buffer: %w", err)
	}

	sampler, err := CachedSampler(p.ctx.Device, wgpu.SamplerDescriptor{
		Label:         "Sprite.Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   1,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	pipelineConfig := spritePipelineConfig{
		TargetFormat:      dest.format,
		TargetSampleCount: dest.sampleCount,
	}

	pipeline, err := p.pipelineCache.Get(pipelineConfig)
	if err != nil {
		return fmt.Errorf("get sprite pipeline: %w", err)
	}

	bindGroup, err := p.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: source.View(),
			},
			{
				Binding: 1,
				Sampler: sampler,
			},
		},
	})

	if err != nil {
		return err
	}

	defer bindGroup.Release()

	encoder, err := p.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Sprite.Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    dest.view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})

	defer func() {
		if pass != nil {
			pass.Release()
		}
	}()

	pass.SetPipeline(pipeline.Pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.SetVertexBuffer(0, p.bufInstances, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(p.bufIndices, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(6, uint32(len(p.instances)), 0, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}

	// must release pass before finishing the encoder
	pass.Release()
	pass = nil

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}

	defer cmdBuffer.Release()

	p.ctx.Queue.Submit(cmdBuffer)

	return nil
}

func (p *SpriteCommand) Release() {
	p.bufInstances.Release()
	p.bufIndices.Release()
}

type spritePipelineConfig struct {
	TargetFormat      wgpu.TextureFormat
	TargetSampleCount uint32
}

func (conf spritePipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for sprites",
		slog.Any("format", conf.TargetFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      "Sprite.ShaderSource",
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: spriteShaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("compile sprite shader: %w", err)
	}

	defer shader.Release()

	desc := &wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("Sprite.%s", conf.TargetFormat),
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(spriteInstance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{
							// color
							Format:         wgpu.VertexFormatFloat32x4,
							Offset:         uint64(unsafe.Offsetof(spriteInstance{}.Color)),
							ShaderLocation: 0,
						},
						{
							// transform, row0
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(unsafe.Offsetof(spriteInstance{}.TransformRow0)),
							ShaderLocation: 1,
						},
						{
							// transform, row1
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(unsafe.Offsetof(spriteInstance{}.TransformRow1)),
							ShaderLocation: 2,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    conf.TargetFormat,
					Blend:     &wgpu.BlendStateAlphaBlending,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  conf.TargetSampleCount,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	}

	pipeline, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("build sprite pipeline: %w", err)
	}

	return pipeline, nil
}
