package gpu

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/webgpu/wgpu"
)

//go:embed composite.wgsl
var compositeShaderCode string

// CompositeCommand draws full screen quads sampling offscreen targets
// into another target. Used both for the final blit of an offscreen
// scene to the surface and for the compositing pass that merges several
// scene layers.
type CompositeCommand struct {
	ctx *Context

	pipelineCache *PipelineCache[compositePipelineConfig]

	bufIndices *wgpu.Buffer
}

func NewCompositeCommand(ctx *Context) (*CompositeCommand, error) {
	bufIndices, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Composite.Indices",
		Contents: wgpu.ToBytes([]uint16{2, 0, 1, 1, 3, 2}),
		Usage:    wgpu.BufferUsageIndex,
	})

	if err != nil {
		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	return &CompositeCommand{
		ctx:           ctx,
		pipelineCache: NewPipelineCache[compositePipelineConfig](ctx),
		bufIndices:    bufIndices,
	}, nil
}

// Draw samples every source in order into dest with one render pass.
// With a single source this is a plain blit. The sources are borrowed,
// never owned.
func (c *CompositeCommand) Draw(dest passTarget, sources []*Texture, shader string, blend wgpu.BlendState) error {
	if len(sources) == 0 {
		return nil
	}

	if shader == "" {
		shader = compositeShaderCode
	}

	sampler, err := CachedSampler(c.ctx.Device, wgpu.SamplerDescriptor{
		Label:         "Composite.Sampler",
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

	pipeline, err := c.pipelineCache.Get(compositePipelineConfig{
		TargetFormat:      dest.format,
		TargetSampleCount: dest.sampleCount,
		Blend:             blend,
		ShaderSource:      shader,
	})
	if err != nil {
		return fmt.Errorf("get composite pipeline: %w", err)
	}

	encoder, err := c.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Composite.Pass",
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
	pass.SetIndexBuffer(c.bufIndices, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)

	var bindGroups []*wgpu.BindGroup

	defer func() {
		for _, bg := range bindGroups {
			bg.Release()
		}
	}()

	// one quad per source, all inside the single pass
	for _, source := range sources {
		bindGroup, err := c.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
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

		bindGroups = append(bindGroups, bindGroup)

		pass.SetBindGroup(0, bindGroup, nil)
		pass.DrawIndexed(6, 1, 0, 0, 0)
	}

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

	c.ctx.Queue.Submit(cmdBuffer)

	return nil
}

func (c *CompositeCommand) Release() {
	c.bufIndices.Release()
}

type compositePipelineConfig struct {
	TargetFormat      wgpu.TextureFormat
	TargetSampleCount uint32
	Blend             wgpu.BlendState
	ShaderSource      string
}

func (conf compositePipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for compositing",
		slog.Any("format", conf.TargetFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      "Composite.ShaderSource",
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: conf.ShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("compile composite shader: %w", err)
	}

	defer shader.Release()

	pipeline, err := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("Composite.%s", conf.TargetFormat),
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    conf.TargetFormat,
					Blend:     &conf.Blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  conf.TargetSampleCount,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build composite pipeline: %w", err)
	}

	return pipeline, nil
}
