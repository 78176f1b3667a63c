package renderer

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const shaderEntryPoint = "main"

// Pipeline owns a vertex and a fragment shader module and the graphics
// pipeline compiled from them. The device, layout and render pass it refers
// to are owned elsewhere.
type Pipeline struct {
	id       uuid.UUID
	device   Device
	handle   metadata.Pipeline
	vertex   metadata.ShaderModule
	fragment metadata.ShaderModule
}

type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	shader      ShaderOptions
	vertexInput metadata.VertexInputState
}

// WithShaderOptions sets how shader binaries are validated.
func WithShaderOptions(opts ShaderOptions) PipelineOption {
	return func(o *pipelineOptions) {
		o.shader = opts
	}
}

// WithVertexInput describes vertex buffer bindings. Without it the pipeline
// has no vertex input and geometry comes from the vertex shader.
func WithVertexInput(state metadata.VertexInputState) PipelineOption {
	return func(o *pipelineOptions) {
		o.vertexInput = state
	}
}

// NewPipeline compiles a graphics pipeline from config and the shader binaries
// at vertPath and fragPath. Nothing is left allocated when it fails.
func NewPipeline(device Device, config metadata.PipelineConfig, vertPath, fragPath string, options ...PipelineOption) (*Pipeline, error) {
	opts := &pipelineOptions{}
	for _, o := range options {
		o(opts)
	}

	if err := config.Validate(); err != nil {
		return nil, core.Mark(err, core.ErrPipelineCreation, "invalid pipeline config")
	}

	// Read both binaries before touching the device.
	vertCode, err := ReadShaderFile(vertPath)
	if err != nil {
		return nil, err
	}
	fragCode, err := ReadShaderFile(fragPath)
	if err != nil {
		return nil, err
	}
	core.LogDebug("Vertex shader size: %d bytes", len(vertCode))
	core.LogDebug("Fragment shader size: %d bytes", len(fragCode))

	p := &Pipeline{
		id:     uuid.New(),
		device: device,
	}
	ok := false
	defer func() {
		if !ok {
			p.Destroy()
		}
	}()

	if p.vertex, err = NewShaderModule(device, vertCode, opts.shader); err != nil {
		return nil, core.Mark(err, core.ErrResourceCreation, "vertex shader %q", vertPath)
	}
	if p.fragment, err = NewShaderModule(device, fragCode, opts.shader); err != nil {
		return nil, core.Mark(err, core.ErrResourceCreation, "fragment shader %q", fragPath)
	}

	info := &metadata.GraphicsPipelineCreateInfo{
		Stages: []metadata.ShaderStageInfo{
			{Stage: metadata.ShaderStageVertex, Module: p.vertex, EntryPoint: shaderEntryPoint},
			{Stage: metadata.ShaderStageFragment, Module: p.fragment, EntryPoint: shaderEntryPoint},
		},
		VertexInput:       opts.vertexInput,
		Config:            config,
		BasePipelineIndex: -1,
	}

	handle, err := device.CreateGraphicsPipeline(info)
	if err != nil {
		return nil, core.Mark(err, core.ErrPipelineCreation, "failed to create graphics pipeline")
	}
	if handle.IsNull() {
		return nil, core.Fail(core.ErrPipelineCreation, "device returned a null graphics pipeline")
	}
	p.handle = handle
	ok = true

	core.LogDebug("Graphics pipeline %s created!", p.id)
	return p, nil
}

func (p *Pipeline) ID() uuid.UUID {
	return p.id
}

func (p *Pipeline) Handle() metadata.Pipeline {
	return p.handle
}

// Bind records a graphics pipeline bind into cb. It must be called inside an
// active render pass, before any draw.
func (p *Pipeline) Bind(enc CommandEncoder, cb metadata.CommandBuffer) {
	enc.BindPipeline(cb, metadata.PipelineBindPointGraphics, p.handle)
}

// Destroy releases the shader modules and the pipeline. The device must be
// idle with respect to this pipeline. Calling Destroy again does nothing.
func (p *Pipeline) Destroy() {
	if !p.vertex.IsNull() {
		p.device.DestroyShaderModule(p.vertex)
		p.vertex = metadata.NullHandle
	}
	if !p.fragment.IsNull() {
		p.device.DestroyShaderModule(p.fragment)
		p.fragment = metadata.NullHandle
	}
	if !p.handle.IsNull() {
		p.device.DestroyPipeline(p.handle)
		p.handle = metadata.NullHandle
		core.LogDebug("Graphics pipeline %s destroyed.", p.id)
	}
}
