package engine

import (
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Backend is everything the engine needs from a graphics API.
type Backend interface {
	renderer.Device
	renderer.CommandEncoder
	renderer.SwapChain
}

// scene is the pipeline built from the configured shaders plus one
// pre-recorded command buffer per swapchain image.
type scene struct {
	pipeline *renderer.Pipeline
	buffers  *renderer.CommandBuffers
}

func newScene(backend Backend, layout metadata.PipelineLayout, cfg *config.Config) (*scene, error) {
	extent := backend.Extent()
	pipelineConfig := metadata.DefaultPipelineConfig(extent.Width, extent.Height)
	pipelineConfig.PipelineLayout = layout
	pipelineConfig.RenderPass = backend.RenderPass()

	pipeline, err := renderer.NewPipeline(backend, pipelineConfig, cfg.Shaders.Vertex, cfg.Shaders.Fragment,
		renderer.WithShaderOptions(cfg.ShaderOptions()))
	if err != nil {
		return nil, err
	}

	info := renderer.DefaultRecordInfo()
	info.ClearColor = cfg.ClearColor()
	info.Draw = cfg.DrawParams()
	buffers, err := renderer.RecordAll(backend, backend, backend.CommandPool(), pipeline, backend, info)
	if err != nil {
		pipeline.Destroy()
		return nil, err
	}

	core.LogInfo("Scene ready: pipeline %s, %d command buffers, %dx%d.", pipeline.ID(), buffers.Len(), extent.Width, extent.Height)
	return &scene{pipeline: pipeline, buffers: buffers}, nil
}

// destroy releases the buffers before the pipeline they reference. The
// device must be idle.
func (s *scene) destroy() {
	s.buffers.Free()
	s.pipeline.Destroy()
}
