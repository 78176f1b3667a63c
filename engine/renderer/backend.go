package renderer

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

// Device is the logical device collaborator. It is lent to the core by
// reference; the core never destroys it.
type Device interface {
	CreateShaderModule(code []uint32) (metadata.ShaderModule, error)
	DestroyShaderModule(module metadata.ShaderModule)
	CreatePipelineLayout() (metadata.PipelineLayout, error)
	DestroyPipelineLayout(layout metadata.PipelineLayout)
	CreateGraphicsPipeline(info *metadata.GraphicsPipelineCreateInfo) (metadata.Pipeline, error)
	DestroyPipeline(pipeline metadata.Pipeline)
	CommandPool() metadata.CommandPool
	AllocateCommandBuffers(pool metadata.CommandPool, count uint32) ([]metadata.CommandBuffer, error)
	FreeCommandBuffers(pool metadata.CommandPool, buffers []metadata.CommandBuffer)
	// WaitIdle blocks until every submitted GPU operation completed.
	WaitIdle() error
}

// CommandEncoder records commands into an open command buffer.
type CommandEncoder interface {
	Begin(cb metadata.CommandBuffer) error
	BeginRenderPass(cb metadata.CommandBuffer, info *metadata.RenderPassBeginInfo)
	BindPipeline(cb metadata.CommandBuffer, bindPoint metadata.PipelineBindPoint, pipeline metadata.Pipeline)
	Draw(cb metadata.CommandBuffer, params metadata.DrawParams)
	EndRenderPass(cb metadata.CommandBuffer)
	End(cb metadata.CommandBuffer) error
}

// SwapChain is the presentation collaborator. Image i is always paired with
// framebuffer i and with command buffer i.
type SwapChain interface {
	ImageCount() uint32
	Extent() metadata.Extent2D
	RenderPass() metadata.RenderPass
	Framebuffer(index uint32) metadata.Framebuffer
	// AcquireNextImage may block until an image is available.
	AcquireNextImage() (uint32, metadata.Result)
	// Submit queues cb for execution and presents image index once it is done.
	Submit(cb metadata.CommandBuffer, index uint32) metadata.Result
}

// Window is the windowing collaborator.
type Window interface {
	ShouldClose() bool
	// PollEvents processes pending events and returns immediately.
	PollEvents()
}
