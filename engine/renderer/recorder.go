package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type CommandBufferState int

const (
	CommandBufferStateNotAllocated CommandBufferState = iota
	CommandBufferStateReady
	CommandBufferStateRecording
	CommandBufferStateInRenderPass
	CommandBufferStateRecordingEnded
	CommandBufferStateSubmitted
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferStateReady:
		return "ready"
	case CommandBufferStateRecording:
		return "recording"
	case CommandBufferStateInRenderPass:
		return "in_render_pass"
	case CommandBufferStateRecordingEnded:
		return "recording_ended"
	case CommandBufferStateSubmitted:
		return "submitted"
	default:
		return "not_allocated"
	}
}

// RecordInfo holds what every pre-recorded frame clears to and draws.
type RecordInfo struct {
	ClearColor   mgl32.Vec4
	ClearDepth   float32
	ClearStencil uint32
	Draw         metadata.DrawParams
}

// DefaultRecordInfo clears to dark grey, depth 1 and stencil 0, then draws one triangle.
func DefaultRecordInfo() RecordInfo {
	return RecordInfo{
		ClearColor:   mgl32.Vec4{0.1, 0.1, 0.1, 1.0},
		ClearDepth:   1.0,
		ClearStencil: 0,
		Draw:         metadata.DefaultDrawParams(),
	}
}

// CommandBuffers is a recorded batch: one primary command buffer per
// swapchain image, buffer i rendering into framebuffer i.
type CommandBuffers struct {
	device  Device
	pool    metadata.CommandPool
	handles []metadata.CommandBuffer
	states  []CommandBufferState
}

// RecordAll allocates one command buffer per swapchain image from pool and
// records the full frame into each one. Either every buffer is recorded or
// none is returned.
func RecordAll(device Device, enc CommandEncoder, pool metadata.CommandPool, pipeline *Pipeline, swapChain SwapChain, info RecordInfo) (*CommandBuffers, error) {
	count := swapChain.ImageCount()
	if count == 0 {
		return nil, core.Fail(core.ErrCommandRecording, "swapchain has no images")
	}

	handles, err := device.AllocateCommandBuffers(pool, count)
	if err != nil {
		return nil, core.Mark(err, core.ErrCommandRecording, "failed to allocate %d command buffers", count)
	}
	if uint32(len(handles)) != count {
		if len(handles) > 0 {
			device.FreeCommandBuffers(pool, handles)
		}
		return nil, core.Fail(core.ErrCommandRecording, "allocated %d command buffers, want %d", len(handles), count)
	}

	cbs := &CommandBuffers{
		device:  device,
		pool:    pool,
		handles: handles,
		states:  make([]CommandBufferState, count),
	}
	for i := range cbs.states {
		cbs.states[i] = CommandBufferStateReady
	}

	extent := swapChain.Extent()
	renderPass := swapChain.RenderPass()
	for i := uint32(0); i < count; i++ {
		if err := cbs.record(enc, i, pipeline, renderPass, swapChain.Framebuffer(i), extent, info); err != nil {
			cbs.Free()
			return nil, err
		}
	}

	core.LogDebug("Recorded %d command buffers.", count)
	return cbs, nil
}

func (c *CommandBuffers) record(enc CommandEncoder, i uint32, pipeline *Pipeline, renderPass metadata.RenderPass, framebuffer metadata.Framebuffer, extent metadata.Extent2D, info RecordInfo) error {
	cb := c.handles[i]

	if err := enc.Begin(cb); err != nil {
		return core.Mark(err, core.ErrCommandRecording, "failed to begin recording command buffer %d", i)
	}
	c.states[i] = CommandBufferStateRecording

	enc.BeginRenderPass(cb, &metadata.RenderPassBeginInfo{
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: metadata.Rect2D{
			Offset: metadata.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearColor:   info.ClearColor,
		ClearDepth:   info.ClearDepth,
		ClearStencil: info.ClearStencil,
	})
	c.states[i] = CommandBufferStateInRenderPass

	pipeline.Bind(enc, cb)
	enc.Draw(cb, info.Draw)

	enc.EndRenderPass(cb)
	c.states[i] = CommandBufferStateRecording

	if err := enc.End(cb); err != nil {
		return core.Mark(err, core.ErrCommandRecording, "failed to record command buffer %d", i)
	}
	c.states[i] = CommandBufferStateRecordingEnded
	return nil
}

func (c *CommandBuffers) Len() int {
	return len(c.handles)
}

// At returns the command buffer paired with swapchain image i.
func (c *CommandBuffers) At(i uint32) metadata.CommandBuffer {
	return c.handles[i]
}

func (c *CommandBuffers) State(i uint32) CommandBufferState {
	return c.states[i]
}

// MarkSubmitted records that buffer i was handed to the queue.
func (c *CommandBuffers) MarkSubmitted(i uint32) {
	c.states[i] = CommandBufferStateSubmitted
}

// Free returns every buffer to its pool. The device must be idle.
func (c *CommandBuffers) Free() {
	if len(c.handles) == 0 {
		return
	}
	c.device.FreeCommandBuffers(c.pool, c.handles)
	c.handles = nil
	for i := range c.states {
		c.states[i] = CommandBufferStateNotAllocated
	}
	c.states = nil
}
