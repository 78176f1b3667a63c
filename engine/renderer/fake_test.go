package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var errFake = errors.New("fake device failure")

// fakeDevice hands out increasing handles and tracks which ones are alive.
type fakeDevice struct {
	next uint64

	liveModules   map[metadata.ShaderModule]bool
	livePipelines map[metadata.Pipeline]bool
	liveLayouts   map[metadata.PipelineLayout]bool
	liveBuffers   map[metadata.CommandBuffer]bool

	modulesCreated   int
	modulesDestroyed int
	pipelinesCreated int
	lastPipelineInfo *metadata.GraphicsPipelineCreateInfo
	waitIdleCalls    int

	failModuleAt   int // 1-based call number, 0 disables
	moduleCalls    int
	failPipeline   bool
	failAllocate   bool
	shortAllocate  bool
	failWaitIdle   bool
	pool           metadata.CommandPool
	freedBatches   int
	lastModuleCode []uint32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		next:          100,
		liveModules:   map[metadata.ShaderModule]bool{},
		livePipelines: map[metadata.Pipeline]bool{},
		liveLayouts:   map[metadata.PipelineLayout]bool{},
		liveBuffers:   map[metadata.CommandBuffer]bool{},
		pool:          7,
	}
}

func (d *fakeDevice) handle() uint64 {
	d.next++
	return d.next
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (metadata.ShaderModule, error) {
	d.moduleCalls++
	if d.failModuleAt == d.moduleCalls {
		return metadata.NullHandle, errFake
	}
	h := metadata.ShaderModule(d.handle())
	d.liveModules[h] = true
	d.modulesCreated++
	d.lastModuleCode = code
	return h, nil
}

func (d *fakeDevice) DestroyShaderModule(module metadata.ShaderModule) {
	if !d.liveModules[module] {
		panic("destroying unknown or already destroyed shader module")
	}
	delete(d.liveModules, module)
	d.modulesDestroyed++
}

func (d *fakeDevice) CreatePipelineLayout() (metadata.PipelineLayout, error) {
	h := metadata.PipelineLayout(d.handle())
	d.liveLayouts[h] = true
	return h, nil
}

func (d *fakeDevice) DestroyPipelineLayout(layout metadata.PipelineLayout) {
	if !d.liveLayouts[layout] {
		panic("destroying unknown pipeline layout")
	}
	delete(d.liveLayouts, layout)
}

func (d *fakeDevice) CreateGraphicsPipeline(info *metadata.GraphicsPipelineCreateInfo) (metadata.Pipeline, error) {
	d.lastPipelineInfo = info
	if d.failPipeline || info.Config.PipelineLayout.IsNull() || info.Config.RenderPass.IsNull() {
		return metadata.NullHandle, errFake
	}
	for _, s := range info.Stages {
		if !d.liveModules[s.Module] {
			return metadata.NullHandle, errFake
		}
	}
	h := metadata.Pipeline(d.handle())
	d.livePipelines[h] = true
	d.pipelinesCreated++
	return h, nil
}

func (d *fakeDevice) DestroyPipeline(pipeline metadata.Pipeline) {
	if !d.livePipelines[pipeline] {
		panic("destroying unknown or already destroyed pipeline")
	}
	delete(d.livePipelines, pipeline)
}

func (d *fakeDevice) CommandPool() metadata.CommandPool {
	return d.pool
}

func (d *fakeDevice) AllocateCommandBuffers(pool metadata.CommandPool, count uint32) ([]metadata.CommandBuffer, error) {
	if d.failAllocate {
		return nil, errFake
	}
	if d.shortAllocate {
		count--
	}
	out := make([]metadata.CommandBuffer, count)
	for i := range out {
		out[i] = metadata.CommandBuffer(d.handle())
		d.liveBuffers[out[i]] = true
	}
	return out, nil
}

func (d *fakeDevice) FreeCommandBuffers(pool metadata.CommandPool, buffers []metadata.CommandBuffer) {
	for _, b := range buffers {
		if !d.liveBuffers[b] {
			panic("freeing unknown command buffer")
		}
		delete(d.liveBuffers, b)
	}
	d.freedBatches++
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	if d.failWaitIdle {
		return errFake
	}
	return nil
}

type fakeCommand struct {
	op          string
	framebuffer metadata.Framebuffer
	renderArea  metadata.Rect2D
	clearDepth  float32
	pipeline    metadata.Pipeline
	draw        metadata.DrawParams
}

// fakeEncoder records the command stream of every buffer.
type fakeEncoder struct {
	commands  map[metadata.CommandBuffer][]fakeCommand
	failBegin int // 1-based call number, 0 disables
	failEnd   int
	begins    int
	ends      int
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{commands: map[metadata.CommandBuffer][]fakeCommand{}}
}

func (e *fakeEncoder) add(cb metadata.CommandBuffer, c fakeCommand) {
	e.commands[cb] = append(e.commands[cb], c)
}

func (e *fakeEncoder) Begin(cb metadata.CommandBuffer) error {
	e.begins++
	if e.failBegin == e.begins {
		return errFake
	}
	e.commands[cb] = nil
	e.add(cb, fakeCommand{op: "begin"})
	return nil
}

func (e *fakeEncoder) BeginRenderPass(cb metadata.CommandBuffer, info *metadata.RenderPassBeginInfo) {
	e.add(cb, fakeCommand{op: "begin_render_pass", framebuffer: info.Framebuffer, renderArea: info.RenderArea, clearDepth: info.ClearDepth})
}

func (e *fakeEncoder) BindPipeline(cb metadata.CommandBuffer, bindPoint metadata.PipelineBindPoint, pipeline metadata.Pipeline) {
	e.add(cb, fakeCommand{op: "bind_pipeline", pipeline: pipeline})
}

func (e *fakeEncoder) Draw(cb metadata.CommandBuffer, params metadata.DrawParams) {
	e.add(cb, fakeCommand{op: "draw", draw: params})
}

func (e *fakeEncoder) EndRenderPass(cb metadata.CommandBuffer) {
	e.add(cb, fakeCommand{op: "end_render_pass"})
}

func (e *fakeEncoder) End(cb metadata.CommandBuffer) error {
	e.ends++
	if e.failEnd == e.ends {
		return errFake
	}
	e.add(cb, fakeCommand{op: "end"})
	return nil
}

// fakeSwapChain rotates through its images and checks that every submitted
// buffer matches the acquired image.
type fakeSwapChain struct {
	imageCount   uint32
	extent       metadata.Extent2D
	renderPass   metadata.RenderPass
	acquires     int
	submits      int
	next         uint32
	acquired     bool
	lastAcquired uint32

	// buffers[i] is the command buffer expected for image i, when set.
	buffers []metadata.CommandBuffer

	acquireResults map[int]metadata.Result // keyed by 1-based acquire call
	submitResults  map[int]metadata.Result // keyed by 1-based submit call
	violations     int
	submitted      []uint32
}

func newFakeSwapChain(imageCount uint32) *fakeSwapChain {
	return &fakeSwapChain{
		imageCount:     imageCount,
		extent:         metadata.Extent2D{Width: 800, Height: 600},
		renderPass:     42,
		acquireResults: map[int]metadata.Result{},
		submitResults:  map[int]metadata.Result{},
	}
}

func (s *fakeSwapChain) ImageCount() uint32              { return s.imageCount }
func (s *fakeSwapChain) Extent() metadata.Extent2D       { return s.extent }
func (s *fakeSwapChain) RenderPass() metadata.RenderPass { return s.renderPass }

func (s *fakeSwapChain) Framebuffer(index uint32) metadata.Framebuffer {
	return metadata.Framebuffer(1000 + index)
}

func (s *fakeSwapChain) AcquireNextImage() (uint32, metadata.Result) {
	s.acquires++
	if r, ok := s.acquireResults[s.acquires]; ok && !r.AcquireUsable() {
		return 0, r
	}
	idx := s.next
	s.next = (s.next + 1) % s.imageCount
	s.acquired = true
	s.lastAcquired = idx
	if r, ok := s.acquireResults[s.acquires]; ok {
		return idx, r
	}
	return idx, metadata.ResultSuccess
}

func (s *fakeSwapChain) Submit(cb metadata.CommandBuffer, index uint32) metadata.Result {
	s.submits++
	if !s.acquired || index != s.lastAcquired {
		s.violations++
	}
	if s.buffers != nil && s.buffers[index] != cb {
		s.violations++
	}
	s.acquired = false
	s.submitted = append(s.submitted, index)
	if r, ok := s.submitResults[s.submits]; ok {
		return r
	}
	return metadata.ResultSuccess
}

type fakeWindow struct {
	polls      int
	closeAfter int // close once this many polls happened, 0 never
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter > 0 && w.polls >= w.closeAfter
}

func (w *fakeWindow) PollEvents() {
	w.polls++
}

// writeShader writes a minimal SPIR-V-looking binary and returns its path.
func writeShader(t *testing.T, dir, name string, words ...uint32) string {
	t.Helper()
	if len(words) == 0 {
		words = []uint32{SPIRVMagic, 0x00010000, 0, 1, 0}
	}
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		buf = append(buf, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("writing shader: %v", err)
	}
	return path
}

func readyConfig() metadata.PipelineConfig {
	cfg := metadata.DefaultPipelineConfig(800, 600)
	cfg.PipelineLayout = 11
	cfg.RenderPass = 42
	return cfg
}
