package engine

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// fakeBackend is an in-memory graphics API that tracks every live object.
type fakeBackend struct {
	images uint32
	extent metadata.Extent2D
	next   uint64
	live   map[uint64]string

	pipelinesCreated int
	waitIdle         int
	acquired         uint32
	submitted        int
}

func newFakeBackend(images uint32) *fakeBackend {
	return &fakeBackend{
		images: images,
		extent: metadata.Extent2D{Width: 640, Height: 480},
		live:   map[uint64]string{},
	}
}

func (f *fakeBackend) create(kind string) uint64 {
	f.next++
	f.live[f.next] = kind
	return f.next
}

func (f *fakeBackend) destroy(kind string, h uint64) {
	if f.live[h] != kind {
		panic("destroying " + kind + " that is not live")
	}
	delete(f.live, h)
}

func (f *fakeBackend) CreateShaderModule(code []uint32) (metadata.ShaderModule, error) {
	return metadata.ShaderModule(f.create("module")), nil
}
func (f *fakeBackend) DestroyShaderModule(m metadata.ShaderModule) { f.destroy("module", uint64(m)) }
func (f *fakeBackend) CreatePipelineLayout() (metadata.PipelineLayout, error) {
	return metadata.PipelineLayout(f.create("layout")), nil
}
func (f *fakeBackend) DestroyPipelineLayout(l metadata.PipelineLayout) {
	f.destroy("layout", uint64(l))
}
func (f *fakeBackend) CreateGraphicsPipeline(info *metadata.GraphicsPipelineCreateInfo) (metadata.Pipeline, error) {
	f.pipelinesCreated++
	return metadata.Pipeline(f.create("pipeline")), nil
}
func (f *fakeBackend) DestroyPipeline(p metadata.Pipeline) { f.destroy("pipeline", uint64(p)) }
func (f *fakeBackend) CommandPool() metadata.CommandPool   { return 1 }
func (f *fakeBackend) AllocateCommandBuffers(pool metadata.CommandPool, count uint32) ([]metadata.CommandBuffer, error) {
	out := make([]metadata.CommandBuffer, count)
	for i := range out {
		out[i] = metadata.CommandBuffer(f.create("buffer"))
	}
	return out, nil
}
func (f *fakeBackend) FreeCommandBuffers(pool metadata.CommandPool, buffers []metadata.CommandBuffer) {
	for _, b := range buffers {
		f.destroy("buffer", uint64(b))
	}
}
func (f *fakeBackend) WaitIdle() error {
	f.waitIdle++
	return nil
}

func (f *fakeBackend) Begin(cb metadata.CommandBuffer) error                                 { return nil }
func (f *fakeBackend) BeginRenderPass(metadata.CommandBuffer, *metadata.RenderPassBeginInfo) {}
func (f *fakeBackend) BindPipeline(metadata.CommandBuffer, metadata.PipelineBindPoint, metadata.Pipeline) {
}
func (f *fakeBackend) Draw(metadata.CommandBuffer, metadata.DrawParams) {}
func (f *fakeBackend) EndRenderPass(metadata.CommandBuffer)             {}
func (f *fakeBackend) End(cb metadata.CommandBuffer) error              { return nil }

func (f *fakeBackend) ImageCount() uint32              { return f.images }
func (f *fakeBackend) Extent() metadata.Extent2D       { return f.extent }
func (f *fakeBackend) RenderPass() metadata.RenderPass { return 1 }
func (f *fakeBackend) Framebuffer(i uint32) metadata.Framebuffer {
	return metadata.Framebuffer(100 + i)
}
func (f *fakeBackend) AcquireNextImage() (uint32, metadata.Result) {
	i := f.acquired % f.images
	f.acquired++
	return i, metadata.ResultSuccess
}
func (f *fakeBackend) Submit(cb metadata.CommandBuffer, index uint32) metadata.Result {
	f.submitted++
	return metadata.ResultSuccess
}

// fakeWindow asks to close after closeAfter polls.
type fakeWindow struct {
	polls      int
	closeAfter int
}

func (w *fakeWindow) ShouldClose() bool { return w.polls >= w.closeAfter }
func (w *fakeWindow) PollEvents()       { w.polls++ }

// fakeChanges reports a change on the listed calls, counting from 1.
type fakeChanges struct {
	calls int
	at    map[int]bool
	hook  func()
}

func (c *fakeChanges) Pending() bool {
	c.calls++
	if c.at[c.calls] {
		if c.hook != nil {
			c.hook()
		}
		return true
	}
	return false
}

func writeShader(t *testing.T, path string) {
	t.Helper()
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, renderer.SPIRVMagic)
	if err := os.WriteFile(path, code, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Shaders.Vertex = filepath.Join(dir, "simple.vert.spv")
	cfg.Shaders.Fragment = filepath.Join(dir, "simple.frag.spv")
	writeShader(t, cfg.Shaders.Vertex)
	writeShader(t, cfg.Shaders.Fragment)
	return cfg
}

func testEngine(t *testing.T, images uint32, closeAfter int) (*Engine, *fakeBackend, *fakeWindow) {
	t.Helper()
	b := newFakeBackend(images)
	w := &fakeWindow{closeAfter: closeAfter}
	e := New(testConfig(t))
	e.backend = b
	e.window = w
	return e, b, w
}

func TestStageString(t *testing.T) {
	stages := map[Stage]string{
		EngineStageUninitialized: "uninitialized",
		EngineStageRunning:       "running",
		EngineStageShutdown:      "shut down",
		Stage(42):                "unknown",
	}
	for s, want := range stages {
		if got := s.String(); got != want {
			t.Errorf("Stage(%d) = %q, want %q", s, got, want)
		}
	}
}

func TestRunBeforeInitialize(t *testing.T) {
	e := New(config.Default())
	err := e.Run(context.Background())
	if !errors.Is(err, core.ErrPrecondition) {
		t.Fatalf("Run() error = %v, want ErrPrecondition", err)
	}
}

func TestBuildAndShutdown(t *testing.T) {
	e, b, _ := testEngine(t, 3, 1)
	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	if e.Stage() != EngineStageInitialized {
		t.Fatalf("stage = %s", e.Stage())
	}
	// layout + 2 modules + pipeline + 3 buffers
	if len(b.live) != 7 {
		t.Fatalf("live objects = %v", b.live)
	}
	if e.scene.buffers.Len() != 3 {
		t.Fatalf("buffers = %d, want one per image", e.scene.buffers.Len())
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if len(b.live) != 0 {
		t.Fatalf("leaked %v", b.live)
	}
	if e.Stage() != EngineStageShutdown {
		t.Fatalf("stage = %s", e.Stage())
	}
	// Shutdown twice is harmless.
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestRunUntilWindowCloses(t *testing.T) {
	e, b, _ := testEngine(t, 2, 4)
	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.submitted != 4 || e.Metrics().Frames() != 4 {
		t.Fatalf("submitted %d, metrics %d, want 4", b.submitted, e.Metrics().Frames())
	}
	if b.pipelinesCreated != 1 {
		t.Fatalf("pipelines created = %d", b.pipelinesCreated)
	}
}

func TestRunRebuildsOnShaderChange(t *testing.T) {
	e, b, _ := testEngine(t, 2, 5)
	e.changes = &fakeChanges{at: map[int]bool{3: true}}
	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	first := e.scene.pipeline.ID()

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.pipelinesCreated != 2 {
		t.Fatalf("pipelines created = %d, want 2", b.pipelinesCreated)
	}
	if e.scene.pipeline.ID() == first {
		t.Fatal("scene was not rebuilt")
	}
	if b.submitted != 5 {
		t.Fatalf("submitted = %d, want 5", b.submitted)
	}
	// One wait per loop exit.
	if b.waitIdle != 2 {
		t.Fatalf("waitIdle = %d, want 2", b.waitIdle)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if len(b.live) != 0 {
		t.Fatalf("leaked %v", b.live)
	}
}

func TestRunRebuildFailure(t *testing.T) {
	e, b, _ := testEngine(t, 2, 10)
	vertex := e.config.Shaders.Vertex
	e.changes = &fakeChanges{
		at:   map[int]bool{2: true},
		hook: func() { os.Remove(vertex) },
	}
	if err := e.build(); err != nil {
		t.Fatal(err)
	}

	err := e.Run(context.Background())
	if !errors.Is(err, core.ErrIO) {
		t.Fatalf("Run() error = %v, want ErrIO", err)
	}
	if e.scene != nil {
		t.Fatal("failed rebuild left a scene behind")
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if len(b.live) != 0 {
		t.Fatalf("leaked %v", b.live)
	}
}

func TestRunCancelled(t *testing.T) {
	e, b, _ := testEngine(t, 2, 100)
	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if b.submitted != 0 {
		t.Fatalf("submitted = %d after cancel", b.submitted)
	}
}
