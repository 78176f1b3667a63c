package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type recordFixture struct {
	device    *fakeDevice
	enc       *fakeEncoder
	swapChain *fakeSwapChain
	pipeline  *Pipeline
}

func newRecordFixture(t *testing.T, images uint32) *recordFixture {
	t.Helper()
	f := &recordFixture{
		device:    newFakeDevice(),
		enc:       newFakeEncoder(),
		swapChain: newFakeSwapChain(images),
	}
	vert, frag := shaderPair(t)
	p, err := NewPipeline(f.device, readyConfig(), vert, frag)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	t.Cleanup(p.Destroy)
	f.pipeline = p
	return f
}

func (f *recordFixture) record(info RecordInfo) (*CommandBuffers, error) {
	return RecordAll(f.device, f.enc, f.device.CommandPool(), f.pipeline, f.swapChain, info)
}

func TestRecordAll(t *testing.T) {
	for _, images := range []uint32{1, 2, 3, 4} {
		f := newRecordFixture(t, images)

		cbs, err := f.record(DefaultRecordInfo())
		if err != nil {
			t.Fatalf("RecordAll(%d images) error = %v", images, err)
		}
		if cbs.Len() != int(images) {
			t.Errorf("Len() = %d, want %d", cbs.Len(), images)
		}

		seen := map[metadata.CommandBuffer]bool{}
		for i := uint32(0); i < images; i++ {
			cb := cbs.At(i)
			if seen[cb] {
				t.Errorf("command buffer %d reused", cb)
			}
			seen[cb] = true

			if got := cbs.State(i); got != CommandBufferStateRecordingEnded {
				t.Errorf("State(%d) = %v, want %v", i, got, CommandBufferStateRecordingEnded)
			}

			cmds := f.enc.commands[cb]
			wantOps := []string{"begin", "begin_render_pass", "bind_pipeline", "draw", "end_render_pass", "end"}
			if len(cmds) != len(wantOps) {
				t.Fatalf("buffer %d recorded %d commands, want %d", i, len(cmds), len(wantOps))
			}
			for j, op := range wantOps {
				if cmds[j].op != op {
					t.Errorf("buffer %d command %d = %q, want %q", i, j, cmds[j].op, op)
				}
			}

			pass := cmds[1]
			if want := f.swapChain.Framebuffer(i); pass.framebuffer != want {
				t.Errorf("buffer %d renders into framebuffer %d, want %d", i, pass.framebuffer, want)
			}
			wantArea := metadata.Rect2D{Extent: metadata.Extent2D{Width: 800, Height: 600}}
			if pass.renderArea != wantArea {
				t.Errorf("buffer %d render area = %+v, want %+v", i, pass.renderArea, wantArea)
			}
			if pass.clearDepth != 1 {
				t.Errorf("buffer %d clear depth = %v, want 1", i, pass.clearDepth)
			}
			if cmds[2].pipeline != f.pipeline.Handle() {
				t.Errorf("buffer %d binds pipeline %d, want %d", i, cmds[2].pipeline, f.pipeline.Handle())
			}
			if cmds[3].draw != metadata.DefaultDrawParams() {
				t.Errorf("buffer %d draw = %+v, want %+v", i, cmds[3].draw, metadata.DefaultDrawParams())
			}
		}

		cbs.Free()
		if len(f.device.liveBuffers) != 0 {
			t.Errorf("%d command buffers leaked after Free", len(f.device.liveBuffers))
		}
	}
}

func TestRecordAllCustomInfo(t *testing.T) {
	f := newRecordFixture(t, 2)
	info := RecordInfo{
		ClearColor: mgl32.Vec4{1, 0, 0, 1},
		ClearDepth: 0.5,
		Draw:       metadata.DrawParams{VertexCount: 6, InstanceCount: 2, FirstVertex: 3, FirstInstance: 1},
	}

	cbs, err := f.record(info)
	if err != nil {
		t.Fatalf("RecordAll() error = %v", err)
	}
	defer cbs.Free()

	for i := uint32(0); i < 2; i++ {
		cmds := f.enc.commands[cbs.At(i)]
		if cmds[1].clearDepth != 0.5 {
			t.Errorf("buffer %d clear depth = %v, want 0.5", i, cmds[1].clearDepth)
		}
		if cmds[3].draw != info.Draw {
			t.Errorf("buffer %d draw = %+v, want %+v", i, cmds[3].draw, info.Draw)
		}
	}
}

func TestRecordAllFailures(t *testing.T) {
	tests := []struct {
		name   string
		images uint32
		setup  func(*recordFixture)
	}{
		{"no images", 0, func(*recordFixture) {}},
		{"allocation fails", 3, func(f *recordFixture) { f.device.failAllocate = true }},
		{"short allocation", 3, func(f *recordFixture) { f.device.shortAllocate = true }},
		{"first begin fails", 3, func(f *recordFixture) { f.enc.failBegin = 1 }},
		{"last begin fails", 3, func(f *recordFixture) { f.enc.failBegin = 3 }},
		{"second end fails", 3, func(f *recordFixture) { f.enc.failEnd = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRecordFixture(t, tt.images)
			tt.setup(f)

			cbs, err := f.record(DefaultRecordInfo())
			if cbs != nil {
				t.Error("RecordAll() returned a partial batch")
			}
			if !errors.Is(err, core.ErrCommandRecording) {
				t.Fatalf("error = %v, want ErrCommandRecording", err)
			}
			if len(f.device.liveBuffers) != 0 {
				t.Errorf("%d command buffers leaked", len(f.device.liveBuffers))
			}
		})
	}
}

func TestCommandBuffersFreeTwice(t *testing.T) {
	f := newRecordFixture(t, 2)
	cbs, err := f.record(DefaultRecordInfo())
	if err != nil {
		t.Fatalf("RecordAll() error = %v", err)
	}

	cbs.Free()
	cbs.Free()

	if f.device.freedBatches != 1 {
		t.Errorf("freedBatches = %d, want 1", f.device.freedBatches)
	}
	if cbs.Len() != 0 {
		t.Errorf("Len() after Free = %d, want 0", cbs.Len())
	}
}

func TestCommandBuffersMarkSubmitted(t *testing.T) {
	f := newRecordFixture(t, 2)
	cbs, err := f.record(DefaultRecordInfo())
	if err != nil {
		t.Fatalf("RecordAll() error = %v", err)
	}
	defer cbs.Free()

	cbs.MarkSubmitted(1)
	if got := cbs.State(1); got != CommandBufferStateSubmitted {
		t.Errorf("State(1) = %v, want %v", got, CommandBufferStateSubmitted)
	}
	if got := cbs.State(0); got != CommandBufferStateRecordingEnded {
		t.Errorf("State(0) = %v, want %v", got, CommandBufferStateRecordingEnded)
	}
}
