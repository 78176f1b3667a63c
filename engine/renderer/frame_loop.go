package renderer

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type FrameLoopState uint8

const (
	FrameLoopStateIdle FrameLoopState = iota
	FrameLoopStateAcquiring
	FrameLoopStateRecordedReady
	FrameLoopStateSubmitting
	FrameLoopStatePresented
	FrameLoopStateFailed
)

func (s FrameLoopState) String() string {
	switch s {
	case FrameLoopStateIdle:
		return "idle"
	case FrameLoopStateAcquiring:
		return "acquiring"
	case FrameLoopStateRecordedReady:
		return "recorded_ready"
	case FrameLoopStateSubmitting:
		return "submitting"
	case FrameLoopStatePresented:
		return "presented"
	case FrameLoopStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FrameState describes one iteration of the loop.
type FrameState struct {
	ImageIndex    uint32
	AcquireResult metadata.Result
	SubmitResult  metadata.Result
}

// TransitionFunc observes every state change of the loop.
type TransitionFunc func(from, to FrameLoopState)

type FrameLoopOption func(*FrameLoop)

func WithObserver(fn TransitionFunc) FrameLoopOption {
	return func(fl *FrameLoop) {
		fl.observer = fn
	}
}

// WithFrameLimit stops the loop after n presented frames. Zero means no limit.
func WithFrameLimit(n uint64) FrameLoopOption {
	return func(fl *FrameLoop) {
		fl.frameLimit = n
	}
}

func WithMetrics(m *core.Metrics) FrameLoopOption {
	return func(fl *FrameLoop) {
		fl.metrics = m
	}
}

// WithCloseRequest adds a close condition checked alongside the window's.
func WithCloseRequest(fn func() bool) FrameLoopOption {
	return func(fl *FrameLoop) {
		fl.closeRequested = fn
	}
}

// FrameLoop acquires swapchain images and submits the pre-recorded command
// buffer with the same index. It runs on a single thread.
type FrameLoop struct {
	window    Window
	swapChain SwapChain
	device    Device
	buffers   *CommandBuffers

	state          FrameLoopState
	frames         uint64
	frameLimit     uint64
	observer       TransitionFunc
	closeRequested func() bool
	metrics        *core.Metrics
	clock          *core.Clock
}

func NewFrameLoop(window Window, swapChain SwapChain, device Device, buffers *CommandBuffers, options ...FrameLoopOption) *FrameLoop {
	fl := &FrameLoop{
		window:    window,
		swapChain: swapChain,
		device:    device,
		buffers:   buffers,
		state:     FrameLoopStateIdle,
		clock:     core.NewClock(),
	}
	for _, o := range options {
		o(fl)
	}
	return fl
}

func (fl *FrameLoop) State() FrameLoopState {
	return fl.state
}

// Frames is the number of frames presented so far.
func (fl *FrameLoop) Frames() uint64 {
	return fl.frames
}

func (fl *FrameLoop) transition(to FrameLoopState) {
	from := fl.state
	fl.state = to
	if fl.observer != nil {
		fl.observer(from, to)
	}
}

func (fl *FrameLoop) fail(err error) error {
	fl.transition(FrameLoopStateFailed)
	core.LogError(err.Error())
	return err
}

// DrawFrame runs one acquire/submit cycle.
func (fl *FrameLoop) DrawFrame() (FrameState, error) {
	var fs FrameState

	if fl.state == FrameLoopStateFailed {
		return fs, core.Fail(core.ErrPresentation, "frame loop already failed")
	}

	if fl.buffers == nil || fl.buffers.Len() == 0 {
		return fs, fl.fail(core.Fail(core.ErrPrecondition, "no recorded command buffers to submit"))
	}

	fl.transition(FrameLoopStateAcquiring)
	fs.ImageIndex, fs.AcquireResult = fl.swapChain.AcquireNextImage()
	if !fs.AcquireResult.AcquireUsable() {
		return fs, fl.fail(core.Fail(core.ErrPresentation, "failed to acquire next image: %s", fs.AcquireResult))
	}
	if int(fs.ImageIndex) >= fl.buffers.Len() {
		return fs, fl.fail(core.Fail(core.ErrPresentation, "acquired image %d but only %d command buffers are recorded", fs.ImageIndex, fl.buffers.Len()))
	}
	if fs.AcquireResult == metadata.ResultSuboptimal {
		core.LogDebug("swapchain image %d is suboptimal, presenting anyway", fs.ImageIndex)
	}
	fl.transition(FrameLoopStateRecordedReady)

	fl.transition(FrameLoopStateSubmitting)
	fs.SubmitResult = fl.swapChain.Submit(fl.buffers.At(fs.ImageIndex), fs.ImageIndex)
	if fs.SubmitResult != metadata.ResultSuccess {
		return fs, fl.fail(core.Fail(core.ErrPresentation, "failed to present image %d: %s", fs.ImageIndex, fs.SubmitResult))
	}
	fl.buffers.MarkSubmitted(fs.ImageIndex)
	fl.transition(FrameLoopStatePresented)

	fl.frames++
	fl.transition(FrameLoopStateIdle)
	return fs, nil
}

func (fl *FrameLoop) shouldStop(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if fl.window.ShouldClose() {
		return true
	}
	if fl.closeRequested != nil && fl.closeRequested() {
		return true
	}
	return fl.frameLimit > 0 && fl.frames >= fl.frameLimit
}

// Run draws frames until the window asks to close, ctx is done or a frame
// fails. Whatever the reason, it waits for the device to go idle before
// returning so the caller can release resources.
func (fl *FrameLoop) Run(ctx context.Context) (err error) {
	defer func() {
		if waitErr := fl.device.WaitIdle(); waitErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(waitErr, "failed waiting for device idle"))
		}
	}()

	fl.clock.Start()
	defer fl.clock.Stop()
	last := fl.clock.Elapsed()
	for !fl.shouldStop(ctx) {
		fl.window.PollEvents()

		if _, err := fl.DrawFrame(); err != nil {
			return err
		}

		fl.clock.Update()
		now := fl.clock.Elapsed()
		if fl.metrics != nil {
			fl.metrics.Update(now - last)
		}
		last = now
	}

	core.LogInfo("Frame loop stopped after %d frames.", fl.frames)
	return nil
}
