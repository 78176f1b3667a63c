package engine

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it created
	EngineStageShutdown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageShutdown:
		return "shut down"
	default:
		return "unknown"
	}
}

// ChangeSource reports whether the shader binaries changed since the last
// call.
type ChangeSource interface {
	Pending() bool
}

type Engine struct {
	currentStage Stage
	config       *config.Config
	metrics      *core.Metrics

	// Concrete collaborators, nil when the engine was assembled by hand.
	platform *platform.Platform
	vulkan   *vulkan.VulkanRenderer
	watcher  *assets.ShaderWatcher

	window  renderer.Window
	backend Backend
	changes ChangeSource

	layout        metadata.PipelineLayout
	scene         *scene
	reloadPending bool
}

func New(cfg *config.Config) *Engine {
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		metrics:      core.NewMetrics(),
	}
}

// Stage returns the lifecycle stage the engine is in.
func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Initialize opens the window, brings up Vulkan and builds the scene. On
// error the caller must still call Shutdown.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.config

	e.platform = platform.New()
	extent := cfg.Extent()
	if err := e.platform.Startup(cfg.Window.Title, cfg.Window.X, cfg.Window.Y, extent.Width, extent.Height); err != nil {
		return err
	}
	e.window = e.platform

	e.vulkan = vulkan.New(e.platform, vulkan.Options{
		ApplicationName: cfg.Window.Title,
		Validation:      cfg.Render.Validation,
	})
	if err := e.vulkan.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize the vulkan renderer")
	}
	e.backend = e.vulkan

	if cfg.Shaders.Watch {
		w, err := assets.NewShaderWatcher([]string{cfg.Shaders.Vertex, cfg.Shaders.Fragment})
		if err != nil {
			return err
		}
		e.watcher = w
		e.changes = w
	}

	return e.build()
}

// build creates the pipeline layout and the first scene.
func (e *Engine) build() error {
	layout, err := e.backend.CreatePipelineLayout()
	if err != nil {
		return core.Mark(err, core.ErrPipelineCreation, "failed to create pipeline layout")
	}
	e.layout = layout

	s, err := newScene(e.backend, e.layout, e.config)
	if err != nil {
		return err
	}
	e.scene = s
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) shadersChanged() bool {
	if e.changes != nil && e.changes.Pending() {
		e.reloadPending = true
		return true
	}
	return false
}

// runScene presents the current scene until the loop stops.
func (e *Engine) runScene(ctx context.Context, options ...renderer.FrameLoopOption) error {
	options = append([]renderer.FrameLoopOption{
		renderer.WithMetrics(e.metrics),
		renderer.WithCloseRequest(e.shadersChanged),
	}, options...)
	loop := renderer.NewFrameLoop(e.window, e.backend, e.backend, e.scene.buffers, options...)
	if err := loop.Run(ctx); err != nil {
		return err
	}
	if e.reloadPending {
		e.reloadPending = false
		return core.Fail(core.ErrShadersChanged, "after %d frames", loop.Frames())
	}
	return nil
}

// Run presents frames until the window closes, ctx is done or a frame fails.
// When the shader binaries change the scene is rebuilt from them and
// presentation resumes.
func (e *Engine) Run(ctx context.Context, options ...renderer.FrameLoopOption) error {
	if e.scene == nil {
		return core.Fail(core.ErrPrecondition, "engine is %s, not initialized", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	for {
		err := e.runScene(ctx, options...)
		if !errors.Is(err, core.ErrShadersChanged) {
			core.LogInfo("%d frames, %.1f FPS, %.2f ms per frame.", e.metrics.Frames(), e.metrics.FPS(), e.metrics.FrameTime())
			return err
		}

		core.LogInfo("Shader binaries changed, rebuilding the pipeline.")
		// The loop left the device idle.
		e.scene.destroy()
		e.scene = nil
		s, err := newScene(e.backend, e.layout, e.config)
		if err != nil {
			return errors.Wrap(err, "failed to rebuild the scene")
		}
		e.scene = s
	}
}

// Shutdown releases everything in the reverse order of creation. It is safe
// to call after a failed Initialize.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var err error

	if e.backend != nil {
		if waitErr := e.backend.WaitIdle(); waitErr != nil {
			err = errors.CombineErrors(err, waitErr)
		}
		if e.scene != nil {
			e.scene.destroy()
			e.scene = nil
		}
		if !e.layout.IsNull() {
			e.backend.DestroyPipelineLayout(e.layout)
			e.layout = metadata.NullHandle
		}
	}
	if e.watcher != nil {
		err = errors.CombineErrors(err, e.watcher.Close())
		e.watcher = nil
	}
	if e.vulkan != nil {
		err = errors.CombineErrors(err, e.vulkan.Shutdown())
		e.vulkan = nil
	}
	if e.platform != nil {
		e.platform.Shutdown()
		e.platform = nil
	}
	e.backend = nil
	e.currentStage = EngineStageShutdown
	return err
}
