package vulkan

import "math"

// MaxFramesInFlight is the number of frames the CPU may queue ahead of the GPU.
const MaxFramesInFlight = 2

const (
	// The backend has a single render pass and a single command pool, so
	// both are addressed by a fixed id.
	mainRenderpassID      = 1
	graphicsCommandPoolID = 1

	noTimeout = math.MaxUint64
)
