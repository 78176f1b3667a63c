package core

import (
	"github.com/cockroachdb/errors"
)

// Error classes of the rendering core. Concrete errors are wrapped with
// context and marked with one of these, so callers test with errors.Is.
// None of them is retried inside the core.
var (
	// ErrIO is returned when a shader binary cannot be opened or read.
	ErrIO = errors.New("shader resource unreadable")
	// ErrResourceCreation is returned when the device rejects a resource,
	// e.g. malformed shader bytecode.
	ErrResourceCreation = errors.New("resource creation failed")
	// ErrPipelineCreation is returned when a graphics pipeline cannot be built.
	ErrPipelineCreation = errors.New("pipeline creation failed")
	// ErrCommandRecording is returned when a command buffer batch cannot be
	// allocated or recorded. The whole batch is discarded.
	ErrCommandRecording = errors.New("command recording failed")
	// ErrPresentation is returned when acquiring or presenting a swapchain
	// image fails with a non-recoverable status. It stops the frame loop.
	ErrPresentation = errors.New("presentation failed")
	// ErrPrecondition marks caller contract violations such as a missing
	// pipeline layout or render pass.
	ErrPrecondition = errors.New("precondition violated")
	// ErrShadersChanged is returned by the engine when a watched shader
	// binary changed on disk and the subsystem has to be rebuilt.
	ErrShadersChanged = errors.New("shader binaries changed")
)

// Mark wraps err with a formatted message and classifies it as class.
func Mark(err error, class error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), class)
}

// Fail builds a new error with a formatted message classified as class.
func Fail(class error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), class)
}
