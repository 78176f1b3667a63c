package core

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestMark(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Mark(cause, ErrIO, "reading %q", "simple.vert.spv")

	if !errors.Is(err, ErrIO) {
		t.Errorf("Mark() error is not ErrIO: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Mark() lost its cause: %v", err)
	}
	if errors.Is(err, ErrPresentation) {
		t.Errorf("Mark() error matches an unrelated class: %v", err)
	}
	if got, want := err.Error(), `reading "simple.vert.spv": disk on fire`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestMarkTwice(t *testing.T) {
	err := Fail(ErrPrecondition, "no layout")
	err = Mark(err, ErrPipelineCreation, "invalid config")

	for _, class := range []error{ErrPrecondition, ErrPipelineCreation} {
		if !errors.Is(err, class) {
			t.Errorf("error %v is not %v", err, class)
		}
	}
}

func TestFail(t *testing.T) {
	err := Fail(ErrCommandRecording, "allocated %d command buffers, want %d", 1, 3)

	if !errors.Is(err, ErrCommandRecording) {
		t.Errorf("Fail() error is not ErrCommandRecording: %v", err)
	}
	if got, want := err.Error(), "allocated 1 command buffers, want 3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
