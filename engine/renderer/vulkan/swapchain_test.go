package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}); got != preferred {
		t.Errorf("got %v, want the preferred format", got)
	}
	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other}); got != other {
		t.Errorf("got %v, want the first format", got)
	}
}

func TestChoosePresentMode(t *testing.T) {
	if got := choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}); got != vk.PresentModeMailbox {
		t.Errorf("got %v, want mailbox", got)
	}
	if got := choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}); got != vk.PresentModeFifo {
		t.Errorf("got %v, want fifo", got)
	}
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	if got := chooseExtent(&caps, 800, 600); got.Width != 1024 || got.Height != 768 {
		t.Errorf("fixed surface: got %dx%d", got.Width, got.Height)
	}

	caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	if got := chooseExtent(&caps, 800, 600); got.Width != 800 || got.Height != 600 {
		t.Errorf("free surface: got %dx%d", got.Width, got.Height)
	}

	caps.MaxImageExtent = vk.Extent2D{Width: 640, Height: 480}
	if got := chooseExtent(&caps, 800, 600); got.Width != 640 || got.Height != 480 {
		t.Errorf("clamped: got %dx%d", got.Width, got.Height)
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{2, 8, 3},
		{2, 2, 2},
		{1, 3, 2},
	}
	for _, tt := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := chooseImageCount(&caps); got != tt.want {
			t.Errorf("min=%d max=%d: got %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}
