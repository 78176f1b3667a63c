package platform

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/lumen/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the GLFW window the renderer presents to.
type Platform struct {
	window *glfw.Window
}

func New() *Platform {
	return &Platform{}
}

func (p *Platform) Startup(applicationName string, x, y int32, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	// The swapchain is never recreated, so the window keeps its size.
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create window")
	}
	p.window = window

	p.window.SetKeyCallback(keyCallback)
	p.window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.window.SetPos(int(x), int(y))
	p.window.Show()

	core.LogInfo("Window %q created (%dx%d).", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() {
	if p.window != nil {
		p.window.Destroy()
		p.window = nil
	}
	glfw.Terminate()
}

func (p *Platform) ShouldClose() bool {
	return p.window.ShouldClose()
}

func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// RequiredExtensionNames lists the instance extensions GLFW needs to create a
// surface for this window.
func (p *Platform) RequiredExtensionNames() []string {
	return p.window.GetRequiredInstanceExtensions()
}

// CreateSurface creates a window surface for instance and returns the raw
// VkSurfaceKHR handle.
func (p *Platform) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := p.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "window surface creation failed")
	}
	return surface, nil
}

// InstanceProcAddress is the loader entry point used to initialize Vulkan.
func InstanceProcAddress() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.LogDebug("framebuffer resized to %dx%d, swapchain is left as is", width, height)
}
