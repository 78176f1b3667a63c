package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering, one per image.
	Framebuffers []*VulkanFramebuffer
}

// chooseSurfaceFormat prefers 8-bit BGRA in the sRGB color space and falls
// back to whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox. FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless the surface lets
// the swapchain decide, in which case the framebuffer size is clamped to
// the allowed range.
func chooseExtent(capabilities *vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	min := capabilities.MinImageExtent
	max := capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  Clamp(width, min.Width, max.Width),
		Height: Clamp(height, min.Height, max.Height),
	}
}

// chooseImageCount asks for one image more than the minimum. A zero maximum
// means there is no limit.
func chooseImageCount(capabilities *vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	support := &context.Device.SwapchainSupport
	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
		Extent:      chooseExtent(&support.Capabilities, width, height),
	}
	presentMode := choosePresentMode(support.PresentModes)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    chooseImageCount(&support.Capabilities),
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	}

	device := context.Device.LogicalDevice
	var swapchainHandle vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device, &swapchainCreateInfo, context.Allocator, &swapchainHandle)); err != nil {
		return nil, errors.Wrap(err, "failed to create swapchain")
	}
	swapchain.Handle = swapchainHandle

	// Start with a zero frame index.
	context.CurrentFrame = 0

	var imageCount uint32
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain.Handle, &imageCount, nil)); err != nil {
		swapchain.SwapchainDestroy(context)
		return nil, errors.Wrap(err, "failed to get swapchain images")
	}
	swapchain.Images = make([]vk.Image, imageCount)
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain.Handle, &imageCount, swapchain.Images)); err != nil {
		swapchain.SwapchainDestroy(context)
		return nil, errors.Wrap(err, "failed to get swapchain images")
	}

	swapchain.Views = make([]vk.ImageView, 0, imageCount)
	for i := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		var view vk.ImageView
		if err := vk.Error(vk.CreateImageView(device, &viewInfo, context.Allocator, &view)); err != nil {
			swapchain.SwapchainDestroy(context)
			return nil, errors.Wrapf(err, "failed to create view of swapchain image %d", i)
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	if !DeviceDetectDepthFormat(context.Device) {
		swapchain.SwapchainDestroy(context)
		return nil, errors.New("failed to find a supported depth format")
	}

	depthAttachment, err := ImageCreate(
		context,
		swapchain.Extent.Width,
		swapchain.Extent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		swapchain.SwapchainDestroy(context)
		return nil, errors.Wrap(err, "failed to create depth attachment")
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created: %d images of %dx%d.", imageCount, swapchain.Extent.Width, swapchain.Extent.Height)
	return swapchain, nil
}

// RegenerateFramebuffers builds one framebuffer per swapchain image, each
// sharing the depth attachment.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.destroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, 0, len(vs.Views))
	for i, view := range vs.Views {
		framebuffer, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, view, vs.DepthAttachment.View)
		if err != nil {
			vs.destroyFramebuffers(context)
			return errors.Wrapf(err, "framebuffer %d", i)
		}
		vs.Framebuffers = append(vs.Framebuffers, framebuffer)
	}
	return nil
}

func (vs *VulkanSwapchain) destroyFramebuffers(context *VulkanContext) {
	for _, framebuffer := range vs.Framebuffers {
		framebuffer.Destroy(context)
	}
	vs.Framebuffers = nil
}

// SwapchainAcquireNextImageIndex returns the index of the next presentable
// image and the status the acquire ended with. The index is only valid
// when the status is success or suboptimal.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, fence, &imageIndex)
	return imageIndex, result
}

// SwapchainPresent returns the image to the swapchain once renderComplete
// is signaled.
func (vs *VulkanSwapchain) SwapchainPresent(presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}
	return vk.QueuePresent(presentQueue, &presentInfo)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	vs.destroyFramebuffers(context)
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.ImageDestroy(context)
		vs.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the
	// swapchain and are thus destroyed when it is.
	for _, view := range vs.Views {
		vk.DestroyImageView(device, view, context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
