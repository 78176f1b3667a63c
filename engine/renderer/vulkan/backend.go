package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const (
	validationLayerName                   = "VK_LAYER_KHRONOS_validation"
	portabilityEnumerationExtensionName   = "VK_KHR_portability_enumeration"
	physicalDeviceProperties2Extension    = "VK_KHR_get_physical_device_properties2"
	instanceCreateEnumeratePortabilityKHR = 0x00000001
)

var (
	_ renderer.Device         = (*VulkanRenderer)(nil)
	_ renderer.CommandEncoder = (*VulkanRenderer)(nil)
	_ renderer.SwapChain      = (*VulkanRenderer)(nil)
)

type Options struct {
	ApplicationName string
	// Validation enables the Khronos validation layer and routes its reports
	// to the engine log.
	Validation bool
}

// VulkanRenderer owns every Vulkan object of the engine and hands out
// API-neutral handles for the ones the rendering core manages.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext
	options  Options

	shaderModules  *handleTable[vk.ShaderModule]
	layouts        *handleTable[vk.PipelineLayout]
	pipelines      *handleTable[*VulkanPipeline]
	commandBuffers *handleTable[*VulkanCommandBuffer]
}

func New(p *platform.Platform, options Options) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
			Device:    &VulkanDevice{GraphicsQueueIndex: -1, PresentQueueIndex: -1},
		},
		options:        options,
		shaderModules:  newHandleTable[vk.ShaderModule](),
		layouts:        newHandleTable[vk.PipelineLayout](),
		pipelines:      newHandleTable[*VulkanPipeline](),
		commandBuffers: newHandleTable[*VulkanCommandBuffer](),
	}
}

// Initialize brings up the instance, the device, the swapchain with its
// framebuffers and the per-frame sync objects. On error whatever was
// created is left for Shutdown to release.
func (vr *VulkanRenderer) Initialize() error {
	procAddr := platform.InstanceProcAddress()
	if procAddr == nil {
		return errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vk")
	}

	vr.context.FramebufferWidth, vr.context.FramebufferHeight = vr.platform.FramebufferSize()

	if err := vr.createInstance(); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if vr.options.Validation {
		if err := vr.createDebugCallback(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateSurface(vr.context.Instance)
	if err != nil {
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return errors.Wrap(err, "failed to create device")
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	if err := vr.context.Swapchain.RegenerateFramebuffers(vr.context, vr.context.MainRenderpass); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.options.ApplicationName),
		PEngineName:        VulkanSafeString("Lumen"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// The platform list already carries the generic surface extension.
	extensions := vr.platform.RequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions, portabilityEnumerationExtensionName, physicalDeviceProperties2Extension)
		createInfo.Flags |= vk.InstanceCreateFlags(instanceCreateEnumeratePortabilityKHR)
	}

	var layers []string
	if vr.options.Validation {
		available, err := instanceLayerNames()
		if err != nil {
			return err
		}
		if missing := missingExtensions([]string{validationLayerName}, available); len(missing) > 0 {
			core.LogWarn("Validation layer %s is missing, continuing without it.", validationLayerName)
			vr.options.Validation = false
		} else {
			layers = append(layers, validationLayerName)
			extensions = append(extensions, vk.ExtDebugReportExtensionName)
		}
	}

	core.LogDebug("Required extensions: %v", extensions)
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return errors.Wrapf(vk.Error(res), "failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
	}
	vr.context.Instance = instance
	return errors.Wrap(vk.InitInstance(instance), "failed to load instance functions")
}

func instanceLayerNames() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "failed to enumerate instance layers")
	}
	properties := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, errors.Wrap(err, "failed to enumerate instance layers")
	}
	names := make([]string, 0, count)
	for i := range properties {
		properties[i].Deref()
		names = append(names, vk.ToString(properties[i].LayerName[:]))
	}
	return names, nil
}

func (vr *VulkanRenderer) createDebugCallback() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}
	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
		return errors.Wrap(err, "vk.CreateDebugReportCallback failed")
	}
	vr.context.debugCallback = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	ctx := vr.context
	ctx.ImageAvailableSemaphores = make([]vk.Semaphore, 0, MaxFramesInFlight)
	ctx.QueueCompleteSemaphores = make([]vk.Semaphore, 0, MaxFramesInFlight)
	ctx.InFlightFences = make([]*VulkanFence, 0, MaxFramesInFlight)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < MaxFramesInFlight; i++ {
		var imageAvailable, queueComplete vk.Semaphore
		if err := vk.Error(vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &imageAvailable)); err != nil {
			return errors.Wrap(err, "failed to create semaphore on image available")
		}
		ctx.ImageAvailableSemaphores = append(ctx.ImageAvailableSemaphores, imageAvailable)

		if err := vk.Error(vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &queueComplete)); err != nil {
			return errors.Wrap(err, "failed to create semaphore on queue complete")
		}
		ctx.QueueCompleteSemaphores = append(ctx.QueueCompleteSemaphores, queueComplete)

		// Created signaled, so the first wait on a frame slot returns at once.
		f, err := NewFence(ctx, true)
		if err != nil {
			return err
		}
		ctx.InFlightFences = append(ctx.InFlightFences, f)
	}

	// Fences here are owned by InFlightFences, nil while an image is unused.
	ctx.ImagesInFlight = make([]*VulkanFence, len(ctx.Swapchain.Images))
	return nil
}

// Shutdown releases everything in the reverse order of creation. Objects
// the core forgot to destroy are released too, with a warning.
func (vr *VulkanRenderer) Shutdown() error {
	ctx := vr.context
	var err error
	if ctx.Device.LogicalDevice != nil {
		err = errors.Wrap(vk.Error(vk.DeviceWaitIdle(ctx.Device.LogicalDevice)), "vkDeviceWaitIdle failed during shutdown")
		vr.releaseLeaked()

		for i := range ctx.ImageAvailableSemaphores {
			vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.ImageAvailableSemaphores[i], ctx.Allocator)
		}
		for i := range ctx.QueueCompleteSemaphores {
			vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.QueueCompleteSemaphores[i], ctx.Allocator)
		}
		for _, f := range ctx.InFlightFences {
			f.FenceDestroy(ctx)
		}
		ctx.ImageAvailableSemaphores = nil
		ctx.QueueCompleteSemaphores = nil
		ctx.InFlightFences = nil
		ctx.ImagesInFlight = nil

		if ctx.Swapchain != nil {
			ctx.Swapchain.SwapchainDestroy(ctx)
			ctx.Swapchain = nil
		}
		if ctx.MainRenderpass != nil {
			ctx.MainRenderpass.RenderpassDestroy(ctx)
			ctx.MainRenderpass = nil
		}
		DeviceDestroy(ctx)
	}

	if ctx.Surface != vk.NullSurface {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if ctx.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugCallback, ctx.Allocator)
		ctx.debugCallback = vk.NullDebugReportCallback
	}
	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	core.LogInfo("Vulkan renderer shut down.")
	return err
}

func (vr *VulkanRenderer) releaseLeaked() {
	ctx := vr.context
	vr.commandBuffers.each(func(id uint64, cb *VulkanCommandBuffer) {
		core.LogWarn("command buffer %d was not freed", id)
		cb.Free(ctx, ctx.Device.GraphicsCommandPool)
		vr.commandBuffers.release(id)
	})
	vr.pipelines.each(func(id uint64, p *VulkanPipeline) {
		core.LogWarn("pipeline %d was not destroyed", id)
		p.Destroy(ctx)
		vr.pipelines.release(id)
	})
	vr.layouts.each(func(id uint64, layout vk.PipelineLayout) {
		core.LogWarn("pipeline layout %d was not destroyed", id)
		vk.DestroyPipelineLayout(ctx.Device.LogicalDevice, layout, ctx.Allocator)
		vr.layouts.release(id)
	})
	vr.shaderModules.each(func(id uint64, module vk.ShaderModule) {
		core.LogWarn("shader module %d was not destroyed", id)
		vk.DestroyShaderModule(ctx.Device.LogicalDevice, module, ctx.Allocator)
		vr.shaderModules.release(id)
	})
}

func (vr *VulkanRenderer) CreateShaderModule(code []uint32) (metadata.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(vr.context.Device.LogicalDevice, &createInfo, vr.context.Allocator, &module); res != vk.Success {
		return metadata.NullHandle, errors.Wrapf(vk.Error(res), "vkCreateShaderModule failed with %s", VulkanResultString(res))
	}
	return metadata.ShaderModule(vr.shaderModules.acquire(module)), nil
}

func (vr *VulkanRenderer) DestroyShaderModule(module metadata.ShaderModule) {
	m, err := vr.shaderModules.release(uint64(module))
	if err != nil {
		core.LogWarn("destroy shader module: %s", err)
		return
	}
	vk.DestroyShaderModule(vr.context.Device.LogicalDevice, m, vr.context.Allocator)
}

func (vr *VulkanRenderer) CreatePipelineLayout() (metadata.PipelineLayout, error) {
	layout, err := NewPipelineLayout(vr.context)
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.PipelineLayout(vr.layouts.acquire(layout)), nil
}

func (vr *VulkanRenderer) DestroyPipelineLayout(layout metadata.PipelineLayout) {
	l, err := vr.layouts.release(uint64(layout))
	if err != nil {
		core.LogWarn("destroy pipeline layout: %s", err)
		return
	}
	vk.DestroyPipelineLayout(vr.context.Device.LogicalDevice, l, vr.context.Allocator)
}

func (vr *VulkanRenderer) CreateGraphicsPipeline(info *metadata.GraphicsPipelineCreateInfo) (metadata.Pipeline, error) {
	state, err := translatePipelineConfig(&info.Config)
	if err != nil {
		return metadata.NullHandle, err
	}
	if state.vertexInput, err = translateVertexInput(&info.VertexInput); err != nil {
		return metadata.NullHandle, err
	}

	stages := make([]vk.PipelineShaderStageCreateInfo, len(info.Stages))
	for i, s := range info.Stages {
		module, ok := vr.shaderModules.get(uint64(s.Module))
		if !ok {
			return metadata.NullHandle, errors.Newf("%s stage references unknown shader module %d", s.Stage, s.Module)
		}
		stage, err := lookup(shaderStages, s.Stage, "shader stage")
		if err != nil {
			return metadata.NullHandle, err
		}
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: module,
			PName:  VulkanSafeString(s.EntryPoint),
		}
	}

	layout, ok := vr.layouts.get(uint64(info.Config.PipelineLayout))
	if !ok {
		return metadata.NullHandle, errors.Newf("unknown pipeline layout %d", info.Config.PipelineLayout)
	}
	renderpass, err := vr.renderpass(info.Config.RenderPass)
	if err != nil {
		return metadata.NullHandle, err
	}

	pipeline, err := NewGraphicsPipeline(vr.context, stages, state, layout, renderpass.Handle, info.Config.Subpass, info.BasePipelineIndex)
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.Pipeline(vr.pipelines.acquire(pipeline)), nil
}

func (vr *VulkanRenderer) DestroyPipeline(pipeline metadata.Pipeline) {
	p, err := vr.pipelines.release(uint64(pipeline))
	if err != nil {
		core.LogWarn("destroy pipeline: %s", err)
		return
	}
	p.Destroy(vr.context)
}

func (vr *VulkanRenderer) CommandPool() metadata.CommandPool {
	return graphicsCommandPoolID
}

func (vr *VulkanRenderer) AllocateCommandBuffers(pool metadata.CommandPool, count uint32) ([]metadata.CommandBuffer, error) {
	if pool != graphicsCommandPoolID {
		return nil, errors.Newf("unknown command pool %d", pool)
	}
	buffers, err := AllocateCommandBuffers(vr.context, vr.context.Device.GraphicsCommandPool, count)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.CommandBuffer, len(buffers))
	for i, cb := range buffers {
		out[i] = metadata.CommandBuffer(vr.commandBuffers.acquire(cb))
	}
	return out, nil
}

func (vr *VulkanRenderer) FreeCommandBuffers(pool metadata.CommandPool, buffers []metadata.CommandBuffer) {
	if pool != graphicsCommandPoolID {
		core.LogWarn("free command buffers: unknown command pool %d", pool)
		return
	}
	for _, h := range buffers {
		cb, err := vr.commandBuffers.release(uint64(h))
		if err != nil {
			core.LogWarn("free command buffer: %s", err)
			continue
		}
		cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
}

func (vr *VulkanRenderer) WaitIdle() error {
	res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	return errors.Wrapf(vk.Error(res), "vkDeviceWaitIdle failed with %s", VulkanResultString(res))
}

func (vr *VulkanRenderer) commandBuffer(h metadata.CommandBuffer) *VulkanCommandBuffer {
	cb, ok := vr.commandBuffers.get(uint64(h))
	if !ok {
		core.LogError("unknown command buffer %d", h)
	}
	return cb
}

func (vr *VulkanRenderer) renderpass(h metadata.RenderPass) (*VulkanRenderpass, error) {
	if h != mainRenderpassID || vr.context.MainRenderpass == nil {
		return nil, errors.Newf("unknown render pass %d", h)
	}
	return vr.context.MainRenderpass, nil
}

func (vr *VulkanRenderer) Begin(h metadata.CommandBuffer) error {
	cb := vr.commandBuffer(h)
	if cb == nil {
		return errors.Newf("unknown command buffer %d", h)
	}
	return cb.Begin(false, false, false)
}

func (vr *VulkanRenderer) BeginRenderPass(h metadata.CommandBuffer, info *metadata.RenderPassBeginInfo) {
	cb := vr.commandBuffer(h)
	if cb == nil {
		return
	}
	renderpass, err := vr.renderpass(info.RenderPass)
	if err != nil {
		core.LogError("begin render pass: %s", err)
		return
	}
	index := uint64(info.Framebuffer) - 1
	framebuffers := vr.context.Swapchain.Framebuffers
	if info.Framebuffer.IsNull() || index >= uint64(len(framebuffers)) {
		core.LogError("begin render pass: unknown framebuffer %d", info.Framebuffer)
		return
	}
	renderpass.RenderpassBegin(cb, framebuffers[index].Handle, info)
}

func (vr *VulkanRenderer) BindPipeline(h metadata.CommandBuffer, bindPoint metadata.PipelineBindPoint, pipeline metadata.Pipeline) {
	cb := vr.commandBuffer(h)
	if cb == nil {
		return
	}
	p, ok := vr.pipelines.get(uint64(pipeline))
	if !ok {
		core.LogError("bind pipeline: unknown pipeline %d", pipeline)
		return
	}
	point := vk.PipelineBindPointGraphics
	if bindPoint == metadata.PipelineBindPointCompute {
		point = vk.PipelineBindPointCompute
	}
	p.Bind(cb, point)
}

func (vr *VulkanRenderer) Draw(h metadata.CommandBuffer, params metadata.DrawParams) {
	if cb := vr.commandBuffer(h); cb != nil {
		vk.CmdDraw(cb.Handle, params.VertexCount, params.InstanceCount, params.FirstVertex, params.FirstInstance)
	}
}

func (vr *VulkanRenderer) EndRenderPass(h metadata.CommandBuffer) {
	if cb := vr.commandBuffer(h); cb != nil {
		vr.context.MainRenderpass.RenderpassEnd(cb)
	}
}

func (vr *VulkanRenderer) End(h metadata.CommandBuffer) error {
	cb := vr.commandBuffer(h)
	if cb == nil {
		return errors.Newf("unknown command buffer %d", h)
	}
	return cb.End()
}

func (vr *VulkanRenderer) ImageCount() uint32 {
	return uint32(len(vr.context.Swapchain.Images))
}

func (vr *VulkanRenderer) Extent() metadata.Extent2D {
	e := vr.context.Swapchain.Extent
	return metadata.Extent2D{Width: e.Width, Height: e.Height}
}

func (vr *VulkanRenderer) RenderPass() metadata.RenderPass {
	return mainRenderpassID
}

func (vr *VulkanRenderer) Framebuffer(index uint32) metadata.Framebuffer {
	return metadata.Framebuffer(index + 1)
}

// AcquireNextImage waits for the current frame slot to be free, then asks
// the swapchain for the next image.
func (vr *VulkanRenderer) AcquireNextImage() (uint32, metadata.Result) {
	ctx := vr.context
	if res := ctx.InFlightFences[ctx.CurrentFrame].FenceWait(ctx, noTimeout); res != vk.Success {
		return 0, toResult(res)
	}
	index, res := ctx.Swapchain.SwapchainAcquireNextImageIndex(ctx, noTimeout, ctx.ImageAvailableSemaphores[ctx.CurrentFrame], vk.NullFence)
	return index, toResult(res)
}

// Submit queues the buffer on the graphics queue and presents image index
// once it completed.
func (vr *VulkanRenderer) Submit(h metadata.CommandBuffer, index uint32) metadata.Result {
	ctx := vr.context
	cb := vr.commandBuffer(h)
	if cb == nil || int(index) >= len(ctx.ImagesInFlight) {
		return metadata.ResultErrorUnknown
	}

	// Make sure the previous frame is not using this image.
	if f := ctx.ImagesInFlight[index]; f != nil {
		if res := f.FenceWait(ctx, noTimeout); res != vk.Success {
			return toResult(res)
		}
	}
	frameFence := ctx.InFlightFences[ctx.CurrentFrame]
	ctx.ImagesInFlight[index] = frameFence
	if err := frameFence.FenceReset(ctx); err != nil {
		core.LogError(err.Error())
		return metadata.ResultErrorUnknown
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		// Color writes wait until the image is available.
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
	}
	if res := vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frameFence.Handle); res != vk.Success {
		core.LogError("vkQueueSubmit failed with result: %s", VulkanResultString(res))
		return toResult(res)
	}
	cb.UpdateSubmitted()

	res := ctx.Swapchain.SwapchainPresent(ctx.Device.PresentQueue, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], index)
	ctx.CurrentFrame = (ctx.CurrentFrame + 1) % MaxFramesInFlight
	return toResult(res)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
