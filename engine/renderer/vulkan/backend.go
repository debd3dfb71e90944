package vulkan

import (
	"errors"
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/platform"
)

// VulkanRenderer owns the instance, device, swapchain and per-frame
// synchronization. One frame at a time: BeginFrame acquires an image and
// opens the main renderpass, EndFrame submits and presents.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext

	debug bool

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		debug:    true,
		context: &VulkanContext{
			FramebufferSizeGeneration:     0,
			FramebufferSizeLastGeneration: 0,
			Allocator:                     nil,
		},
	}
}

// Context exposes the renderer's Vulkan context to the resource systems.
func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

func (vr *VulkanRenderer) Initialize(appName string, width, height uint32, vsync bool) error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize the Vulkan loader: %s", err.Error())
		return err
	}

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.context.VSync = vsync
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height

	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	var requiredLayers []string
	if vr.debug {
		requiredExtensions = append(requiredExtensions, "VK_EXT_debug_report")
		requiredLayers = append(requiredLayers, "VK_LAYER_KHRONOS_validation")
	}

	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Lumo Engine"),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
	}

	instanceCreateInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        applicationInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredExtensions),
		EnabledLayerCount:       uint32(len(requiredLayers)),
		PpEnabledLayerNames:     VulkanSafeStrings(requiredLayers),
	}

	err := lockPool.SafeCall(InstanceManagement, func() error {
		var instance vk.Instance
		if res := vk.CreateInstance(&instanceCreateInfo, vr.context.Allocator, &instance); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create Vulkan instance: %s", VulkanResultString(res))
		}
		vr.context.Instance = instance
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError("failed to initialize instance procedures: %s", err.Error())
		return err
	}

	if vr.debug {
		if err := vr.createDebugMessenger(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		core.LogError("failed to create platform surface: %s", err.Error())
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	swapchain, err := NewSwapchain(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	renderpass, err := NewRenderpass(vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.02, 0.02, 0.05, 1.0,
		1.0, 0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = renderpass

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createDebugMessenger() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
			location uint, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
			switch {
			case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
				core.LogError("[%s] %s", pLayerPrefix, pMessage)
			case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
				core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
			default:
				core.LogDebug("[%s] %s", pLayerPrefix, pMessage)
			}
			return vk.Bool32(vk.False)
		},
	}

	var callback vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &callback); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to create debug messenger: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	vr.context.debugMessenger = callback
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)

	for i := uint32(0); i < swapchain.ImageCount; i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		framebuffer, err := NewFramebuffer(vr.context, vr.context.MainRenderpass,
			vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = framebuffer
	}
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	swapchain := vr.context.Swapchain
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, swapchain.ImageCount)

	for i := uint32(0); i < swapchain.ImageCount; i++ {
		commandBuffer, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = commandBuffer
	}
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	maxFrames := vr.context.Swapchain.MaxFramesInFlight

	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, maxFrames)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, maxFrames)
	vr.context.InFlightFenceCount = maxFrames
	vr.context.InFlightFences = make([]*VulkanFence, maxFrames)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := uint32(0); i < maxFrames; i++ {
		err := lockPool.SafeCall(SynchronizationManagement, func() error {
			var imageAvailable vk.Semaphore
			if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &imageAvailable); !VulkanResultIsSuccess(res) {
				return fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
			}
			var queueComplete vk.Semaphore
			if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &queueComplete); !VulkanResultIsSuccess(res) {
				return fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
			}
			vr.context.ImageAvailableSemaphores[i] = imageAvailable
			vr.context.QueueCompleteSemaphores[i] = queueComplete
			return nil
		})
		if err != nil {
			core.LogError(err.Error())
			return err
		}

		// Create the fence signaled, indicating that the first frame has
		// already been "rendered".
		fence, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = fence
	}

	// Not owned here; they point into InFlightFences once a frame uses
	// the image.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	return nil
}

// Resized records the new framebuffer size and bumps the size generation;
// the next BeginFrame recreates the swapchain.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogDebug("Vulkan renderer resized: %dx%d generation %d", width, height, vr.context.FramebufferSizeGeneration)
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called while already recreating")
		return nil
	}
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreateSwapchain called with a zero-sized window")
		return nil
	}

	vr.context.RecreatingSwapchain = true
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	for i := range vr.context.ImagesInFlight {
		vr.context.ImagesInFlight[i] = nil
	}

	if err := vr.context.Swapchain.Recreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	for _, cb := range vr.context.GraphicsCommandBuffers {
		cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	for _, fb := range vr.context.Swapchain.Framebuffers {
		fb.Destroy(vr.context)
	}

	if err := vr.regenerateFramebuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	vr.context.RecreatingSwapchain = false
	return nil
}

// BeginFrame waits for the frame's fence, acquires the next swapchain
// image and opens the main renderpass. While the swapchain is being
// rebuilt it fails with core.ErrSwapchainBooting; the caller skips the
// frame and tries again.
func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	if vr.context.RecreatingSwapchain {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
		return core.ErrSwapchainBooting
	}

	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogDebug("swapchain resized, booting frame")
		return core.ErrSwapchainBooting
	}

	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, gomath.MaxUint64) {
		err := fmt.Errorf("in-flight fence wait failed")
		core.LogError(err.Error())
		return err
	}

	imageIndex, err := vr.context.Swapchain.AcquireNextImageIndex(vr.context, gomath.MaxUint64,
		vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], vk.NullFence)
	if err != nil {
		if errors.Is(err, errSwapchainOutOfDate) {
			if err := vr.recreateSwapchain(); err != nil {
				return err
			}
			return core.ErrSwapchainBooting
		}
		return err
	}
	vr.context.ImageIndex = imageIndex

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Dynamic state. Flip the viewport so world Y points up.
	viewport := vk.Viewport{
		X:        0,
		Y:        float32(vr.context.FramebufferHeight),
		Width:    float32(vr.context.FramebufferWidth),
		Height:   -float32(vr.context.FramebufferHeight),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})
	vk.CmdSetLineWidth(commandBuffer.Handle, 1.0)

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.MainRenderpass.Begin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)

	return nil
}

// CurrentCommandBuffer returns the command buffer recording the frame
// opened by BeginFrame.
func (vr *VulkanRenderer) CurrentCommandBuffer() *VulkanCommandBuffer {
	return vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]

	vr.context.MainRenderpass.End(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure a previous frame is not using this image.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, gomath.MaxUint64)
	}
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]

	if err := vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}

	if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo},
		vr.context.InFlightFences[vr.context.CurrentFrame].Handle); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("queue submit failed: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()

	err := vr.context.Swapchain.Present(vr.context, vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame], vr.context.ImageIndex)
	if err != nil {
		if errors.Is(err, errSwapchainOutOfDate) {
			return vr.recreateSwapchain()
		}
		return err
	}
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (vr *VulkanRenderer) WaitIdle() {
	if vr.context.Device != nil && vr.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	}
}

func (vr *VulkanRenderer) Shutdown() error {
	vr.WaitIdle()

	for i := uint32(0); i < vr.context.InFlightFenceCount; i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	for _, cb := range vr.context.GraphicsCommandBuffers {
		cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.GraphicsCommandBuffers = nil

	for _, fb := range vr.context.Swapchain.Framebuffers {
		fb.Destroy(vr.context)
	}
	vr.context.Swapchain.Framebuffers = nil

	vr.context.MainRenderpass.Destroy(vr.context)
	vr.context.Swapchain.Destroy(vr.context)

	DeviceDestroy(vr.context)

	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}

	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	vr.context.Instance = nil

	core.LogInfo("Vulkan renderer shut down.")
	return nil
}
