package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
)

// errSwapchainOutOfDate signals that the swapchain no longer matches the
// surface and must be recreated before rendering can continue.
var errSwapchainOutOfDate = errors.New("swapchain out of date")

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat

	MaxFramesInFlight uint32
	ImageCount        uint32

	Images []vk.Image
	Views  []vk.ImageView

	DepthAttachment *VulkanImage

	// Framebuffers used for on-screen rendering, one per swapchain image.
	Framebuffers []*VulkanFramebuffer
}

func NewSwapchain(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{
		// Triple-buffering at most: two frames may be in flight.
		MaxFramesInFlight: 2,
	}
	if err := swapchain.create(context, width, height); err != nil {
		return nil, err
	}
	return swapchain, nil
}

// Recreate tears the swapchain down and builds it again at the new size.
// The device must be idle.
func (s *VulkanSwapchain) Recreate(context *VulkanContext, width, height uint32) error {
	s.destroy(context)
	return s.create(context, width, height)
}

func (s *VulkanSwapchain) create(context *VulkanContext, width, height uint32) error {
	if err := DeviceQuerySwapchainSupport(context.Device, context.Surface); err != nil {
		return err
	}
	support := context.Device.SwapchainSupport

	// Prefer 8-bit BGRA with sRGB presentation; fall back to whatever the
	// surface offers first.
	s.ImageFormat = support.Formats[0]
	for _, format := range support.Formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			s.ImageFormat = format
			break
		}
	}

	// FIFO is always available and vsynced. Without vsync prefer mailbox
	// so late frames get replaced instead of queued.
	presentMode := vk.PresentModeFifo
	if !context.VSync {
		for _, mode := range support.PresentModes {
			if mode == vk.PresentModeMailbox {
				presentMode = mode
				break
			}
		}
	}

	extent := vk.Extent2D{Width: width, Height: height}
	capabilities := support.Capabilities
	if capabilities.CurrentExtent.Width != 0xFFFFFFFF {
		extent = capabilities.CurrentExtent
	}
	extent.Width = math.Clamp(extent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	extent.Height = math.Clamp(extent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      s.ImageFormat.Format,
		ImageColorSpace:  s.ImageFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	err := lockPool.SafeCall(SwapchainManagement, func() error {
		var handle vk.Swapchain
		if res := vk.CreateSwapchain(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res))
		}
		s.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	context.CurrentFrame = 0

	s.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, s.Handle, &s.ImageCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to get swapchain image count: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	s.Images = make([]vk.Image, s.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, s.Handle, &s.ImageCount, s.Images); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	s.Views = make([]vk.ImageView, s.ImageCount)
	for i := uint32(0); i < s.ImageCount; i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    s.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   s.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("failed to create swapchain image view: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
		s.Views[i] = view
	}

	if !DeviceDetectDepthFormat(context.Device) {
		err := fmt.Errorf("failed to find a supported depth format")
		core.LogError(err.Error())
		return err
	}

	depthAttachment, err := ImageCreate(context,
		vk.ImageType2d,
		extent.Width, extent.Height,
		1, 1,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}
	s.DepthAttachment = depthAttachment

	context.FramebufferWidth = extent.Width
	context.FramebufferHeight = extent.Height

	core.LogInfo("Swapchain created successfully (%dx%d, %d images).", extent.Width, extent.Height, s.ImageCount)
	return nil
}

func (s *VulkanSwapchain) destroy(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	if s.DepthAttachment != nil {
		s.DepthAttachment.Destroy(context)
		s.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by
	// the swapchain.
	for i := range s.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, s.Views[i], context.Allocator)
	}
	s.Views = nil

	lockPool.SafeCall(SwapchainManagement, func() error {
		if s.Handle != vk.NullSwapchain {
			vk.DestroySwapchain(context.Device.LogicalDevice, s.Handle, context.Allocator)
			s.Handle = vk.NullSwapchain
		}
		return nil
	})
}

func (s *VulkanSwapchain) Destroy(context *VulkanContext) {
	s.destroy(context)
}

// AcquireNextImageIndex blocks until the next swapchain image is
// available. An out-of-date surface is reported as errSwapchainOutOfDate
// so the caller can recreate and retry.
func (s *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, s.Handle, timeoutNs, imageAvailableSemaphore, fence, &imageIndex)

	switch {
	case result == vk.ErrorOutOfDate:
		return 0, errSwapchainOutOfDate
	case result != vk.Success && result != vk.Suboptimal:
		err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return 0, err
	}
	return imageIndex, nil
}

// Present queues the rendered image for presentation and advances the
// in-flight frame counter.
func (s *VulkanSwapchain) Present(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	context.CurrentFrame = (context.CurrentFrame + 1) % s.MaxFramesInFlight

	switch {
	case result == vk.ErrorOutOfDate || result == vk.Suboptimal:
		return errSwapchainOutOfDate
	case result != vk.Success:
		err := fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	return nil
}
