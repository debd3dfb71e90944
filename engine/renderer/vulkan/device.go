package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport *VulkanSwapchainSupportInfo

	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

var requiredDeviceExtensions = []string{"VK_KHR_swapchain"}

func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}
	device := context.Device

	core.LogInfo("Creating logical device...")
	// One queue create info per distinct family. Graphics and present are
	// usually the same family.
	indices := []int32{device.GraphicsQueueIndex}
	if device.PresentQueueIndex != device.GraphicsQueueIndex {
		indices = append(indices, device.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	// The LINE polygon mode of the pipeline matrix needs fillModeNonSolid;
	// anisotropic sampling needs samplerAnisotropy. Both were verified
	// during physical device selection.
	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
		FillModeNonSolid:  vk.True,
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredDeviceExtensions),
	}

	err := lockPool.SafeCall(DeviceManagement, func() error {
		var logicalDevice vk.Device
		if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create logical device: %s", VulkanResultString(res))
		}
		device.LogicalDevice = logicalDevice
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created.")

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &graphicsQueue)
	device.GraphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.PresentQueueIndex), 0, &presentQueue)
	device.PresentQueue = presentQueue

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	err = lockPool.SafeCall(CommandPoolManagement, func() error {
		var pool vk.CommandPool
		if res := vk.CreateCommandPool(device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create graphics command pool: %s", VulkanResultString(res))
		}
		device.GraphicsCommandPool = pool
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	for _, pd := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		properties.Limits.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(pd, &features)
		features.Deref()

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
		memory.Deref()

		device := &VulkanDevice{
			PhysicalDevice:   pd,
			Properties:       properties,
			Features:         features,
			Memory:           memory,
			SwapchainSupport: &VulkanSwapchainSupportInfo{},
		}

		ok, err := physicalDeviceMeetsRequirements(context, device, features)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		name := string(properties.DeviceName[:])
		core.LogInfo("Selected device: '%s'.", name)
		core.LogInfo("GPU Driver version: %d.%d.%d",
			(properties.DriverVersion>>22)&0x3ff,
			(properties.DriverVersion>>12)&0x3ff,
			properties.DriverVersion&0xfff)

		context.Device = device
		return nil
	}

	err := fmt.Errorf("no physical devices were found which meet the requirements")
	core.LogError(err.Error())
	return err
}

func physicalDeviceMeetsRequirements(context *VulkanContext, device *VulkanDevice, features vk.PhysicalDeviceFeatures) (bool, error) {
	if features.SamplerAnisotropy != vk.True {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return false, nil
	}
	if features.FillModeNonSolid != vk.True {
		core.LogInfo("Device does not support fillModeNonSolid, skipping.")
		return false, nil
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device.PhysicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device.PhysicalDevice, &queueFamilyCount, queueFamilies)

	device.GraphicsQueueIndex = -1
	device.PresentQueueIndex = -1
	for i := range queueFamilies {
		queueFamilies[i].Deref()

		if device.GraphicsQueueIndex == -1 && queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			device.GraphicsQueueIndex = int32(i)
		}

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device.PhysicalDevice, uint32(i), context.Surface, &supportsPresent); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("failed to query surface support: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return false, err
		}
		if device.PresentQueueIndex == -1 && supportsPresent == vk.True {
			device.PresentQueueIndex = int32(i)
		}
	}

	if device.GraphicsQueueIndex == -1 || device.PresentQueueIndex == -1 {
		core.LogInfo("Device is missing a graphics or present queue, skipping.")
		return false, nil
	}

	if err := DeviceQuerySwapchainSupport(device, context.Surface); err != nil {
		return false, err
	}
	if device.SwapchainSupport.FormatCount < 1 || device.SwapchainSupport.PresentModeCount < 1 {
		core.LogInfo("Device has no usable swapchain support, skipping.")
		return false, nil
	}

	return true, nil
}

func DeviceQuerySwapchainSupport(device *VulkanDevice, surface vk.Surface) error {
	support := device.SwapchainSupport

	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device.PhysicalDevice, surface, &capabilities); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to query surface capabilities: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	support.Capabilities = capabilities

	if res := vk.GetPhysicalDeviceSurfaceFormats(device.PhysicalDevice, surface, &support.FormatCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to query surface formats: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if support.FormatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, support.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(device.PhysicalDevice, surface, &support.FormatCount, support.Formats); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("failed to query surface formats: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	if res := vk.GetPhysicalDeviceSurfacePresentModes(device.PhysicalDevice, surface, &support.PresentModeCount, nil); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to query present modes: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if support.PresentModeCount > 0 {
		support.PresentModes = make([]vk.PresentMode, support.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(device.PhysicalDevice, surface, &support.PresentModeCount, support.PresentModes); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("failed to query present modes: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
	}

	return nil
}

// DeviceDetectDepthFormat picks the first depth format with optimal-tiling
// depth-stencil support.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)

	for _, format := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, format, &properties)
		properties.Deref()

		if properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = format
			return true
		}
	}
	return false
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}

	device.GraphicsQueue = nil
	device.PresentQueue = nil

	lockPool.SafeCall(CommandPoolManagement, func() error {
		if device.GraphicsCommandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)
			device.GraphicsCommandPool = vk.NullCommandPool
		}
		return nil
	})

	core.LogInfo("Destroying logical device...")
	lockPool.SafeCall(DeviceManagement, func() error {
		if device.LogicalDevice != nil {
			vk.DestroyDevice(device.LogicalDevice, context.Allocator)
			device.LogicalDevice = nil
		}
		return nil
	})

	device.PhysicalDevice = nil
	device.GraphicsQueueIndex = -1
	device.PresentQueueIndex = -1
}
