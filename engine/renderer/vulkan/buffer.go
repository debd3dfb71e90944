package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

// VulkanBuffer wraps a vk.Buffer and its backing memory. Every buffer in
// the engine is host-visible and host-coherent, so writes through LoadData
// land without explicit flushes or staging copies for mesh data.
type VulkanBuffer struct {
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	TotalSize   vk.DeviceSize
	usage       vk.BufferUsageFlagBits
	memoryFlags vk.MemoryPropertyFlagBits
	destroyed   bool
}

func NewVulkanBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlagBits, memoryFlags vk.MemoryPropertyFlagBits) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		TotalSize:   size,
		usage:       usage,
		memoryFlags: memoryFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	err := lockPool.SafeCall(BufferManagement, func() error {
		var handle vk.Buffer
		if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create buffer: %s", VulkanResultString(res))
		}
		buffer.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryIndex == -1 {
		buffer.Destroy(context)
		err := fmt.Errorf("no suitable memory type for buffer")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}

	err = lockPool.SafeCall(MemoryManagement, func() error {
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res))
		}
		buffer.Memory = memory
		return nil
	})
	if err != nil {
		buffer.Destroy(context)
		core.LogError(err.Error())
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); !VulkanResultIsSuccess(res) {
		buffer.Destroy(context)
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return buffer, nil
}

// LoadData maps the given range, copies data into it and unmaps. The range
// must lie within the buffer.
func (b *VulkanBuffer) LoadData(context *VulkanContext, offset, size vk.DeviceSize, data []byte) error {
	if b.destroyed {
		return core.ErrBufferDestroyed
	}
	if offset+size > b.TotalSize {
		err := fmt.Errorf("buffer write of %d bytes at offset %d exceeds size %d", size, offset, b.TotalSize)
		core.LogError(err.Error())
		return err
	}

	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, offset, size, 0, &pData); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	vk.Memcopy(pData, data[:size])
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.destroyed {
		return
	}
	lockPool.SafeCall(BufferManagement, func() error {
		if b.Memory != nil {
			vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
			b.Memory = nil
		}
		if b.Handle != nil {
			vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
			b.Handle = nil
		}
		return nil
	})
	b.destroyed = true
}

// RawBytes reinterprets a pointer to plain-old-data as a byte slice of the
// given length. Used to feed uniform blocks and vertex slices to LoadData.
func RawBytes(ptr unsafe.Pointer, length int) []byte {
	return unsafe.Slice((*byte)(ptr), length)
}
