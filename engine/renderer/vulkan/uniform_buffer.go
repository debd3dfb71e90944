package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

// VulkanUniformBufferSlot addresses one element inside a shared uniform
// buffer: a byte offset and the element's (unpadded) size. It is what
// descriptor writes use as (offset, range).
type VulkanUniformBufferSlot struct {
	Offset vk.DeviceSize
	Size   vk.DeviceSize
}

// AlignUp rounds size up to the next multiple of alignment. A zero
// alignment leaves the size untouched.
func AlignUp(size, alignment vk.DeviceSize) vk.DeviceSize {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) / alignment * alignment
}

// VulkanSharedUniformBuffer packs many fixed-size uniform elements into a
// single buffer. The per-element stride is the element size rounded up to
// the device's minimum uniform buffer offset alignment, so each slot is a
// legal descriptor offset.
type VulkanSharedUniformBuffer struct {
	Buffer        *VulkanBuffer
	elementSize   vk.DeviceSize
	elementStride vk.DeviceSize
	elementCount  uint32
}

func NewVulkanSharedUniformBuffer(context *VulkanContext, elementSize vk.DeviceSize, elementCount uint32) (*VulkanSharedUniformBuffer, error) {
	stride := AlignUp(elementSize, context.UniformBufferAlignment())

	buffer, err := NewVulkanBuffer(context,
		stride*vk.DeviceSize(elementCount),
		vk.BufferUsageTransferDstBit|vk.BufferUsageUniformBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}

	core.LogDebug("shared uniform buffer created: %d elements, size %d, stride %d", elementCount, elementSize, stride)
	return &VulkanSharedUniformBuffer{
		Buffer:        buffer,
		elementSize:   elementSize,
		elementStride: stride,
		elementCount:  elementCount,
	}, nil
}

// Slot returns the addressable range of element index. Indices at or past
// the element count fail with a range error.
func (sb *VulkanSharedUniformBuffer) Slot(index uint32) (VulkanUniformBufferSlot, error) {
	if index >= sb.elementCount {
		return VulkanUniformBufferSlot{}, &core.SlotRangeError{Index: index, Count: sb.elementCount}
	}
	return VulkanUniformBufferSlot{
		Offset: vk.DeviceSize(index) * sb.elementStride,
		Size:   sb.elementSize,
	}, nil
}

func (sb *VulkanSharedUniformBuffer) Stride() vk.DeviceSize {
	return sb.elementStride
}

func (sb *VulkanSharedUniformBuffer) ElementCount() uint32 {
	return sb.elementCount
}

// WriteSlot copies data into the given slot. Writes are visible to the GPU
// immediately; the memory is host-coherent.
func (sb *VulkanSharedUniformBuffer) WriteSlot(context *VulkanContext, slot VulkanUniformBufferSlot, data []byte) error {
	size := slot.Size
	if vk.DeviceSize(len(data)) < size {
		size = vk.DeviceSize(len(data))
	}
	return sb.Buffer.LoadData(context, slot.Offset, size, data)
}

func (sb *VulkanSharedUniformBuffer) Destroy(context *VulkanContext) {
	sb.Buffer.Destroy(context)
}
