package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

// VulkanDescriptorPool sizes a pool for uniform buffers and combined image
// samplers, the only descriptor types the engine binds.
type VulkanDescriptorPool struct {
	Handle vk.DescriptorPool
}

func NewVulkanDescriptorPool(context *VulkanContext, maxSets, uniformCount, samplerCount uint32) (*VulkanDescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uniformCount,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: samplerCount,
		},
	}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       maxSets,
	}

	pool := &VulkanDescriptorPool{}
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		var handle vk.DescriptorPool
		if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res))
		}
		pool.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return pool, nil
}

func (p *VulkanDescriptorPool) Destroy(context *VulkanContext) {
	if p.Handle != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, p.Handle, context.Allocator)
		p.Handle = nil
	}
}

// VulkanDescriptorBinding declares one binding slot of a set layout.
type VulkanDescriptorBinding struct {
	Binding        uint32
	DescriptorType vk.DescriptorType
}

type VulkanDescriptorSetLayout struct {
	Handle vk.DescriptorSetLayout
}

// NewVulkanDescriptorSetLayout builds a layout whose bindings are visible
// to all shader stages. Per-stage masks buy nothing here since every
// builtin shader pair reads the same set.
func NewVulkanDescriptorSetLayout(context *VulkanContext, bindings []VulkanDescriptorBinding) (*VulkanDescriptorSetLayout, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		layoutBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.DescriptorType,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		}
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layoutBindings)),
		PBindings:    layoutBindings,
	}

	layout := &VulkanDescriptorSetLayout{}
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		var handle vk.DescriptorSetLayout
		if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res))
		}
		layout.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return layout, nil
}

func (l *VulkanDescriptorSetLayout) Destroy(context *VulkanContext) {
	if l.Handle != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, l.Handle, context.Allocator)
		l.Handle = vk.NullDescriptorSetLayout
	}
}

// VulkanDescriptorSet is a set allocated from a pool; it is freed
// implicitly when its pool is destroyed.
type VulkanDescriptorSet struct {
	Handle vk.DescriptorSet
}

func (p *VulkanDescriptorPool) AllocateSet(context *VulkanContext, layout *VulkanDescriptorSetLayout) (*VulkanDescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.Handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.Handle},
	}

	set := &VulkanDescriptorSet{}
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		var handle vk.DescriptorSet
		res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &handle)
		if res == vk.ErrorOutOfPoolMemory || res == vk.ErrorFragmentedPool {
			return fmt.Errorf("%w: %s", core.ErrPoolExhausted, VulkanResultString(res))
		}
		if !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res))
		}
		set.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return set, nil
}

// WriteBuffer points a uniform buffer binding at a buffer range. With a
// slot argument the write addresses that element of a shared uniform
// buffer; without one it covers [0, size).
func (s *VulkanDescriptorSet) WriteBuffer(context *VulkanContext, binding uint32, buffer vk.Buffer, size vk.DeviceSize, slot ...VulkanUniformBufferSlot) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer,
		Offset: 0,
		Range:  size,
	}
	if len(slot) > 0 {
		bufferInfo.Offset = slot[0].Offset
		bufferInfo.Range = slot[0].Size
	}

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          s.Handle,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// WriteImage points a combined image sampler binding at a shader-read-only
// image view.
func (s *VulkanDescriptorSet) WriteImage(context *VulkanContext, binding uint32, sampler vk.Sampler, view vk.ImageView) {
	imageInfo := vk.DescriptorImageInfo{
		Sampler:     sampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          s.Handle,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
