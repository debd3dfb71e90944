package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// VulkanTexture is a sampled image with its full mip chain uploaded and a
// sampler configured to read it. LayerCount 6 means a cube map.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
	Format  vk.Format
}

// LoadTextures uploads a batch of decoded images as 2D textures. The whole
// batch records into one single-use command buffer and blocks on one fence,
// so loading N textures costs one submit instead of N.
func LoadTextures(context *VulkanContext, images []*metadata.ImageResourceData) ([]*VulkanTexture, error) {
	textures := make([]*VulkanTexture, 0, len(images))
	staging := make([]*VulkanBuffer, 0, len(images))
	defer func() {
		for _, s := range staging {
			s.Destroy(context)
		}
	}()

	commandBuffer, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}

	for _, img := range images {
		texture, stagingBuffer, err := recordTextureUpload(context, commandBuffer, []*metadata.ImageResourceData{img})
		if err != nil {
			commandBuffer.Free(context, context.Device.GraphicsCommandPool)
			return nil, err
		}
		staging = append(staging, stagingBuffer)
		textures = append(textures, texture)
	}

	if err := commandBuffer.EndSingleUseFenced(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		return nil, err
	}

	for _, t := range textures {
		sampler, err := newTextureSampler(context, t.Image.MipLevels)
		if err != nil {
			return nil, err
		}
		t.Sampler = sampler
	}

	core.LogDebug("uploaded %d texture(s)", len(textures))
	return textures, nil
}

// LoadCubeMap uploads six decoded faces, ordered +X, -X, +Y, -Y, +Z, -Z,
// into a single cube-compatible image with six array layers.
func LoadCubeMap(context *VulkanContext, faces []*metadata.ImageResourceData) (*VulkanTexture, error) {
	if len(faces) != 6 {
		err := fmt.Errorf("cube map needs 6 faces, got %d", len(faces))
		core.LogError(err.Error())
		return nil, err
	}
	for _, f := range faces[1:] {
		if f.Width != faces[0].Width || f.Height != faces[0].Height {
			err := fmt.Errorf("cube map faces must share one extent")
			core.LogError(err.Error())
			return nil, err
		}
	}

	commandBuffer, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}

	texture, stagingBuffer, err := recordTextureUpload(context, commandBuffer, faces)
	if err != nil {
		commandBuffer.Free(context, context.Device.GraphicsCommandPool)
		return nil, err
	}
	defer stagingBuffer.Destroy(context)

	if err := commandBuffer.EndSingleUseFenced(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		return nil, err
	}

	sampler, err := newTextureSampler(context, texture.Image.MipLevels)
	if err != nil {
		return nil, err
	}
	texture.Sampler = sampler
	return texture, nil
}

// recordTextureUpload creates the device-local image and records the
// upload into commandBuffer: transition all mips and layers to
// TRANSFER_DST, one copy per (layer, mip) out of a packed staging buffer,
// then transition to SHADER_READ_ONLY. The caller owns the returned
// staging buffer until the commands have executed.
func recordTextureUpload(context *VulkanContext, commandBuffer *VulkanCommandBuffer, layers []*metadata.ImageResourceData) (*VulkanTexture, *VulkanBuffer, error) {
	base := layers[0]
	mipLevels := uint32(len(base.MipLevels))
	format := vk.FormatR8g8b8a8Unorm

	var layerSize vk.DeviceSize
	for _, level := range base.MipLevels {
		layerSize += vk.DeviceSize(len(level))
	}

	stagingBuffer, err := NewVulkanBuffer(context,
		layerSize*vk.DeviceSize(len(layers)),
		vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, nil, err
	}

	offset := vk.DeviceSize(0)
	for _, layer := range layers {
		for _, level := range layer.MipLevels {
			if err := stagingBuffer.LoadData(context, offset, vk.DeviceSize(len(level)), level); err != nil {
				stagingBuffer.Destroy(context)
				return nil, nil, err
			}
			offset += vk.DeviceSize(len(level))
		}
	}

	image, err := ImageCreate(context,
		vk.ImageType2d,
		base.Width, base.Height,
		mipLevels, uint32(len(layers)),
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		stagingBuffer.Destroy(context)
		return nil, nil, err
	}

	if err := image.TransitionLayout(context, commandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		stagingBuffer.Destroy(context)
		image.Destroy(context)
		return nil, nil, err
	}

	offset = 0
	for layerIndex, layer := range layers {
		for mip, level := range layer.MipLevels {
			w, h := metadata.MipExtent(layer.Width, layer.Height, uint32(mip))
			image.CopyFromBuffer(context, commandBuffer, stagingBuffer.Handle, uint32(mip), uint32(layerIndex), w, h, offset)
			offset += vk.DeviceSize(len(level))
		}
	}

	if err := image.TransitionLayout(context, commandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		stagingBuffer.Destroy(context)
		image.Destroy(context)
		return nil, nil, err
	}

	return &VulkanTexture{Image: image, Format: format}, stagingBuffer, nil
}

func newTextureSampler(context *VulkanContext, mipLevels uint32) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           16,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  float32(mipLevels),
	}

	var sampler vk.Sampler
	err := lockPool.SafeCall(SamplerManagement, func() error {
		if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create texture sampler: %s", VulkanResultString(res))
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return sampler, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	lockPool.SafeCall(SamplerManagement, func() error {
		if t.Sampler != nil {
			vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
			t.Sampler = nil
		}
		return nil
	})
	if t.Image != nil {
		t.Image.Destroy(context)
		t.Image = nil
	}
}
