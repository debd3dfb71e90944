package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func NewFramebuffer(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	framebuffer := &VulkanFramebuffer{
		Attachments: make([]vk.ImageView, len(attachments)),
		Renderpass:  renderpass,
	}
	copy(framebuffer.Attachments, attachments)

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(framebuffer.Attachments)),
		PAttachments:    framebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	err := lockPool.SafeCall(RenderpassManagement, func() error {
		var handle vk.Framebuffer
		if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create framebuffer: %s", VulkanResultString(res))
		}
		framebuffer.Handle = handle
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return framebuffer, nil
}

func (fb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	lockPool.SafeCall(RenderpassManagement, func() error {
		if fb.Handle != vk.NullFramebuffer {
			vk.DestroyFramebuffer(context.Device.LogicalDevice, fb.Handle, context.Allocator)
			fb.Handle = vk.NullFramebuffer
		}
		return nil
	})
	fb.Attachments = nil
	fb.Renderpass = nil
}
