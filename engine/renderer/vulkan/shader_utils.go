package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

// VulkanShaderStage is one compiled SPIR-V module plus the stage create
// info that plugs it into a pipeline.
type VulkanShaderStage struct {
	Handle          vk.ShaderModule
	StageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage reads a .spv file from disk and wraps it in a shader
// module. The module can be destroyed as soon as the pipeline using it has
// been created.
func NewShaderStage(context *VulkanContext, path string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to read shader %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader %s is not valid SPIR-V (%d bytes)", path, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}

	shaderStage := &VulkanShaderStage{}
	err = lockPool.SafeCall(ShaderManagement, func() error {
		var module vk.ShaderModule
		if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create shader module %s: %s", path, VulkanResultString(res))
		}
		shaderStage.Handle = module
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	shaderStage.StageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: shaderStage.Handle,
		PName:  VulkanSafeString("main"),
	}

	return shaderStage, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}
