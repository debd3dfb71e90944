package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// VertexInputAttributes describes the interleaved metadata.Vertex layout
// for pipeline creation: position, color, normal, texcoord.
func VertexInputAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 24},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 36},
	}
}

// VulkanMesh owns a vertex and an index buffer. Buffers are host-coherent;
// geometry is written once at creation and never staged.
type VulkanMesh struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	indexCount   uint32
}

func NewVulkanMesh(context *VulkanContext, vertices []metadata.Vertex, indices []uint32) (*VulkanMesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		err := fmt.Errorf("mesh needs at least one vertex and one index")
		core.LogError(err.Error())
		return nil, err
	}

	vertexSize := vk.DeviceSize(len(vertices)) * vk.DeviceSize(metadata.VertexSize)
	vertexBuffer, err := NewVulkanBuffer(context, vertexSize,
		vk.BufferUsageVertexBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	vertexBytes := RawBytes(unsafe.Pointer(&vertices[0]), int(vertexSize))
	if err := vertexBuffer.LoadData(context, 0, vertexSize, vertexBytes); err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}

	indexSize := vk.DeviceSize(len(indices)) * 4
	indexBuffer, err := NewVulkanBuffer(context, indexSize,
		vk.BufferUsageIndexBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}
	indexBytes := RawBytes(unsafe.Pointer(&indices[0]), int(indexSize))
	if err := indexBuffer.LoadData(context, 0, indexSize, indexBytes); err != nil {
		vertexBuffer.Destroy(context)
		indexBuffer.Destroy(context)
		return nil, err
	}

	return &VulkanMesh{
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		indexCount:   uint32(len(indices)),
	}, nil
}

func (m *VulkanMesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *VulkanMesh) Bind(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{m.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, m.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
}

func (m *VulkanMesh) Draw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdDrawIndexed(commandBuffer.Handle, m.indexCount, 1, 0, 0, 0)
}

func (m *VulkanMesh) Destroy(context *VulkanContext) {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
}

// VulkanMeshInstanceUniformBlock is the per-instance uniform element the
// shaders read: tint color, model matrix and material factors packed as
// (ambient, diffuse, specular, shininess) for the classic models or
// (metallic, roughness, ao, unused) for PBR. 96 bytes, std140 compatible.
type VulkanMeshInstanceUniformBlock struct {
	Color           math.Vec4
	Model           math.Mat4
	MaterialFactors math.Vec4
}

// NewVulkanMeshInstanceUniformBlock returns the defaults: white, identity
// transform, neutral material.
func NewVulkanMeshInstanceUniformBlock() VulkanMeshInstanceUniformBlock {
	return VulkanMeshInstanceUniformBlock{
		Color:           math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		Model:           math.NewMat4Identity(),
		MaterialFactors: math.Vec4{X: 0.1, Y: 0.7, Z: 0.3, W: 32},
	}
}

// VulkanMeshInstance pairs a mesh with a shading model, one slot of the
// scene's shared uniform buffer and the descriptor set that binds it.
// Many instances can share one mesh.
type VulkanMeshInstance struct {
	Mesh   *VulkanMesh
	shader metadata.ShaderModel
	block  VulkanMeshInstanceUniformBlock
	set    *VulkanDescriptorSet
	shared *VulkanSharedUniformBuffer
	slot   VulkanUniformBufferSlot
}

func NewVulkanMeshInstance(mesh *VulkanMesh, shader metadata.ShaderModel) *VulkanMeshInstance {
	return &VulkanMeshInstance{
		Mesh:   mesh,
		shader: shader,
		block:  NewVulkanMeshInstanceUniformBlock(),
	}
}

func (mi *VulkanMeshInstance) Shader() metadata.ShaderModel {
	return mi.shader
}

func (mi *VulkanMeshInstance) SetShader(shader metadata.ShaderModel) {
	mi.shader = shader
}

func (mi *VulkanMeshInstance) Block() VulkanMeshInstanceUniformBlock {
	return mi.block
}

func (mi *VulkanMeshInstance) DescriptorSet() *VulkanDescriptorSet {
	return mi.set
}

// InitUniforms allocates the instance's descriptor set, points the given
// binding at its slot of the shared uniform buffer and pushes the default
// block. The remaining bindings of the set are the scene's to fill.
func (mi *VulkanMeshInstance) InitUniforms(context *VulkanContext, pool *VulkanDescriptorPool, layout *VulkanDescriptorSetLayout, binding uint32, shared *VulkanSharedUniformBuffer, slot VulkanUniformBufferSlot) error {
	set, err := pool.AllocateSet(context, layout)
	if err != nil {
		return err
	}
	mi.set = set
	mi.shared = shared
	mi.slot = slot

	set.WriteBuffer(context, binding, shared.Buffer.Handle, slot.Size, slot)
	return mi.push(context)
}

// SetUniforms replaces the instance's uniform block and writes it through
// to the shared buffer.
func (mi *VulkanMeshInstance) SetUniforms(context *VulkanContext, block VulkanMeshInstanceUniformBlock) error {
	mi.block = block
	return mi.push(context)
}

func (mi *VulkanMeshInstance) push(context *VulkanContext) error {
	if mi.shared == nil {
		return nil
	}
	data := RawBytes(unsafe.Pointer(&mi.block), int(unsafe.Sizeof(mi.block)))
	return mi.shared.WriteSlot(context, mi.slot, data)
}

// BindUniforms binds the instance's descriptor set for the draw that
// follows.
func (mi *VulkanMeshInstance) BindUniforms(commandBuffer *VulkanCommandBuffer, pipelineLayout vk.PipelineLayout) {
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, pipelineLayout, 0, 1, []vk.DescriptorSet{mi.set.Handle}, 0, nil)
}
