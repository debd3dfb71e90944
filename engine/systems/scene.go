package systems

import (
	"unsafe"

	"github.com/google/uuid"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/components"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumo/engine/resources"
)

// The descriptor set layout every shader pair is written against. One set
// per mesh instance; bindings 0-2 point at scene-wide buffers shared by
// all sets.
const (
	SceneBindingCamera           uint32 = 0
	SceneBindingDirectionalLight uint32 = 1
	SceneBindingPointLight       uint32 = 2
	SceneBindingInstance         uint32 = 3
	SceneBindingDiffuseSampler   uint32 = 4
	SceneBindingEnvironmentMap   uint32 = 5
)

// DirectionalLightBlock is the sun: a direction and a color. 32 bytes,
// std140 compatible.
type DirectionalLightBlock struct {
	Direction math.Vec4
	Color     math.Vec4
}

// PointLightBlock is a positional light with the classic
// constant/linear/quadratic attenuation packed into one vec4. 48 bytes,
// std140 compatible.
type PointLightBlock struct {
	Position    math.Vec4
	Color       math.Vec4
	Attenuation math.Vec4
}

// SceneConfig sizes the scene at creation. Uniform slots and descriptor
// sets are carved out up front; AddInstance fails once they run out.
type SceneConfig struct {
	MaxInstances uint32

	FOVDegrees float32
	NearClip   float32
	FarClip    float32

	// Starting orbit angles, in degrees.
	YawDegrees   float32
	PitchDegrees float32

	ViewportWidth  uint32
	ViewportHeight uint32
}

// Scene owns everything a frame reads: the camera and its orbit controls,
// the light buffers, the shared per-instance uniform buffer and the
// descriptor machinery binding them together. Every GPU resource it
// creates goes into one trash registry, so teardown is a single call in
// reverse creation order.
type Scene struct {
	context *vulkan.VulkanContext
	trash   *vulkan.VulkanTrash

	Camera *components.Camera
	Orbit  *components.OrbitControls

	pool   *vulkan.VulkanDescriptorPool
	layout *vulkan.VulkanDescriptorSetLayout
	shared *vulkan.VulkanSharedUniformBuffer

	directionalLight       DirectionalLightBlock
	pointLight             PointLightBlock
	directionalLightBuffer *vulkan.VulkanBuffer
	pointLightBuffer       *vulkan.VulkanBuffer

	defaultTexture *vulkan.VulkanTexture
	environment    *vulkan.VulkanTexture

	instances   []*vulkan.VulkanMeshInstance
	instanceIDs map[uuid.UUID]*vulkan.VulkanMeshInstance
	nextSlot    uint32
}

func NewScene(context *vulkan.VulkanContext, textures *TextureSystem, config *SceneConfig) (*Scene, error) {
	scene := &Scene{
		context:        context,
		trash:          vulkan.NewVulkanTrash(context),
		defaultTexture: textures.Default(),
		environment:    textures.DefaultCube(),
		instanceIDs:    make(map[uuid.UUID]*vulkan.VulkanMeshInstance),
		directionalLight: DirectionalLightBlock{
			Direction: math.NewVec4(-0.5, -1, -0.3, 0),
			Color:     math.NewVec4(1, 1, 1, 1),
		},
		pointLight: PointLightBlock{
			Position:    math.NewVec4(0, 2, 2, 1),
			Color:       math.NewVec4(1, 1, 1, 1),
			Attenuation: math.NewVec4(1, 0.09, 0.032, 0),
		},
	}

	camera, err := components.NewCamera(context,
		math.DegToRad(config.FOVDegrees),
		math.NewVec2(float32(config.ViewportWidth), float32(config.ViewportHeight)),
		config.NearClip, config.FarClip)
	if err != nil {
		return nil, err
	}
	scene.Camera = camera
	scene.trash.Add(camera)
	scene.Orbit = components.NewOrbitControls(camera, math.NewVec3Zero(), 5)
	scene.Orbit.SetAngles(math.DegToRad(config.YawDegrees), math.DegToRad(config.PitchDegrees))

	shared, err := vulkan.NewVulkanSharedUniformBuffer(context,
		vk.DeviceSize(unsafe.Sizeof(vulkan.VulkanMeshInstanceUniformBlock{})),
		config.MaxInstances)
	if err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	scene.shared = shared
	scene.trash.Add(shared)

	if scene.directionalLightBuffer, err = newUniformBlockBuffer(context, unsafe.Sizeof(scene.directionalLight)); err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	scene.trash.Add(scene.directionalLightBuffer)
	if scene.pointLightBuffer, err = newUniformBlockBuffer(context, unsafe.Sizeof(scene.pointLight)); err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	scene.trash.Add(scene.pointLightBuffer)

	if err := scene.SetDirectionalLight(scene.directionalLight); err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	if err := scene.SetPointLight(scene.pointLight); err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}

	// Four uniform bindings and two samplers per set.
	pool, err := vulkan.NewVulkanDescriptorPool(context,
		config.MaxInstances, config.MaxInstances*4, config.MaxInstances*2)
	if err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	scene.pool = pool
	scene.trash.Add(pool)

	layout, err := vulkan.NewVulkanDescriptorSetLayout(context, []vulkan.VulkanDescriptorBinding{
		{Binding: SceneBindingCamera, DescriptorType: vk.DescriptorTypeUniformBuffer},
		{Binding: SceneBindingDirectionalLight, DescriptorType: vk.DescriptorTypeUniformBuffer},
		{Binding: SceneBindingPointLight, DescriptorType: vk.DescriptorTypeUniformBuffer},
		{Binding: SceneBindingInstance, DescriptorType: vk.DescriptorTypeUniformBuffer},
		{Binding: SceneBindingDiffuseSampler, DescriptorType: vk.DescriptorTypeCombinedImageSampler},
		{Binding: SceneBindingEnvironmentMap, DescriptorType: vk.DescriptorTypeCombinedImageSampler},
	})
	if err != nil {
		scene.trash.TeardownAll()
		return nil, err
	}
	scene.layout = layout
	scene.trash.Add(layout)

	core.LogInfo("Scene initialized: up to %d mesh instances.", config.MaxInstances)
	return scene, nil
}

func newUniformBlockBuffer(context *vulkan.VulkanContext, size uintptr) (*vulkan.VulkanBuffer, error) {
	return vulkan.NewVulkanBuffer(context,
		vk.DeviceSize(size),
		vk.BufferUsageUniformBufferBit|vk.BufferUsageTransferDstBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
}

// Layout exposes the scene's descriptor set layout; the pipeline system
// builds every pipeline against it.
func (s *Scene) Layout() *vulkan.VulkanDescriptorSetLayout {
	return s.layout
}

// SetEnvironment replaces the cube map that instances added afterwards
// sample for reflections. Instances created earlier keep the old one.
func (s *Scene) SetEnvironment(cube *vulkan.VulkanTexture) {
	if cube != nil {
		s.environment = cube
	}
}

// SetDirectionalLight writes the sun block through to the GPU.
func (s *Scene) SetDirectionalLight(block DirectionalLightBlock) error {
	s.directionalLight = block
	data := vulkan.RawBytes(unsafe.Pointer(&s.directionalLight), int(unsafe.Sizeof(s.directionalLight)))
	return s.directionalLightBuffer.LoadData(s.context, 0, vk.DeviceSize(len(data)), data)
}

// SetPointLight writes the point light block through to the GPU.
func (s *Scene) SetPointLight(block PointLightBlock) error {
	s.pointLight = block
	data := vulkan.RawBytes(unsafe.Pointer(&s.pointLight), int(unsafe.Sizeof(s.pointLight)))
	return s.pointLightBuffer.LoadData(s.context, 0, vk.DeviceSize(len(data)), data)
}

func (s *Scene) DirectionalLight() DirectionalLightBlock {
	return s.directionalLight
}

func (s *Scene) PointLight() PointLightBlock {
	return s.pointLight
}

// AddMesh uploads geometry and registers the buffers for teardown. The
// returned mesh can back any number of instances.
func (s *Scene) AddMesh(geometry *resources.Geometry) (*vulkan.VulkanMesh, error) {
	mesh, err := vulkan.NewVulkanMesh(s.context, geometry.Vertices, geometry.Indices)
	if err != nil {
		return nil, err
	}
	s.trash.Add(mesh)
	return mesh, nil
}

// AddInstance places a mesh in the scene under a shading model. It takes
// the next slot of the shared uniform buffer, allocates the instance's
// descriptor set and points every binding: the scene-wide buffers, the
// instance slot, the diffuse texture (default when nil) and the current
// environment map.
func (s *Scene) AddInstance(mesh *vulkan.VulkanMesh, shader metadata.ShaderModel, diffuse *vulkan.VulkanTexture) (*vulkan.VulkanMeshInstance, uuid.UUID, error) {
	slot, err := s.shared.Slot(s.nextSlot)
	if err != nil {
		core.LogError("scene is full: %s", err.Error())
		return nil, uuid.Nil, err
	}

	instance := vulkan.NewVulkanMeshInstance(mesh, shader)
	if err := instance.InitUniforms(s.context, s.pool, s.layout, SceneBindingInstance, s.shared, slot); err != nil {
		return nil, uuid.Nil, err
	}
	s.nextSlot++

	set := instance.DescriptorSet()
	s.Camera.InitUniforms(s.context, set, SceneBindingCamera)
	set.WriteBuffer(s.context, SceneBindingDirectionalLight,
		s.directionalLightBuffer.Handle, vk.DeviceSize(unsafe.Sizeof(s.directionalLight)))
	set.WriteBuffer(s.context, SceneBindingPointLight,
		s.pointLightBuffer.Handle, vk.DeviceSize(unsafe.Sizeof(s.pointLight)))

	if diffuse == nil {
		diffuse = s.defaultTexture
	}
	set.WriteImage(s.context, SceneBindingDiffuseSampler, diffuse.Sampler, diffuse.Image.View)
	set.WriteImage(s.context, SceneBindingEnvironmentMap, s.environment.Sampler, s.environment.Image.View)

	id := uuid.New()
	s.instances = append(s.instances, instance)
	s.instanceIDs[id] = instance
	return instance, id, nil
}

// Instance looks an instance up by the id AddInstance returned.
func (s *Scene) Instance(id uuid.UUID) (*vulkan.VulkanMeshInstance, bool) {
	instance, ok := s.instanceIDs[id]
	return instance, ok
}

// Instances returns every instance in insertion order.
func (s *Scene) Instances() []*vulkan.VulkanMeshInstance {
	return s.instances
}

// Resize rebuilds the camera projection for a new surface size.
func (s *Scene) Resize(width, height uint32) error {
	return s.Camera.SetViewport(s.context, math.NewVec2(float32(width), float32(height)))
}

// Update advances the orbit controls from the frame's input.
func (s *Scene) Update() error {
	return s.Orbit.Update(s.context)
}

// Destroy waits for the device and tears every scene resource down in
// reverse creation order.
func (s *Scene) Destroy() {
	s.instances = nil
	s.instanceIDs = nil
	s.trash.TeardownAll()
}
