package components

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
)

// CameraUniformBlock is what every shader reads at the camera binding:
// the combined view-projection matrix plus the world-space eye position
// for specular terms. 80 bytes, std140 compatible.
type CameraUniformBlock struct {
	ViewProjection math.Mat4
	Position       math.Vec4
}

/**
 * @brief A perspective camera backed by its own small uniform buffer.
 * Every mesh instance descriptor set points its camera binding at the same
 * buffer, so moving the camera is one buffer write per frame regardless of
 * scene size.
 */
type Camera struct {
	Position      math.Vec3
	EulerRotation math.Vec3

	fov      float32
	nearClip float32
	farClip  float32
	viewport math.Vec2

	view       math.Mat4
	projection math.Mat4

	buffer *vulkan.VulkanBuffer
}

func NewCamera(context *vulkan.VulkanContext, fovRadians float32, viewport math.Vec2, nearClip, farClip float32) (*Camera, error) {
	camera := &Camera{
		fov:      fovRadians,
		nearClip: nearClip,
		farClip:  farClip,
		viewport: viewport,
		view:     math.NewMat4Identity(),
	}
	camera.projection = math.NewMat4Perspective(fovRadians, viewport.X/viewport.Y, nearClip, farClip)

	buffer, err := vulkan.NewVulkanBuffer(context,
		uniformBlockSize(),
		vk.BufferUsageUniformBufferBit|vk.BufferUsageTransferDstBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	camera.buffer = buffer

	if err := camera.push(context); err != nil {
		camera.Destroy(context)
		return nil, err
	}
	return camera, nil
}

func uniformBlockSize() vk.DeviceSize {
	return vk.DeviceSize(unsafe.Sizeof(CameraUniformBlock{}))
}

func (c *Camera) rebuildView() {
	rotation := math.NewMat4EulerXYZ(c.EulerRotation.X, c.EulerRotation.Y, c.EulerRotation.Z)
	translation := math.NewMat4Translation(c.Position)
	c.view = rotation.Mul(translation).Inverse()
}

// Block returns the uniform contents for the camera's current state.
func (c *Camera) Block() CameraUniformBlock {
	return CameraUniformBlock{
		ViewProjection: c.view.Mul(c.projection),
		Position:       c.Position.ToVec4(1),
	}
}

func (c *Camera) push(context *vulkan.VulkanContext) error {
	block := c.Block()
	data := vulkan.RawBytes(unsafe.Pointer(&block), int(unsafe.Sizeof(block)))
	return c.buffer.LoadData(context, 0, uniformBlockSize(), data)
}

// SetViewport rebuilds the projection for a new surface size and writes
// the block through. Zero-sized surfaces (minimized window) are ignored.
func (c *Camera) SetViewport(context *vulkan.VulkanContext, viewport math.Vec2) error {
	if viewport.X <= 0 || viewport.Y <= 0 {
		return nil
	}
	c.viewport = viewport
	c.projection = math.NewMat4Perspective(c.fov, viewport.X/viewport.Y, c.nearClip, c.farClip)
	return c.push(context)
}

// SetPositionRotation moves the camera and writes the block through.
func (c *Camera) SetPositionRotation(context *vulkan.VulkanContext, position, eulerRotation math.Vec3) error {
	c.Position = position
	c.EulerRotation = eulerRotation
	c.rebuildView()
	return c.push(context)
}

// InitUniforms points the camera binding of a descriptor set at the
// camera's buffer. Called once per mesh instance set.
func (c *Camera) InitUniforms(context *vulkan.VulkanContext, set *vulkan.VulkanDescriptorSet, binding uint32) {
	set.WriteBuffer(context, binding, c.buffer.Handle, uniformBlockSize())
}

func (c *Camera) Destroy(context *vulkan.VulkanContext) {
	if c.buffer != nil {
		c.buffer.Destroy(context)
		c.buffer = nil
	}
}

const (
	minOrbitDistance float32 = 0.1
	maxOrbitDistance float32 = 100.0
	// Radians of rotation per pixel of drag.
	orbitDragSpeed float32 = 1.0 / 200.0
	// World units of zoom per scroll step.
	orbitZoomSpeed float32 = 0.2
)

/**
 * @brief Mouse-driven orbit around a fixed center. Dragging with the left
 * button changes azimuth and elevation, the wheel changes distance. The
 * azimuth wraps, the elevation stops at the poles and the distance is
 * clamped so the camera can neither enter the target nor drift away.
 */
type OrbitControls struct {
	camera *Camera
	Center math.Vec3

	azimuth   float32
	elevation float32
	distance  float32
}

func NewOrbitControls(camera *Camera, center math.Vec3, distance float32) *OrbitControls {
	return &OrbitControls{
		camera:   camera,
		Center:   center,
		distance: math.Clamp(distance, minOrbitDistance, maxOrbitDistance),
	}
}

// SetAngles places the orbit at a starting azimuth and elevation, with the
// same wrap and pole clamp dragging applies.
func (oc *OrbitControls) SetAngles(azimuth, elevation float32) {
	oc.azimuth = math.WrapRadians(azimuth)
	oc.elevation = math.Clamp(elevation, -math.K_HALF_PI, math.K_HALF_PI)
}

// apply advances the orbit state by one frame of input. Pure; Update feeds
// it the polled input state.
func (oc *OrbitControls) apply(dragging bool, dx, dy int32, scroll float32) {
	if dragging {
		oc.azimuth = math.WrapRadians(oc.azimuth - float32(dx)*orbitDragSpeed)
		oc.elevation = math.Clamp(oc.elevation+float32(dy)*orbitDragSpeed, -math.K_HALF_PI, math.K_HALF_PI)
	}
	if scroll != 0 {
		oc.distance = math.Clamp(oc.distance-scroll*orbitZoomSpeed, minOrbitDistance, maxOrbitDistance)
	}
}

// position converts the spherical orbit state into a world position.
func (oc *OrbitControls) position() math.Vec3 {
	return math.NewVec3(
		oc.Center.X+oc.distance*math.Cos(oc.elevation)*math.Sin(oc.azimuth),
		oc.Center.Y+oc.distance*math.Sin(oc.elevation),
		oc.Center.Z+oc.distance*math.Cos(oc.elevation)*math.Cos(oc.azimuth),
	)
}

// Update polls the input state and moves the camera accordingly. The
// camera looks at the center from its spherical position.
func (oc *OrbitControls) Update(context *vulkan.VulkanContext) error {
	dx, dy := core.InputGetMouseDelta()
	oc.apply(core.InputIsButtonDown(core.BUTTON_LEFT), dx, dy, core.InputGetScrollDelta())

	rotation := math.NewVec3(-oc.elevation, oc.azimuth, 0)
	return oc.camera.SetPositionRotation(context, oc.position(), rotation)
}
