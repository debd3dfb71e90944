package systems

import (
	"errors"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/assets"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/platform"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
)

const sceneMaxInstances = 256

// SystemManager wires the renderer and the resource systems together and
// owns their startup and teardown order. The engine talks to it; the
// systems talk to each other through it.
type SystemManager struct {
	renderer *vulkan.VulkanRenderer
	assets   *assets.AssetManager
	textures *TextureSystem
	fonts    *FontSystem
	scene    *Scene
	pipeline *PipelineSystem
}

func NewSystemManager(p *platform.Platform, settings *core.Settings, assetRoot string) (*SystemManager, error) {
	sm := &SystemManager{
		renderer: vulkan.New(p),
		assets:   assets.NewAssetManager(),
	}

	if err := sm.renderer.Initialize(settings.Window.Title,
		settings.Window.Width, settings.Window.Height, settings.Renderer.VSync); err != nil {
		return nil, err
	}
	context := sm.renderer.Context()

	if err := sm.assets.Initialize(assetRoot); err != nil {
		sm.renderer.Shutdown()
		return nil, err
	}

	textures, err := NewTextureSystem(context, sm.assets)
	if err != nil {
		sm.teardownPartial()
		return nil, err
	}
	sm.textures = textures

	sm.fonts = NewFontSystem(context, sm.assets)

	scene, err := NewScene(context, textures, &SceneConfig{
		MaxInstances:   sceneMaxInstances,
		FOVDegrees:     float32(settings.Camera.FOV),
		NearClip:       float32(settings.Camera.Near),
		FarClip:        float32(settings.Camera.Far),
		YawDegrees:     float32(settings.Camera.Yaw),
		PitchDegrees:   float32(settings.Camera.Pitch),
		ViewportWidth:  settings.Window.Width,
		ViewportHeight: settings.Window.Height,
	})
	if err != nil {
		sm.teardownPartial()
		return nil, err
	}
	sm.scene = scene

	pipeline, err := NewPipelineSystem(context, sm.assets, context.MainRenderpass,
		[]vk.DescriptorSetLayout{scene.Layout().Handle}, &settings.Renderer)
	if err != nil {
		sm.teardownPartial()
		return nil, err
	}
	sm.pipeline = pipeline

	// Shader binaries changing on disk schedule a pipeline rebuild.
	core.EventRegister(core.EVENT_CODE_SHADER_CHANGED, sm, func(context core.EventContext) bool {
		pipeline.RequestReload()
		return false
	})

	core.LogInfo("All systems initialized.")
	return sm, nil
}

func (sm *SystemManager) teardownPartial() {
	sm.renderer.WaitIdle()
	if sm.scene != nil {
		sm.scene.Destroy()
	}
	if sm.fonts != nil {
		sm.fonts.Shutdown()
	}
	if sm.textures != nil {
		sm.textures.Shutdown()
	}
	sm.assets.Shutdown()
	sm.renderer.Shutdown()
}

func (sm *SystemManager) Renderer() *vulkan.VulkanRenderer {
	return sm.renderer
}

func (sm *SystemManager) Assets() *assets.AssetManager {
	return sm.assets
}

func (sm *SystemManager) Textures() *TextureSystem {
	return sm.textures
}

func (sm *SystemManager) Fonts() *FontSystem {
	return sm.fonts
}

func (sm *SystemManager) Scene() *Scene {
	return sm.scene
}

func (sm *SystemManager) Pipelines() *PipelineSystem {
	return sm.pipeline
}

// Update runs the per-frame input handling: pipeline hotkeys and the
// camera orbit.
func (sm *SystemManager) Update(deltaTime float64) error {
	sm.pipeline.Update()
	return sm.scene.Update()
}

// OnResize forwards a new framebuffer size to the renderer and the camera.
func (sm *SystemManager) OnResize(width, height uint32) error {
	sm.renderer.Resized(width, height)
	return sm.scene.Resize(width, height)
}

// DrawFrame renders one frame: apply a pending pipeline rebuild, begin the
// frame, draw every scene instance with its selected pipeline (text last,
// on top of the scene), end the frame. A frame skipped because the
// swapchain is rebuilding is not an error.
func (sm *SystemManager) DrawFrame(deltaTime float64) error {
	if sm.pipeline.ConsumePendingReload() {
		sm.renderer.WaitIdle()
		if err := sm.pipeline.Reload(); err != nil {
			core.LogError("pipeline reload failed: %s", err.Error())
		}
	}

	if err := sm.renderer.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		return err
	}

	commandBuffer := sm.renderer.CurrentCommandBuffer()

	for _, instance := range sm.scene.Instances() {
		if instance.Shader() == metadata.ShaderModelText {
			continue
		}
		sm.drawInstance(commandBuffer, instance)
	}
	for _, instance := range sm.scene.Instances() {
		if instance.Shader() != metadata.ShaderModelText {
			continue
		}
		sm.drawInstance(commandBuffer, instance)
	}

	return sm.renderer.EndFrame(deltaTime)
}

func (sm *SystemManager) drawInstance(commandBuffer *vulkan.VulkanCommandBuffer, instance *vulkan.VulkanMeshInstance) {
	pipeline := sm.pipeline.Selected(instance.Shader())
	pipeline.Bind(commandBuffer)
	instance.BindUniforms(commandBuffer, pipeline.PipelineLayout)
	instance.Mesh.Bind(commandBuffer)
	instance.Mesh.Draw(commandBuffer)
}

// Shutdown tears everything down in reverse initialization order.
func (sm *SystemManager) Shutdown() {
	sm.renderer.WaitIdle()

	sm.pipeline.Destroy()
	sm.scene.Destroy()
	sm.fonts.Shutdown()
	sm.textures.Shutdown()
	sm.assets.Shutdown()
	sm.renderer.Shutdown()

	core.LogInfo("All systems shut down.")
}
