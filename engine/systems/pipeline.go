package systems

import (
	"sync/atomic"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/assets"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
)

// The raster state axes every shader model is combined with. The full
// matrix is built up front, so cycling an axis is a plain index change.
var (
	PolygonModes = [...]vk.PolygonMode{
		vk.PolygonModeFill,
		vk.PolygonModeLine,
	}
	CullModes = [...]vk.CullModeFlagBits{
		vk.CullModeNone,
		vk.CullModeBackBit,
		vk.CullModeFrontBit,
	}
)

// PipelineSystem owns the pipeline matrix: one graphics pipeline per
// (shader model, polygon mode, cull mode) combination, all built against
// the scene's descriptor set layout and the main renderpass. F1/F2 cycle
// the raster axes by reselecting within the matrix; a shader binary
// changing on disk marks the whole matrix for a rebuild that DrawFrame
// performs between frames.
type PipelineSystem struct {
	context *vulkan.VulkanContext
	assets  *assets.AssetManager

	renderpass *vulkan.VulkanRenderpass
	setLayouts []vk.DescriptorSetLayout

	pipelines [metadata.ShaderModelCount][len(PolygonModes)][len(CullModes)]*vulkan.VulkanPipeline

	polygonIndex int
	cullIndex    int

	// Set from the watcher goroutine and from key handling, consumed on
	// the frame loop.
	reloadPending atomic.Bool
}

func NewPipelineSystem(context *vulkan.VulkanContext, am *assets.AssetManager, renderpass *vulkan.VulkanRenderpass, setLayouts []vk.DescriptorSetLayout, settings *core.RendererSettings) (*PipelineSystem, error) {
	ps := &PipelineSystem{
		context:    context,
		assets:     am,
		renderpass: renderpass,
		setLayouts: setLayouts,
	}
	if settings != nil {
		if settings.Wireframe {
			ps.polygonIndex = 1
		}
		if settings.BackfaceCulling {
			ps.cullIndex = 1
		}
	}

	if err := ps.buildAll(); err != nil {
		ps.Destroy()
		return nil, err
	}

	core.LogInfo("Pipeline system initialized: %d shader models x %d polygon modes x %d cull modes.",
		metadata.ShaderModelCount, len(PolygonModes), len(CullModes))
	return ps, nil
}

func (ps *PipelineSystem) buildAll() error {
	for _, model := range metadata.ShaderModels() {
		for pm := range PolygonModes {
			for cm := range CullModes {
				pipeline, err := vulkan.NewGraphicsPipeline(ps.context, ps.configFor(model, pm, cm))
				if err != nil {
					return err
				}
				ps.pipelines[model][pm][cm] = pipeline
			}
		}
	}
	return nil
}

// configFor assembles the config for one matrix entry. Text draws on top
// of the scene, so it blends, skips the depth test and ignores the cull
// axis; everything else is opaque and depth tested.
func (ps *PipelineSystem) configFor(model metadata.ShaderModel, polygonIndex, cullIndex int) *vulkan.VulkanPipelineConfig {
	config := &vulkan.VulkanPipelineConfig{
		Renderpass:           ps.renderpass,
		Stride:               metadata.VertexSize,
		Attributes:           vulkan.VertexInputAttributes(),
		DescriptorSetLayouts: ps.setLayouts,
		VertexShaderPath:     ps.assets.ShaderPath(model, "vert"),
		FragmentShaderPath:   ps.assets.ShaderPath(model, "frag"),
		PolygonMode:          PolygonModes[polygonIndex],
		CullMode:             CullModes[cullIndex],
		DepthTest:            true,
	}
	if model == metadata.ShaderModelText {
		config.DepthTest = false
		config.AlphaBlend = true
		config.CullMode = vk.CullModeNone
	}
	return config
}

// Selected returns the pipeline for a shader model under the current
// raster state.
func (ps *PipelineSystem) Selected(model metadata.ShaderModel) *vulkan.VulkanPipeline {
	if model < 0 || model >= metadata.ShaderModelCount {
		model = metadata.ShaderModelBox
	}
	return ps.pipelines[model][ps.polygonIndex][ps.cullIndex]
}

func wrapIndex(index, count int) int {
	return ((index % count) + count) % count
}

// CyclePolygonMode steps the polygon mode axis. Negative steps cycle
// backwards. Takes effect on the next Selected call; nothing is rebuilt.
func (ps *PipelineSystem) CyclePolygonMode(step int) {
	ps.polygonIndex = wrapIndex(ps.polygonIndex+step, len(PolygonModes))
	core.LogDebug("polygon mode -> %d", ps.polygonIndex)
}

// CycleCullMode steps the cull mode axis.
func (ps *PipelineSystem) CycleCullMode(step int) {
	ps.cullIndex = wrapIndex(ps.cullIndex+step, len(CullModes))
	core.LogDebug("cull mode -> %d", ps.cullIndex)
}

func (ps *PipelineSystem) PolygonMode() vk.PolygonMode {
	return PolygonModes[ps.polygonIndex]
}

func (ps *PipelineSystem) CullMode() vk.CullModeFlagBits {
	return CullModes[ps.cullIndex]
}

// RequestReload marks the matrix dirty. Safe to call from any goroutine;
// the actual rebuild happens on the frame loop once the device is idle.
func (ps *PipelineSystem) RequestReload() {
	ps.reloadPending.Store(true)
}

// ConsumePendingReload reports whether a rebuild was requested and clears
// the flag.
func (ps *PipelineSystem) ConsumePendingReload() bool {
	return ps.reloadPending.Swap(false)
}

// Update handles the raster state and reload hotkeys: F1 cycles the
// polygon mode, F2 the cull mode, F5 forces a shader reload.
func (ps *PipelineSystem) Update() {
	if core.InputIsKeyPressedThisFrame(core.KEY_F1) {
		ps.CyclePolygonMode(1)
	}
	if core.InputIsKeyPressedThisFrame(core.KEY_F2) {
		ps.CycleCullMode(1)
	}
	if core.InputIsKeyPressedThisFrame(core.KEY_F5) {
		core.LogInfo("manual shader reload requested")
		ps.RequestReload()
	}
}

// Reload rebuilds every matrix entry in place from freshly read shader
// binaries. An entry that fails to rebuild keeps its previous pipeline so
// one broken shader does not take the whole frame loop down. The caller
// must ensure the device is idle.
func (ps *PipelineSystem) Reload() error {
	var firstErr error
	for _, model := range metadata.ShaderModels() {
		for pm := range PolygonModes {
			for cm := range CullModes {
				pipeline := ps.pipelines[model][pm][cm]
				if pipeline == nil {
					continue
				}
				if err := pipeline.Reload(ps.context, ps.configFor(model, pm, cm)); err != nil {
					core.LogError("pipeline %s failed to reload, keeping the previous one", model)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}
	if firstErr == nil {
		core.LogInfo("Pipelines reloaded.")
	}
	return firstErr
}

func (ps *PipelineSystem) Destroy() {
	for model := range ps.pipelines {
		for pm := range ps.pipelines[model] {
			for cm, pipeline := range ps.pipelines[model][pm] {
				if pipeline != nil {
					pipeline.Destroy(ps.context)
					ps.pipelines[model][pm][cm] = nil
				}
			}
		}
	}
}
