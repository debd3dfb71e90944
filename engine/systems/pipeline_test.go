package systems

import (
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/assets"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
)

func pipelineSystemForTest() *PipelineSystem {
	ps := &PipelineSystem{assets: assets.NewAssetManager()}
	for _, model := range metadata.ShaderModels() {
		for pm := range PolygonModes {
			for cm := range CullModes {
				ps.pipelines[model][pm][cm] = &vulkan.VulkanPipeline{}
			}
		}
	}
	return ps
}

func TestSelectedIndexesTheMatrix(t *testing.T) {
	ps := pipelineSystemForTest()

	seen := make(map[*vulkan.VulkanPipeline]metadata.ShaderModel)
	for _, model := range metadata.ShaderModels() {
		pipeline := ps.Selected(model)
		if pipeline == nil {
			t.Fatalf("Selected(%s) = nil", model)
		}
		if other, dup := seen[pipeline]; dup {
			t.Errorf("Selected(%s) and Selected(%s) share one pipeline", model, other)
		}
		seen[pipeline] = model
	}

	// Cycling an axis reselects a different entry of the same model.
	before := ps.Selected(metadata.ShaderModelPhong)
	ps.CycleCullMode(1)
	if ps.Selected(metadata.ShaderModelPhong) == before {
		t.Error("cycling the cull mode should select a different pipeline")
	}

	// Out-of-range models fall back instead of panicking.
	if got := ps.Selected(metadata.ShaderModelCount); got != ps.Selected(metadata.ShaderModelBox) {
		t.Error("out-of-range model should fall back to the box pipeline")
	}
}

func TestCyclePolygonModeWrapsBothWays(t *testing.T) {
	ps := pipelineSystemForTest()

	if ps.PolygonMode() != vk.PolygonModeFill {
		t.Fatalf("initial polygon mode = %v, want FILL", ps.PolygonMode())
	}

	ps.CyclePolygonMode(1)
	if ps.PolygonMode() != vk.PolygonModeLine {
		t.Errorf("after one step: %v, want LINE", ps.PolygonMode())
	}
	ps.CyclePolygonMode(1)
	if ps.PolygonMode() != vk.PolygonModeFill {
		t.Errorf("after wrap: %v, want FILL", ps.PolygonMode())
	}
	ps.CyclePolygonMode(-1)
	if ps.PolygonMode() != vk.PolygonModeLine {
		t.Errorf("after backwards step: %v, want LINE", ps.PolygonMode())
	}
}

func TestCycleCullModeWrapsBothWays(t *testing.T) {
	ps := pipelineSystemForTest()

	want := []vk.CullModeFlagBits{vk.CullModeBackBit, vk.CullModeFrontBit, vk.CullModeNone}
	for i, mode := range want {
		ps.CycleCullMode(1)
		if ps.CullMode() != mode {
			t.Errorf("step %d: cull mode = %v, want %v", i+1, ps.CullMode(), mode)
		}
	}

	ps.CycleCullMode(-1)
	if ps.CullMode() != vk.CullModeFrontBit {
		t.Errorf("backwards from NONE: %v, want FRONT", ps.CullMode())
	}
}

func TestCyclingDoesNotScheduleReload(t *testing.T) {
	ps := pipelineSystemForTest()

	ps.CyclePolygonMode(1)
	ps.CycleCullMode(1)
	if ps.ConsumePendingReload() {
		t.Error("cycling raster state only reselects, it must not rebuild")
	}

	ps.RequestReload()
	if !ps.ConsumePendingReload() {
		t.Error("an explicit reload request should be pending")
	}
	if ps.ConsumePendingReload() {
		t.Error("consuming the reload flag should clear it")
	}
}

func TestWrapIndex(t *testing.T) {
	cases := []struct {
		index, count, want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 0},
		{-1, 3, 2},
		{-4, 3, 2},
		{7, 2, 1},
	}
	for _, c := range cases {
		if got := wrapIndex(c.index, c.count); got != c.want {
			t.Errorf("wrapIndex(%d, %d) = %d, want %d", c.index, c.count, got, c.want)
		}
	}
}

func TestConfigForTextVariant(t *testing.T) {
	ps := pipelineSystemForTest()

	phong := ps.configFor(metadata.ShaderModelPhong, 0, 1)
	if !phong.DepthTest || phong.AlphaBlend {
		t.Errorf("phong config: DepthTest=%v AlphaBlend=%v, want true/false", phong.DepthTest, phong.AlphaBlend)
	}
	if phong.CullMode != vk.CullModeBackBit {
		t.Errorf("phong cull mode = %v, want BACK", phong.CullMode)
	}

	text := ps.configFor(metadata.ShaderModelText, 0, 1)
	if text.DepthTest || !text.AlphaBlend {
		t.Errorf("text config: DepthTest=%v AlphaBlend=%v, want false/true", text.DepthTest, text.AlphaBlend)
	}
	if text.CullMode != vk.CullModeNone {
		t.Error("text always draws both faces")
	}
}

func TestSettingsSelectInitialIndices(t *testing.T) {
	ps := pipelineSystemForTest()

	// Mirrors what NewPipelineSystem does with the renderer settings.
	ps.polygonIndex = 1
	ps.cullIndex = 1

	if ps.PolygonMode() != vk.PolygonModeLine {
		t.Errorf("wireframe setting should start on LINE, got %v", ps.PolygonMode())
	}
	if ps.CullMode() != vk.CullModeBackBit {
		t.Errorf("backface culling setting should start on BACK, got %v", ps.CullMode())
	}
}
