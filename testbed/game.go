package testbed

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/lumo/engine"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumo/engine/resources"
	"github.com/spaghettifunk/lumo/engine/systems"
)

// TestGame is the demo scene: a Cornell box with one object per shading
// model inside it, an environment cube map and a HUD text readout.
type TestGame struct {
	*engine.Game
}

type gameState struct {
	cubeID   uuid.UUID
	sphereID uuid.UUID
	tubeID   uuid.UUID

	spin float32
}

func NewTestGame() (*TestGame, error) {
	settings, err := core.LoadSettings("assets/settings.toml")
	if err != nil {
		return nil, err
	}

	tg := &TestGame{
		Game: &engine.Game{
			Settings: settings,
			State:    &gameState{},
		},
	}

	tg.FnSetup = tg.Setup
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize

	return tg, nil
}

func (g *TestGame) Setup() error {
	scene := g.Systems.Scene()
	textures := g.Systems.Textures()
	state := g.State.(*gameState)

	if err := scene.SetDirectionalLight(systems.DirectionalLightBlock{
		Direction: math.NewVec4(-0.3, -1, -0.4, 0),
		Color:     math.NewVec4(0.9, 0.9, 0.85, 1),
	}); err != nil {
		return err
	}
	if err := scene.SetPointLight(systems.PointLightBlock{
		Position:    math.NewVec4(0, 1.6, 0, 1),
		Color:       math.NewVec4(1, 0.95, 0.8, 1),
		Attenuation: math.NewVec4(1, 0.14, 0.07, 0),
	}); err != nil {
		return err
	}

	// An environment map is optional; without one the generated fallback
	// cube stays bound.
	if cube, err := textures.AcquireCube("skybox"); err == nil {
		scene.SetEnvironment(cube)
	} else {
		core.LogWarn("no skybox textures found, using the fallback environment")
	}

	// The Cornell box encloses the scene. Vertex colors carry the wall
	// colors, so the flat-shaded box model is enough.
	box, err := scene.AddMesh(resources.NewCornellBoxGeometry(4))
	if err != nil {
		return err
	}
	if _, _, err := scene.AddInstance(box, metadata.ShaderModelBox, nil); err != nil {
		return err
	}

	// A textured spinning cube, Phong shaded.
	cube, err := scene.AddMesh(resources.NewCubeGeometry(0.8, 0.8, 0.8))
	if err != nil {
		return err
	}
	cubeInstance, cubeID, err := scene.AddInstance(cube, metadata.ShaderModelPhong, textures.Acquire("crate"))
	if err != nil {
		return err
	}
	state.cubeID = cubeID
	if err := g.placeInstance(cubeInstance, math.NewVec3(-1, -1.5, 0.5), 0); err != nil {
		return err
	}

	// A PBR sphere.
	sphere, err := scene.AddMesh(resources.NewSphereGeometry(0.5, 24, 48))
	if err != nil {
		return err
	}
	sphereInstance, sphereID, err := scene.AddInstance(sphere, metadata.ShaderModelPBR, nil)
	if err != nil {
		return err
	}
	state.sphereID = sphereID
	block := sphereInstance.Block()
	block.Model = math.NewMat4Translation(math.NewVec3(1.1, -1.4, -0.6))
	// metallic, roughness, ambient occlusion
	block.MaterialFactors = math.NewVec4(0.9, 0.25, 1, 0)
	if err := sphereInstance.SetUniforms(g.Systems.Renderer().Context(), block); err != nil {
		return err
	}

	// A Gouraud cylinder.
	cylinder, err := scene.AddMesh(resources.NewCylinderGeometry(0.35, 1.2, 32))
	if err != nil {
		return err
	}
	cylinderInstance, _, err := scene.AddInstance(cylinder, metadata.ShaderModelGouraud, nil)
	if err != nil {
		return err
	}
	if err := g.placeInstance(cylinderInstance, math.NewVec3(0.2, -1.4, 1), 0); err != nil {
		return err
	}

	// A swept Bezier tube arcing through the box.
	curve := &resources.BezierCurve{ControlPoints: []math.Vec3{
		math.NewVec3(-1.6, -1.8, -1.2),
		math.NewVec3(-1.2, 1.6, -0.8),
		math.NewVec3(1.4, 1.8, 0.6),
		math.NewVec3(1.6, -1.6, 1.2),
	}}
	tube, err := scene.AddMesh(resources.NewBezierTubeGeometry(curve, 48, 12, 0.08))
	if err != nil {
		return err
	}
	tubeInstance, tubeID, err := scene.AddInstance(tube, metadata.ShaderModelPhong, nil)
	if err != nil {
		return err
	}
	state.tubeID = tubeID
	tubeBlock := tubeInstance.Block()
	tubeBlock.Color = math.NewVec4(0.95, 0.6, 0.1, 1)
	if err := tubeInstance.SetUniforms(g.Systems.Renderer().Context(), tubeBlock); err != nil {
		return err
	}

	if err := g.setupHUD(); err != nil {
		core.LogWarn("HUD disabled: %s", err.Error())
	}

	core.LogInfo("Testbed scene ready: %d instances.", len(scene.Instances()))
	return nil
}

// setupHUD builds the controls overlay out of bitmap font glyph quads.
// Missing font assets only cost the overlay, not the scene.
func (g *TestGame) setupHUD() error {
	font, err := g.Systems.Fonts().LoadFont("ubuntu_mono")
	if err != nil {
		return err
	}

	text := "drag: orbit  wheel: zoom\nF1: polygon  F2: cull  F5: reload shaders"
	geometry := systems.BuildTextGeometry(font.Data, text)
	mesh, err := g.Systems.Scene().AddMesh(geometry)
	if err != nil {
		return err
	}

	instance, _, err := g.Systems.Scene().AddInstance(mesh, metadata.ShaderModelText, font.Atlas)
	if err != nil {
		return err
	}

	// Glyph quads are in pixels; shrink them into the world and pin the
	// block to the top-left of the box opening.
	const glyphScale = 0.004
	block := instance.Block()
	block.Model = math.NewMat4Scale(math.NewVec3(glyphScale, glyphScale, glyphScale)).
		Mul(math.NewMat4Translation(math.NewVec3(-1.8, 2.2, 2)))
	block.Color = math.NewVec4(1, 1, 0.6, 1)
	return instance.SetUniforms(g.Systems.Renderer().Context(), block)
}

func (g *TestGame) placeInstance(instance *vulkan.VulkanMeshInstance, position math.Vec3, yaw float32) error {
	block := instance.Block()
	block.Model = math.NewMat4EulerY(yaw).Mul(math.NewMat4Translation(position))
	return instance.SetUniforms(g.Systems.Renderer().Context(), block)
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.spin += float32(deltaTime) * 0.8

	scene := g.Systems.Scene()
	if instance, ok := scene.Instance(state.cubeID); ok {
		if err := g.placeInstance(instance, math.NewVec3(-1, -1.5, 0.5), state.spin); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	core.LogDebug("testbed sees new framebuffer size %dx%d", width, height)
	return nil
}
