package engine

import (
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/systems"
)

// Game is what an application hands to the engine: its settings and the
// hooks the frame loop calls. Systems is filled in during engine
// initialization, before FnSetup runs.
type Game struct {
	Settings *core.Settings
	Systems  *systems.SystemManager
	State    interface{}

	// FnSetup builds the scene once every system is up.
	FnSetup Setup
	// FnUpdate runs once per frame before the frame is drawn.
	FnUpdate Update
	// FnOnResize follows framebuffer size changes. Optional.
	FnOnResize OnResize
	// FnShutdown releases game-owned resources. Optional; scene resources
	// registered with the trash registry need no hook.
	FnShutdown Shutdown
}

type Setup func() error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
