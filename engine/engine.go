package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/platform"
	"github.com/spaghettifunk/lumo/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine owns the window, the frame loop and the system manager. One
// instance per process; the game plugs into it through its hooks.
type Engine struct {
	currentStage Stage
	gameInstance *Game

	isRunning   bool
	isSuspended bool

	platform      *platform.Platform
	systemManager *systems.SystemManager

	width  uint32
	height uint32

	clock      *core.Clock
	lastTime   float64
	titleAccum float64
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine needs a game instance")
	}
	if g.Settings == nil {
		g.Settings = core.DefaultSettings()
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		platform:     platform.New(),
		clock:        core.NewClock(),
		width:        g.Settings.Window.Width,
		height:       g.Settings.Window.Height,
		isRunning:    true,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.InputInitialize(); err != nil {
		return err
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	settings := e.gameInstance.Settings
	if err := e.platform.Startup(settings.Window.Title, e.width, e.height); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	assetRoot := filepath.Join(wd, "assets")

	sm, err := systems.NewSystemManager(e.platform, settings, assetRoot)
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.gameInstance.Systems = sm

	if e.gameInstance.FnSetup != nil {
		if err := e.gameInstance.FnSetup(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}

		if e.isSuspended {
			e.platform.Sleep(100)
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetAbsoluteTime()

		// Shader binaries that changed on disk since the last frame. The
		// pipeline system has already been notified through the event; this
		// is purely informational.
		for _, path := range e.systemManager.Assets().DrainShaderChanges() {
			core.LogInfo("reloading shaders, %s changed", path)
		}

		if err := e.systemManager.Update(delta); err != nil {
			core.LogError("system update failed: %s", err.Error())
		}

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogFatal("Game update failed, shutting down.")
				e.isRunning = false
				break
			}
		}

		if err := e.systemManager.DrawFrame(delta); err != nil {
			core.LogFatal("frame draw failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}

		frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
		core.MetricsUpdate(frameElapsedTime)
		e.updateWindowTitle(delta)

		// Input state copying happens at the very end of the frame, after
		// anything that wants to read pressed-this-frame edges.
		core.InputUpdate(delta)

		e.lastTime = currentTime
	}

	return nil
}

// updateWindowTitle refreshes the FPS readout in the title bar about once
// a second.
func (e *Engine) updateWindowTitle(delta float64) {
	e.titleAccum += delta
	if e.titleAccum < 1.0 {
		return
	}
	e.titleAccum = 0

	fps, frameTime := core.MetricsFrame()
	e.platform.SetTitle(fmt.Sprintf("%s | %.0f fps %.2f ms",
		e.gameInstance.Settings.Window.Title, fps, frameTime))
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err.Error())
		}
	}

	if e.systemManager != nil {
		e.systemManager.Shutdown()
	}
	e.platform.Shutdown()

	if err := core.InputShutdown(); err != nil {
		return err
	}
	return core.EventShutdown()
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event data associated with the event type `%d`", context.Type)
		return false
	}

	if ke.KeyCode == core.KEY_ESCAPE {
		// Technically firing an event to itself, but there may be other
		// listeners.
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	re, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event data associated with the event type `%d`", context.Type)
		return false
	}

	if re.Width == e.width && re.Height == e.height {
		return false
	}
	e.width = re.Width
	e.height = re.Height
	core.LogDebug("Window resize: %d, %d", re.Width, re.Height)

	// Handle minimization.
	if re.Width == 0 || re.Height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	if e.gameInstance.FnOnResize != nil {
		e.gameInstance.FnOnResize(re.Width, re.Height)
	}
	if err := e.systemManager.OnResize(re.Width, re.Height); err != nil {
		core.LogError(err.Error())
	}
	return false
}
