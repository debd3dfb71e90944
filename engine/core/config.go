package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings mirrors assets/settings.toml. Every field carries a default so a
// missing file still boots a usable window.
type Settings struct {
	Window   WindowSettings   `toml:"window"`
	Renderer RendererSettings `toml:"renderer"`
	Camera   CameraSettings   `toml:"camera"`
}

type WindowSettings struct {
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
}

type RendererSettings struct {
	// Wireframe starts the pipeline matrix on the LINE polygon mode.
	Wireframe bool `toml:"wireframe"`
	// BackfaceCulling starts the pipeline matrix on the BACK cull mode.
	BackfaceCulling bool `toml:"backface_culling"`
	VSync           bool `toml:"vsync"`
}

type CameraSettings struct {
	// FOV in degrees; converted to radians at camera construction.
	FOV   float64 `toml:"fov"`
	Near  float64 `toml:"near"`
	Far   float64 `toml:"far"`
	Yaw   float64 `toml:"yaw"`
	Pitch float64 `toml:"pitch"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Window: WindowSettings{
			Width:  800,
			Height: 800,
			Title:  "Lumo",
		},
		Renderer: RendererSettings{
			VSync: true,
		},
		Camera: CameraSettings{
			FOV:  60.0,
			Near: 0.1,
			Far:  100.0,
		},
	}
}

// LoadSettings reads the TOML settings file at path. A missing file is not
// an error (defaults are returned); a malformed file is, since silently
// ignoring a typo'd config would be confusing in a lab setting.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			LogWarn("settings file %s not found, using defaults", path)
			return settings, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		err = fmt.Errorf("failed to parse settings file %s: %w", path, err)
		LogError(err.Error())
		return nil, err
	}
	return settings, nil
}
