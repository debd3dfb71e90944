package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Window.Width != 800 || s.Window.Height != 800 {
		t.Errorf("default window = %dx%d, want 800x800", s.Window.Width, s.Window.Height)
	}
	if !s.Renderer.VSync {
		t.Error("vsync should default on")
	}
	if s.Renderer.Wireframe || s.Renderer.BackfaceCulling {
		t.Error("raster toggles should default off")
	}
	if s.Camera.FOV != 60.0 || s.Camera.Near != 0.1 || s.Camera.Far != 100.0 {
		t.Errorf("default camera = %+v", s.Camera)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing settings file should not be an error, got %v", err)
	}
	if s.Window.Title != DefaultSettings().Window.Title {
		t.Error("missing file should fall back to defaults")
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `
[window]
width = 1920
height = 1080
title = "Lab"

[renderer]
wireframe = true
vsync = false

[camera]
fov = 45.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Window.Width != 1920 || s.Window.Height != 1080 || s.Window.Title != "Lab" {
		t.Errorf("window = %+v", s.Window)
	}
	if !s.Renderer.Wireframe || s.Renderer.VSync {
		t.Errorf("renderer = %+v", s.Renderer)
	}
	if s.Camera.FOV != 45.0 {
		t.Errorf("fov = %v, want 45", s.Camera.FOV)
	}
	// Fields the file omits keep their defaults.
	if s.Camera.Near != 0.1 || s.Camera.Far != 100.0 {
		t.Errorf("camera planes = %v/%v, want defaults", s.Camera.Near, s.Camera.Far)
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("[window\nwidth = oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Error("malformed settings file should be an error")
	}
}
