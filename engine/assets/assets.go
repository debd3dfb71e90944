package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumo/engine/assets/loaders"
	"github.com/spaghettifunk/lumo/engine/containers"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// How many shader-change notifications may pile up between frames before
// extras are dropped. One is enough to trigger a reload.
const shaderChangeQueueSize = 64

// AssetManager resolves asset paths under one root, decodes images and
// fonts, and watches the tree for changed shader binaries. Changes arrive
// on the watcher goroutine; the frame loop drains them with
// DrainShaderChanges.
type AssetManager struct {
	root string

	imageLoader *loaders.ImageLoader
	fontLoader  *loaders.FontLoader

	watcher        *fsnotify.Watcher
	changedShaders *containers.RingQueue[string]
	mu             sync.Mutex
	done           chan struct{}
}

func NewAssetManager() *AssetManager {
	return &AssetManager{
		imageLoader:    loaders.NewImageLoader(),
		fontLoader:     loaders.NewFontLoader(),
		changedShaders: containers.NewRingQueue[string](shaderChangeQueueSize),
	}
}

func (am *AssetManager) Initialize(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		err := fmt.Errorf("asset root %s is not a directory", root)
		core.LogError(err.Error())
		return err
	}
	am.root = root

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err := fmt.Errorf("failed to create asset watcher: %w", err)
		core.LogError(err.Error())
		return err
	}
	am.watcher = watcher
	am.done = make(chan struct{})

	// Watch the whole tree; fsnotify does not recurse on its own.
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		err := fmt.Errorf("failed to watch asset tree: %w", err)
		core.LogError(err.Error())
		return err
	}

	go am.watch()

	core.LogInfo("Asset manager initialized with root %s.", root)
	return nil
}

func (am *AssetManager) watch() {
	for {
		select {
		case <-am.done:
			return
		case event, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".spv" {
				continue
			}
			am.mu.Lock()
			err := am.changedShaders.Enqueue(event.Name)
			am.mu.Unlock()
			if err != nil {
				// Queue full; a reload is already pending.
				continue
			}
			core.LogDebug("shader binary changed on disk: %s", event.Name)
			core.EventFire(core.EventContext{
				Type: core.EVENT_CODE_SHADER_CHANGED,
				Data: &core.ShaderChangedEvent{Path: event.Name},
			})
		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("asset watcher error: %s", err.Error())
		}
	}
}

// DrainShaderChanges returns the shader paths that changed since the last
// call. An empty result means no reload is needed.
func (am *AssetManager) DrainShaderChanges() []string {
	am.mu.Lock()
	defer am.mu.Unlock()

	var changed []string
	for !am.changedShaders.IsEmpty() {
		path, err := am.changedShaders.Dequeue()
		if err != nil {
			break
		}
		changed = append(changed, path)
	}
	return changed
}

// ShaderPath resolves the on-disk SPIR-V binary for a shader model and
// stage ("vert" or "frag").
func (am *AssetManager) ShaderPath(model metadata.ShaderModel, stage string) string {
	return filepath.Join(am.root, "shaders", fmt.Sprintf("%s.%s.spv", model, stage))
}

// TexturePath resolves a texture file name under the asset root. Names
// without an extension default to PNG.
func (am *AssetManager) TexturePath(name string) string {
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return filepath.Join(am.root, "textures", name)
}

func (am *AssetManager) FontPath(name string) string {
	if filepath.Ext(name) == "" {
		name += ".fnt"
	}
	return filepath.Join(am.root, "fonts", name)
}

// LoadImage decodes a texture by name, mip chain included.
func (am *AssetManager) LoadImage(name string) (*metadata.ImageResourceData, error) {
	return am.imageLoader.Load(am.TexturePath(name))
}

// LoadFontPage decodes a font atlas page referenced from a descriptor.
// Pages live next to their .fnt file.
func (am *AssetManager) LoadFontPage(file string) (*metadata.ImageResourceData, error) {
	return am.imageLoader.Load(filepath.Join(am.root, "fonts", file))
}

// LoadFont parses a bitmap font descriptor by name.
func (am *AssetManager) LoadFont(name string) (*metadata.FontData, error) {
	return am.fontLoader.Load(am.FontPath(name))
}

func (am *AssetManager) Shutdown() {
	if am.done != nil {
		close(am.done)
		am.done = nil
	}
	if am.watcher != nil {
		am.watcher.Close()
		am.watcher = nil
	}
	core.LogInfo("Asset manager shut down.")
}
