package systems

import (
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lumo/engine/assets"
	"github.com/spaghettifunk/lumo/engine/assets/loaders"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
)

// DefaultTextureName keys the generated fallback texture in the registry.
const DefaultTextureName = "default"

const defaultTextureDimension = 256

// Cube map face file suffixes, in the +X, -X, +Y, -Y, +Z, -Z layer order
// the upload expects: right, left, up, down, front, back.
var cubeFaceSuffixes = [6]string{"_r", "_l", "_u", "_d", "_f", "_b"}

// TextureEntry is a loaded texture and the identity it keeps for its whole
// lifetime.
type TextureEntry struct {
	ID      uuid.UUID
	Name    string
	Texture *vulkan.VulkanTexture
}

// TextureSystem loads textures through the asset manager, uploads them
// once and hands out shared references by name. A missing file falls back
// to a generated checkerboard so a typo'd texture name shows up on screen
// instead of crashing the scene.
type TextureSystem struct {
	context *vulkan.VulkanContext
	assets  *assets.AssetManager

	registry map[string]*TextureEntry

	defaultTexture *vulkan.VulkanTexture
	defaultCube    *vulkan.VulkanTexture
}

func NewTextureSystem(context *vulkan.VulkanContext, am *assets.AssetManager) (*TextureSystem, error) {
	ts := &TextureSystem{
		context:  context,
		assets:   am,
		registry: make(map[string]*TextureEntry),
	}

	checkerboard := checkerboardImageData()
	textures, err := vulkan.LoadTextures(context, []*metadata.ImageResourceData{checkerboard})
	if err != nil {
		return nil, err
	}
	ts.defaultTexture = textures[0]
	ts.registry[DefaultTextureName] = &TextureEntry{
		ID:      uuid.New(),
		Name:    DefaultTextureName,
		Texture: ts.defaultTexture,
	}

	faces := make([]*metadata.ImageResourceData, 6)
	for i := range faces {
		faces[i] = checkerboard
	}
	cube, err := vulkan.LoadCubeMap(context, faces)
	if err != nil {
		ts.Shutdown()
		return nil, err
	}
	ts.defaultCube = cube

	core.LogInfo("Texture system initialized.")
	return ts, nil
}

// checkerboardImageData generates the fallback pattern: a blue and white
// checkerboard with a full mip chain.
func checkerboardImageData() *metadata.ImageResourceData {
	const squares = 8
	const squareSize = defaultTextureDimension / squares

	img := image.NewRGBA(image.Rect(0, 0, defaultTextureDimension, defaultTextureDimension))
	blue := color.RGBA{R: 0, G: 64, B: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < defaultTextureDimension; y++ {
		for x := 0; x < defaultTextureDimension; x++ {
			if (x/squareSize+y/squareSize)%2 == 0 {
				img.SetRGBA(x, y, white)
			} else {
				img.SetRGBA(x, y, blue)
			}
		}
	}

	return &metadata.ImageResourceData{
		Width:        defaultTextureDimension,
		Height:       defaultTextureDimension,
		ChannelCount: 4,
		MipLevels:    loaders.BuildMipChain(img),
	}
}

// Default returns the generated checkerboard texture.
func (ts *TextureSystem) Default() *vulkan.VulkanTexture {
	return ts.defaultTexture
}

// DefaultCube returns the generated fallback cube map, used as the
// environment until a real one is acquired.
func (ts *TextureSystem) DefaultCube() *vulkan.VulkanTexture {
	return ts.defaultCube
}

// Acquire returns the texture registered under name, loading and
// uploading it on first use. On a load failure the default texture is
// returned so rendering continues.
func (ts *TextureSystem) Acquire(name string) *vulkan.VulkanTexture {
	if entry, ok := ts.registry[name]; ok {
		return entry.Texture
	}

	data, err := ts.assets.LoadImage(name)
	if err != nil {
		core.LogWarn("texture %q could not be loaded, using the default", name)
		return ts.defaultTexture
	}

	textures, err := vulkan.LoadTextures(ts.context, []*metadata.ImageResourceData{data})
	if err != nil {
		core.LogWarn("texture %q could not be uploaded, using the default", name)
		return ts.defaultTexture
	}

	entry := &TextureEntry{ID: uuid.New(), Name: name, Texture: textures[0]}
	ts.registry[name] = entry
	core.LogDebug("texture %q acquired with id %s", name, entry.ID)
	return entry.Texture
}

// AcquireCube loads the six faces name_r, name_l, name_u, name_d, name_f,
// name_b into one cube map. Unlike Acquire there is no silent fallback; an
// environment map is always requested deliberately.
func (ts *TextureSystem) AcquireCube(name string) (*vulkan.VulkanTexture, error) {
	if entry, ok := ts.registry[name]; ok {
		return entry.Texture, nil
	}

	faces := make([]*metadata.ImageResourceData, len(cubeFaceSuffixes))
	for i, suffix := range cubeFaceSuffixes {
		data, err := ts.assets.LoadImage(name + suffix)
		if err != nil {
			return nil, err
		}
		faces[i] = data
	}

	cube, err := vulkan.LoadCubeMap(ts.context, faces)
	if err != nil {
		return nil, err
	}

	entry := &TextureEntry{ID: uuid.New(), Name: name, Texture: cube}
	ts.registry[name] = entry
	core.LogDebug("cube map %q acquired with id %s", name, entry.ID)
	return cube, nil
}

// Release destroys the texture registered under name. The default texture
// cannot be released; other systems may still fall back to it.
func (ts *TextureSystem) Release(name string) {
	if name == DefaultTextureName {
		return
	}
	entry, ok := ts.registry[name]
	if !ok {
		return
	}
	delete(ts.registry, name)
	entry.Texture.Destroy(ts.context)
}

// Shutdown destroys every registered texture. The device must be idle.
func (ts *TextureSystem) Shutdown() {
	for name, entry := range ts.registry {
		entry.Texture.Destroy(ts.context)
		delete(ts.registry, name)
	}
	if ts.defaultCube != nil {
		ts.defaultCube.Destroy(ts.context)
		ts.defaultCube = nil
	}
	ts.defaultTexture = nil
	core.LogInfo("Texture system shut down.")
}
