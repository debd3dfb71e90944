package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lumo/engine/assets"
	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
	"github.com/spaghettifunk/lumo/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumo/engine/resources"
)

// Font pairs a parsed descriptor with its uploaded atlas texture.
type Font struct {
	ID    uuid.UUID
	Data  *metadata.FontData
	Atlas *vulkan.VulkanTexture
}

// FontSystem loads bitmap fonts and turns strings into renderable glyph
// quad geometry. Text meshes use the text shader model with the font
// atlas as their diffuse texture.
type FontSystem struct {
	context *vulkan.VulkanContext
	assets  *assets.AssetManager

	fonts map[string]*Font
}

func NewFontSystem(context *vulkan.VulkanContext, am *assets.AssetManager) *FontSystem {
	return &FontSystem{
		context: context,
		assets:  am,
		fonts:   make(map[string]*Font),
	}
}

// LoadFont parses the descriptor and uploads the first atlas page. Multi
// page fonts are rejected; every glyph quad samples one atlas.
func (fs *FontSystem) LoadFont(name string) (*Font, error) {
	if font, ok := fs.fonts[name]; ok {
		return font, nil
	}

	data, err := fs.assets.LoadFont(name)
	if err != nil {
		return nil, err
	}
	if len(data.Pages) != 1 {
		err := fmt.Errorf("font %q has %d atlas pages, only single-page fonts are supported", name, len(data.Pages))
		core.LogError(err.Error())
		return nil, err
	}

	page, err := fs.assets.LoadFontPage(data.Pages[0])
	if err != nil {
		return nil, err
	}
	textures, err := vulkan.LoadTextures(fs.context, []*metadata.ImageResourceData{page})
	if err != nil {
		return nil, err
	}

	font := &Font{
		ID:    uuid.New(),
		Data:  data,
		Atlas: textures[0],
	}
	fs.fonts[name] = font
	core.LogInfo("Font %q loaded: %d glyphs.", data.Face, len(data.Glyphs))
	return font, nil
}

// BuildTextGeometry lays out text as one quad per visible glyph. Geometry
// is in pixel units with Y up: the first baseline sits at y=0 and each
// newline moves one line height down. Scale and placement come from the
// instance's model matrix.
func BuildTextGeometry(data *metadata.FontData, text string) *resources.Geometry {
	return buildTextGeometry(data, text)
}

func buildTextGeometry(data *metadata.FontData, text string) *resources.Geometry {
	g := &resources.Geometry{}

	atlasW := float32(data.AtlasSizeX)
	atlasH := float32(data.AtlasSizeY)
	white := math.NewVec3One()
	normal := math.NewVec3(0, 0, 1)

	penX := float32(0)
	penY := float32(0)
	var previous rune

	for _, r := range text {
		if r == '\n' {
			penX = 0
			penY -= float32(data.LineHeight)
			previous = 0
			continue
		}

		glyph, ok := data.Glyphs[r]
		if !ok {
			previous = 0
			continue
		}

		if previous != 0 {
			penX += float32(data.Kernings[[2]rune{previous, r}])
		}

		if glyph.Width > 0 && glyph.Height > 0 {
			x0 := penX + float32(glyph.XOffset)
			y0 := penY - float32(glyph.YOffset)
			x1 := x0 + float32(glyph.Width)
			y1 := y0 - float32(glyph.Height)

			u0 := float32(glyph.X) / atlasW
			v0 := float32(glyph.Y) / atlasH
			u1 := (float32(glyph.X) + float32(glyph.Width)) / atlasW
			v1 := (float32(glyph.Y) + float32(glyph.Height)) / atlasH

			base := uint32(len(g.Vertices))
			g.Vertices = append(g.Vertices,
				metadata.Vertex{Position: math.NewVec3(x0, y1, 0), Color: white, Normal: normal, Texcoord: math.NewVec2(u0, v1)},
				metadata.Vertex{Position: math.NewVec3(x1, y1, 0), Color: white, Normal: normal, Texcoord: math.NewVec2(u1, v1)},
				metadata.Vertex{Position: math.NewVec3(x1, y0, 0), Color: white, Normal: normal, Texcoord: math.NewVec2(u1, v0)},
				metadata.Vertex{Position: math.NewVec3(x0, y0, 0), Color: white, Normal: normal, Texcoord: math.NewVec2(u0, v0)},
			)
			g.Indices = append(g.Indices,
				base, base+1, base+2,
				base, base+2, base+3)
		}

		penX += float32(glyph.XAdvance)
		previous = r
	}
	return g
}

// Shutdown destroys every loaded atlas. The device must be idle.
func (fs *FontSystem) Shutdown() {
	for name, font := range fs.fonts {
		font.Atlas.Destroy(fs.context)
		delete(fs.fonts, name)
	}
}
