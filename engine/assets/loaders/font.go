package loaders

import (
	"fmt"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// FontLoader parses AngelCode .fnt descriptors into the engine's font
// tables. The atlas pages themselves go through the image loader.
type FontLoader struct{}

func NewFontLoader() *FontLoader {
	return &FontLoader{}
}

func (fl *FontLoader) Load(path string) (*metadata.FontData, error) {
	descriptor, err := bmfont.LoadDescriptor(path)
	if err != nil {
		err := fmt.Errorf("failed to load font %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	data := &metadata.FontData{
		Face:       descriptor.Info.Face,
		Size:       uint32(descriptor.Info.Size),
		LineHeight: int32(descriptor.Common.LineHeight),
		Baseline:   int32(descriptor.Common.Base),
		AtlasSizeX: int32(descriptor.Common.ScaleW),
		AtlasSizeY: int32(descriptor.Common.ScaleH),
		Glyphs:     make(map[rune]*metadata.FontGlyph, len(descriptor.Chars)),
		Kernings:   make(map[[2]rune]int16, len(descriptor.Kerning)),
		Pages:      make([]string, len(descriptor.Pages)),
	}

	for _, page := range descriptor.Pages {
		if page.ID < 0 || page.ID >= len(data.Pages) {
			err := fmt.Errorf("font %s has an out-of-range page id %d", path, page.ID)
			core.LogError(err.Error())
			return nil, err
		}
		data.Pages[page.ID] = page.File
	}

	for _, char := range descriptor.Chars {
		data.Glyphs[char.ID] = &metadata.FontGlyph{
			Codepoint: char.ID,
			X:         uint16(char.X),
			Y:         uint16(char.Y),
			Width:     uint16(char.Width),
			Height:    uint16(char.Height),
			XOffset:   int16(char.XOffset),
			YOffset:   int16(char.YOffset),
			XAdvance:  int16(char.XAdvance),
			PageID:    uint8(char.Page),
		}
	}

	for pair, kerning := range descriptor.Kerning {
		data.Kernings[[2]rune{pair.First, pair.Second}] = int16(kerning.Amount)
	}

	core.LogDebug("loaded font %q: %d glyphs, %d kerning pairs", data.Face, len(data.Glyphs), len(data.Kernings))
	return data, nil
}
