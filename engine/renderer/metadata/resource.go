package metadata

// ResourceType classifies what an asset on disk decodes into.
type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeImage
	ResourceTypeShader
	ResourceTypeBitmapFont
)

/**
 * @brief Decoded image pixels plus the full CPU-generated mip chain.
 * Every level is tightly packed RGBA8; level 0 is the base image and
 * each following level halves width and height (clamped to 1).
 */
type ImageResourceData struct {
	Width        uint32
	Height       uint32
	ChannelCount uint32
	// MipLevels[i] holds MipExtent(w,h,i) pixels, 4 bytes each.
	MipLevels [][]byte
}

// MipLevelCount returns 1 + floor(log2(max(width, height))): the length of
// the chain that ends in a 1x1 level. Zero extents count as one level.
func MipLevelCount(width, height uint32) uint32 {
	largest := width
	if height > largest {
		largest = height
	}
	levels := uint32(1)
	for largest > 1 {
		largest >>= 1
		levels++
	}
	return levels
}

// MipExtent returns the dimensions of the given mip level, each axis halved
// per level and clamped to 1.
func MipExtent(width, height, level uint32) (uint32, uint32) {
	w := width >> level
	h := height >> level
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

/** @brief A single glyph of a bitmap font, in atlas pixel coordinates. */
type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

/** @brief Parsed bitmap font: glyph table, kerning pairs and atlas pages. */
type FontData struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     map[rune]*FontGlyph
	// Kernings maps a [first, second] codepoint pair to the horizontal
	// adjustment applied between them.
	Kernings map[[2]rune]int16
	// Pages holds the atlas image file names, indexed by page id.
	Pages []string
}
