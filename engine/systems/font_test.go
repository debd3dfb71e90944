package systems

import (
	"testing"

	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

func fontDataForTest() *metadata.FontData {
	glyph := func(r rune, x, y, w, h uint16, advance int16) *metadata.FontGlyph {
		return &metadata.FontGlyph{
			Codepoint: r,
			X:         x, Y: y, Width: w, Height: h,
			XOffset: 1, YOffset: 2, XAdvance: advance,
		}
	}
	return &metadata.FontData{
		Face:       "testface",
		Size:       16,
		LineHeight: 20,
		Baseline:   16,
		AtlasSizeX: 128,
		AtlasSizeY: 128,
		Glyphs: map[rune]*metadata.FontGlyph{
			'A': glyph('A', 0, 0, 10, 12, 11),
			'V': glyph('V', 16, 0, 10, 12, 11),
			' ': glyph(' ', 0, 32, 0, 0, 6),
		},
		Kernings: map[[2]rune]int16{
			{'A', 'V'}: -2,
		},
		Pages: []string{"testface_0.png"},
	}
}

func TestBuildTextGeometryQuadPerVisibleGlyph(t *testing.T) {
	data := fontDataForTest()
	g := buildTextGeometry(data, "A A")

	// The space advances the pen but emits no quad.
	if len(g.Vertices) != 8 {
		t.Errorf("vertex count = %d, want 8 (two quads)", len(g.Vertices))
	}
	if len(g.Indices) != 12 {
		t.Errorf("index count = %d, want 12", len(g.Indices))
	}

	// Second 'A' starts one advance plus one space advance to the right.
	firstX := g.Vertices[0].Position.X
	secondX := g.Vertices[4].Position.X
	if secondX-firstX != 17 {
		t.Errorf("second glyph offset = %v, want 17 (11 + 6)", secondX-firstX)
	}
}

func TestBuildTextGeometryAppliesKerning(t *testing.T) {
	data := fontDataForTest()

	plain := buildTextGeometry(data, "AA")
	kerned := buildTextGeometry(data, "AV")

	plainOffset := plain.Vertices[4].Position.X - plain.Vertices[0].Position.X
	kernedOffset := kerned.Vertices[4].Position.X - kerned.Vertices[0].Position.X
	if kernedOffset != plainOffset-2 {
		t.Errorf("kerned offset = %v, want %v", kernedOffset, plainOffset-2)
	}
}

func TestBuildTextGeometryNewlineResetsPen(t *testing.T) {
	data := fontDataForTest()
	g := buildTextGeometry(data, "A\nA")

	if len(g.Vertices) != 8 {
		t.Fatalf("vertex count = %d, want 8", len(g.Vertices))
	}

	// Same X, one line height lower.
	if g.Vertices[4].Position.X != g.Vertices[0].Position.X {
		t.Errorf("second line X = %v, want %v", g.Vertices[4].Position.X, g.Vertices[0].Position.X)
	}
	if diff := g.Vertices[0].Position.Y - g.Vertices[4].Position.Y; diff != 20 {
		t.Errorf("line spacing = %v, want the line height 20", diff)
	}
}

func TestBuildTextGeometryUVsInsideAtlas(t *testing.T) {
	data := fontDataForTest()
	g := buildTextGeometry(data, "AV")

	for i, v := range g.Vertices {
		if v.Texcoord.X < 0 || v.Texcoord.X > 1 || v.Texcoord.Y < 0 || v.Texcoord.Y > 1 {
			t.Errorf("vertex %d texcoord %v outside [0,1]", i, v.Texcoord)
		}
	}

	// 'V' samples a different atlas region than 'A'.
	if g.Vertices[0].Texcoord.X == g.Vertices[4].Texcoord.X {
		t.Error("distinct glyphs should sample distinct atlas regions")
	}
}

func TestBuildTextGeometrySkipsUnknownRunes(t *testing.T) {
	data := fontDataForTest()
	g := buildTextGeometry(data, "AéA")

	if len(g.Vertices) != 8 {
		t.Errorf("vertex count = %d, want 8 (unknown rune dropped)", len(g.Vertices))
	}
}
