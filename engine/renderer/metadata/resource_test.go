package metadata

import "testing"

func TestMipLevelCount(t *testing.T) {
	cases := []struct {
		width, height uint32
		want          uint32
	}{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{512, 256, 10},
		{256, 512, 10},
		{640, 480, 10},
		{1, 1024, 11},
		{3, 3, 2},
	}
	for _, c := range cases {
		got := MipLevelCount(c.width, c.height)
		if got != c.want {
			t.Errorf("MipLevelCount(%d, %d) = %d, want %d", c.width, c.height, got, c.want)
		}
	}
}

func TestMipExtentClampsToOne(t *testing.T) {
	w, h := MipExtent(512, 64, 0)
	if w != 512 || h != 64 {
		t.Errorf("level 0 should keep base extent, got %dx%d", w, h)
	}
	w, h = MipExtent(512, 64, 7)
	if w != 4 || h != 1 {
		t.Errorf("level 7 of 512x64 should be 4x1, got %dx%d", w, h)
	}
	w, h = MipExtent(512, 64, 9)
	if w != 1 || h != 1 {
		t.Errorf("last level should clamp to 1x1, got %dx%d", w, h)
	}
}

func TestMipChainEndsAtOneByOne(t *testing.T) {
	width, height := uint32(640), uint32(480)
	levels := MipLevelCount(width, height)
	w, h := MipExtent(width, height, levels-1)
	if w != 1 || h != 1 {
		t.Errorf("final level %d should be 1x1, got %dx%d", levels-1, w, h)
	}
	if levels > 1 {
		w, h = MipExtent(width, height, levels-2)
		if w == 1 && h == 1 {
			t.Errorf("level %d is already 1x1, chain has a redundant tail", levels-2)
		}
	}
}

func TestVertexSize(t *testing.T) {
	// Three Vec3 plus one Vec2, tightly packed float32s.
	if VertexSize != 44 {
		t.Errorf("VertexSize = %d, want 44", VertexSize)
	}
}

func TestShaderModelNames(t *testing.T) {
	if ShaderModelPhong.String() != "phong" {
		t.Errorf("unexpected name %q", ShaderModelPhong.String())
	}
	if ShaderModel(99).String() != "unknown" {
		t.Errorf("out-of-range model should stringify as unknown")
	}
	if len(ShaderModels()) != int(ShaderModelCount) {
		t.Errorf("ShaderModels should enumerate all %d models", ShaderModelCount)
	}
}
