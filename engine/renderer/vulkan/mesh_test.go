package vulkan

import (
	"encoding/binary"
	gomath "math"
	"testing"
	"unsafe"

	"github.com/spaghettifunk/lumo/engine/math"
)

func TestMeshInstanceUniformBlockLayout(t *testing.T) {
	var block VulkanMeshInstanceUniformBlock
	if size := unsafe.Sizeof(block); size != 96 {
		t.Fatalf("uniform block is %d bytes, want 96", size)
	}
	if off := unsafe.Offsetof(block.Color); off != 0 {
		t.Errorf("Color offset = %d, want 0", off)
	}
	if off := unsafe.Offsetof(block.Model); off != 16 {
		t.Errorf("Model offset = %d, want 16", off)
	}
	if off := unsafe.Offsetof(block.MaterialFactors); off != 80 {
		t.Errorf("MaterialFactors offset = %d, want 80", off)
	}
}

func TestMeshInstanceUniformBlockDefaults(t *testing.T) {
	block := NewVulkanMeshInstanceUniformBlock()
	if block.Color != (math.Vec4{X: 1, Y: 1, Z: 1, W: 1}) {
		t.Errorf("default color should be opaque white, got %+v", block.Color)
	}
	identity := math.NewMat4Identity()
	if block.Model != identity {
		t.Errorf("default model matrix should be identity")
	}
}

func TestMeshInstanceUniformBlockBytes(t *testing.T) {
	block := NewVulkanMeshInstanceUniformBlock()
	block.Color = math.Vec4{X: 0.25, Y: 0.5, Z: 0.75, W: 1}

	data := RawBytes(unsafe.Pointer(&block), int(unsafe.Sizeof(block)))
	if len(data) != 96 {
		t.Fatalf("raw block is %d bytes, want 96", len(data))
	}

	first := gomath.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	if first != 0.25 {
		t.Errorf("first float = %f, want 0.25 (Color.X)", first)
	}
	// Model matrix diagonal starts at byte 16.
	m00 := gomath.Float32frombits(binary.LittleEndian.Uint32(data[16:20]))
	if m00 != 1 {
		t.Errorf("Model[0][0] = %f, want 1", m00)
	}
}

func TestMeshInstanceShaderSelection(t *testing.T) {
	mi := NewVulkanMeshInstance(nil, 2)
	if mi.Shader() != 2 {
		t.Errorf("Shader() = %d, want 2", mi.Shader())
	}
	mi.SetShader(4)
	if mi.Shader() != 4 {
		t.Errorf("Shader() after SetShader = %d, want 4", mi.Shader())
	}
}

func TestVertexInputAttributesMatchVertexLayout(t *testing.T) {
	attrs := VertexInputAttributes()
	if len(attrs) != 4 {
		t.Fatalf("expected 4 vertex attributes, got %d", len(attrs))
	}
	wantOffsets := []uint32{0, 12, 24, 36}
	for i, attr := range attrs {
		if attr.Location != uint32(i) {
			t.Errorf("attribute %d has location %d", i, attr.Location)
		}
		if attr.Offset != wantOffsets[i] {
			t.Errorf("attribute %d offset = %d, want %d", i, attr.Offset, wantOffsets[i])
		}
		if attr.Binding != 0 {
			t.Errorf("attribute %d should use binding 0", i)
		}
	}
}
