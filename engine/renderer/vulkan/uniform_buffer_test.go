package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

func TestAlignUp(t *testing.T) {
	cases := []struct {
		size, alignment, want vk.DeviceSize
	}{
		{0, 64, 0},
		{1, 64, 64},
		{64, 64, 64},
		{65, 64, 128},
		{80, 64, 128},
		{96, 256, 256},
		{80, 0, 80},
		{80, 1, 80},
	}
	for _, c := range cases {
		got := AlignUp(c.size, c.alignment)
		if got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.size, c.alignment, got, c.want)
		}
	}
}

func TestAlignUpIsMinimal(t *testing.T) {
	for _, alignment := range []vk.DeviceSize{16, 64, 256} {
		for size := vk.DeviceSize(1); size <= 512; size++ {
			got := AlignUp(size, alignment)
			if got < size {
				t.Fatalf("AlignUp(%d, %d) = %d shrank the size", size, alignment, got)
			}
			if got%alignment != 0 {
				t.Fatalf("AlignUp(%d, %d) = %d is not aligned", size, alignment, got)
			}
			if got-size >= alignment {
				t.Fatalf("AlignUp(%d, %d) = %d overshoots by a full alignment", size, alignment, got)
			}
		}
	}
}

func sharedBufferForTest(elementSize vk.DeviceSize, alignment vk.DeviceSize, count uint32) *VulkanSharedUniformBuffer {
	return &VulkanSharedUniformBuffer{
		elementSize:   elementSize,
		elementStride: AlignUp(elementSize, alignment),
		elementCount:  count,
	}
}

func TestSharedUniformBufferSlots(t *testing.T) {
	// 96-byte instance blocks on a device with a 64-byte alignment.
	sb := sharedBufferForTest(96, 64, 20)

	if sb.Stride() != 128 {
		t.Fatalf("stride = %d, want 128", sb.Stride())
	}

	slot, err := sb.Slot(0)
	if err != nil {
		t.Fatalf("Slot(0) failed: %v", err)
	}
	if slot.Offset != 0 || slot.Size != 96 {
		t.Errorf("Slot(0) = {%d %d}, want {0 96}", slot.Offset, slot.Size)
	}

	slot, err = sb.Slot(5)
	if err != nil {
		t.Fatalf("Slot(5) failed: %v", err)
	}
	if slot.Offset != 640 || slot.Size != 96 {
		t.Errorf("Slot(5) = {%d %d}, want {640 96}", slot.Offset, slot.Size)
	}
}

func TestSharedUniformBufferSlotsAreDisjoint(t *testing.T) {
	sb := sharedBufferForTest(80, 64, 8)

	var prevEnd vk.DeviceSize
	for i := uint32(0); i < sb.ElementCount(); i++ {
		slot, err := sb.Slot(i)
		if err != nil {
			t.Fatalf("Slot(%d) failed: %v", i, err)
		}
		if i > 0 && slot.Offset < prevEnd {
			t.Errorf("slot %d at offset %d overlaps previous slot ending at %d", i, slot.Offset, prevEnd)
		}
		prevEnd = slot.Offset + slot.Size
	}
}

func TestSharedUniformBufferSlotOutOfRange(t *testing.T) {
	sb := sharedBufferForTest(96, 64, 4)

	_, err := sb.Slot(4)
	if err == nil {
		t.Fatal("Slot(4) of a 4-element buffer should fail")
	}
	var rangeErr *core.SlotRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error should be a SlotRangeError, got %T", err)
	}
	if rangeErr.Index != 4 || rangeErr.Count != 4 {
		t.Errorf("range error = {%d %d}, want {4 4}", rangeErr.Index, rangeErr.Count)
	}
}

func TestSharedUniformBufferTinyAlignment(t *testing.T) {
	// With an alignment no larger than the element there is no padding.
	sb := sharedBufferForTest(64, 16, 3)
	if sb.Stride() != 64 {
		t.Errorf("stride = %d, want 64", sb.Stride())
	}
	slot, err := sb.Slot(2)
	if err != nil {
		t.Fatalf("Slot(2) failed: %v", err)
	}
	if slot.Offset != 128 {
		t.Errorf("Slot(2).Offset = %d, want 128", slot.Offset)
	}
}
