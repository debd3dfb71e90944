package core

import (
	"errors"
	"fmt"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	// ErrBufferDestroyed is returned when a uniform write targets a buffer
	// whose backing memory has already been torn down.
	ErrBufferDestroyed = errors.New("buffer already destroyed")
	// ErrPoolExhausted is returned when a descriptor pool cannot serve
	// another set allocation. Pools are sized at scene setup and never grow.
	ErrPoolExhausted = errors.New("descriptor pool exhausted")
)

// SlotRangeError reports a uniform-buffer slot request outside the element
// count fixed at construction. Callers get this instead of a silently
// corrupted neighbour slot.
type SlotRangeError struct {
	Index uint32
	Count uint32
}

func (e *SlotRangeError) Error() string {
	return fmt.Sprintf("uniform buffer slot %d out of range (element count %d)", e.Index, e.Count)
}
