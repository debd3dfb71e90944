package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumo/engine/core"
)

// Disposable is anything owning Vulkan objects that must be released
// before the device goes away.
type Disposable interface {
	Destroy(context *VulkanContext)
}

// VulkanTrash collects disposables in registration order and tears them
// down in reverse, after the device has gone idle. Dependents therefore
// register after their dependencies: a mesh after the buffers it wraps, a
// scene's descriptor pool before the sets allocated from it.
type VulkanTrash struct {
	context   *VulkanContext
	resources []Disposable
	emptied   bool
}

func NewVulkanTrash(context *VulkanContext) *VulkanTrash {
	return &VulkanTrash{
		context:   context,
		resources: make([]Disposable, 0, 16),
	}
}

// Add registers a disposable. Registration after TeardownAll is a
// programming error; the resource would leak, so it is logged and dropped.
func (t *VulkanTrash) Add(d Disposable) {
	if t.emptied {
		core.LogWarn("trash registry already emptied, resource will not be tracked")
		return
	}
	t.resources = append(t.resources, d)
}

func (t *VulkanTrash) AddAll(ds ...Disposable) {
	for _, d := range ds {
		t.Add(d)
	}
}

func (t *VulkanTrash) Count() int {
	return len(t.resources)
}

// TeardownAll waits for the device to go idle and destroys every tracked
// resource in reverse registration order. Calling it again is a no-op.
func (t *VulkanTrash) TeardownAll() {
	if t.emptied {
		return
	}
	if t.context != nil && t.context.Device != nil && t.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(t.context.Device.LogicalDevice)
	}
	for i := len(t.resources) - 1; i >= 0; i-- {
		t.resources[i].Destroy(t.context)
	}
	t.resources = nil
	t.emptied = true
}
