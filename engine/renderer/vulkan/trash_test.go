package vulkan

import "testing"

type fakeDisposable struct {
	order    *[]int
	id       int
	destroys int
}

func (f *fakeDisposable) Destroy(context *VulkanContext) {
	f.destroys++
	*f.order = append(*f.order, f.id)
}

func TestTrashTearsDownInReverseOrder(t *testing.T) {
	trash := NewVulkanTrash(nil)

	var order []int
	first := &fakeDisposable{order: &order, id: 1}
	second := &fakeDisposable{order: &order, id: 2}
	third := &fakeDisposable{order: &order, id: 3}
	trash.Add(first)
	trash.AddAll(second, third)

	if trash.Count() != 3 {
		t.Fatalf("Count = %d, want 3", trash.Count())
	}

	trash.TeardownAll()

	if len(order) != 3 {
		t.Fatalf("destroyed %d resources, want 3", len(order))
	}
	if order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("teardown order = %v, want [3 2 1]", order)
	}
}

func TestTrashTeardownIsIdempotent(t *testing.T) {
	trash := NewVulkanTrash(nil)

	var order []int
	d := &fakeDisposable{order: &order, id: 1}
	trash.Add(d)

	trash.TeardownAll()
	trash.TeardownAll()

	if d.destroys != 1 {
		t.Errorf("resource destroyed %d times, want exactly once", d.destroys)
	}
}

func TestTrashIgnoresLateRegistration(t *testing.T) {
	trash := NewVulkanTrash(nil)
	trash.TeardownAll()

	var order []int
	late := &fakeDisposable{order: &order, id: 9}
	trash.Add(late)

	if trash.Count() != 0 {
		t.Errorf("emptied trash should not track new resources")
	}

	trash.TeardownAll()
	if late.destroys != 0 {
		t.Errorf("late registration should never be destroyed by the registry")
	}
}
