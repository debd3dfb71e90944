package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFOOrder(t *testing.T) {
	rq := NewRingQueue[string](4)

	for _, s := range []string{"a", "b", "c"} {
		if err := rq.Enqueue(s); err != nil {
			t.Fatalf("Enqueue(%q) failed: %v", s, err)
		}
	}
	if rq.Len() != 3 {
		t.Fatalf("Len = %d, want 3", rq.Len())
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue = %q, want %q", got, want)
		}
	}
	if !rq.IsEmpty() {
		t.Error("queue should be empty after draining")
	}
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](2)

	rq.Enqueue(1)
	rq.Enqueue(2)
	rq.Dequeue()
	if err := rq.Enqueue(3); err != nil {
		t.Fatalf("Enqueue after wrap failed: %v", err)
	}

	got, _ := rq.Dequeue()
	if got != 2 {
		t.Errorf("Dequeue = %d, want 2", got)
	}
	got, _ = rq.Dequeue()
	if got != 3 {
		t.Errorf("Dequeue = %d, want 3", got)
	}
}

func TestRingQueueFullAndEmpty(t *testing.T) {
	rq := NewRingQueue[int](1)

	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty queue: err = %v, want ErrQueueEmpty", err)
	}
	if _, err := rq.Peek(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Peek on empty queue: err = %v, want ErrQueueEmpty", err)
	}

	rq.Enqueue(42)
	if !rq.IsFull() {
		t.Error("queue of size 1 should be full after one Enqueue")
	}
	if err := rq.Enqueue(43); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue on full queue: err = %v, want ErrQueueFull", err)
	}

	front, err := rq.Peek()
	if err != nil || front != 42 {
		t.Errorf("Peek = (%d, %v), want (42, nil)", front, err)
	}
	if rq.Len() != 1 {
		t.Errorf("Peek should not consume; Len = %d", rq.Len())
	}
}
