package containers

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestRingQueue(t *testing.T) {
	rq := NewRingQueue[int](3)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue() on empty queue error = %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue() on full queue error = %v", err)
	}

	if v, _ := rq.Peek(); v != 1 {
		t.Fatalf("Peek() = %d, want 1", v)
	}
	if v, _ := rq.Dequeue(); v != 1 {
		t.Fatalf("Dequeue() = %d, want 1", v)
	}
	// Wraps around.
	if err := rq.Enqueue(4); err != nil {
		t.Fatal(err)
	}
	for _, want := range []int{2, 3, 4} {
		got, err := rq.Dequeue()
		if err != nil || got != want {
			t.Fatalf("Dequeue() = %d, %v, want %d", got, err, want)
		}
	}
	if !rq.IsEmpty() || rq.Len() != 0 {
		t.Fatalf("queue not empty, Len() = %d", rq.Len())
	}
}
