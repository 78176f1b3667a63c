package vulkan

import "testing"

func TestHandleTable(t *testing.T) {
	table := newHandleTable[string]()

	a := table.acquire("a")
	b := table.acquire("b")
	if a != 1 || b != 2 {
		t.Fatalf("acquire = %d, %d, want 1, 2", a, b)
	}
	if got, ok := table.get(b); !ok || got != "b" {
		t.Fatalf("get(%d) = %q, %v", b, got, ok)
	}
	if _, ok := table.get(0); ok {
		t.Fatal("id 0 must never resolve")
	}
	if _, ok := table.get(3); ok {
		t.Fatal("id past the end must not resolve")
	}

	owner, err := table.release(a)
	if err != nil || owner != "a" {
		t.Fatalf("release(%d) = %q, %v", a, owner, err)
	}
	if _, err := table.release(a); err == nil {
		t.Fatal("releasing twice must fail")
	}
	if table.len() != 1 {
		t.Fatalf("len = %d, want 1", table.len())
	}

	// The freed slot is reused first.
	if c := table.acquire("c"); c != a {
		t.Fatalf("acquire after release = %d, want %d", c, a)
	}

	seen := map[uint64]string{}
	table.each(func(id uint64, owner string) { seen[id] = owner })
	if len(seen) != 2 || seen[1] != "c" || seen[2] != "b" {
		t.Fatalf("each visited %v", seen)
	}
}
