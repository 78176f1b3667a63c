package vulkan

import "github.com/cockroachdb/errors"

// handleTable hands out opaque ids for native objects. Released slots are
// reused first. Id 0 is never handed out so it can stand for the null handle.
type handleTable[T any] struct {
	owners []T
	used   []bool
	live   int
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{}
}

func (t *handleTable[T]) acquire(owner T) uint64 {
	for i := range t.used {
		// Existing free spot. Take it.
		if !t.used[i] {
			t.owners[i] = owner
			t.used[i] = true
			t.live++
			return uint64(i) + 1
		}
	}
	t.owners = append(t.owners, owner)
	t.used = append(t.used, true)
	t.live++
	return uint64(len(t.owners))
}

func (t *handleTable[T]) get(id uint64) (T, bool) {
	var zero T
	if id == 0 || id > uint64(len(t.owners)) || !t.used[id-1] {
		return zero, false
	}
	return t.owners[id-1], true
}

func (t *handleTable[T]) release(id uint64) (T, error) {
	owner, ok := t.get(id)
	if !ok {
		return owner, errors.Newf("handle %d is not live (max=%d)", id, len(t.owners))
	}
	var zero T
	t.owners[id-1] = zero
	t.used[id-1] = false
	t.live--
	return owner, nil
}

// each calls fn for every live handle.
func (t *handleTable[T]) each(fn func(id uint64, owner T)) {
	for i := range t.used {
		if t.used[i] {
			fn(uint64(i)+1, t.owners[i])
		}
	}
}

func (t *handleTable[T]) len() int {
	return t.live
}
