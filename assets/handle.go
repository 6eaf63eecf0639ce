package assets

import (
	"strconv"
	"sync/atomic"
)

type handleRef struct {
	id     uint64
	strong atomic.Int32
}

// Handle is a strong reference to registry entry of asset type A.
// Copying Handle value does not change reference count, use Clone
// to share ownership and Release when done with it.
type Handle[A any] struct {
	ref *handleRef
}

// WeakHandle does not keep entry alive
type WeakHandle[A any] struct {
	ref *handleRef
}

func newHandle[A any](id uint64) Handle[A] {
	ref := &handleRef{id: id}
	ref.strong.Store(1)
	return Handle[A]{ref: ref}
}

func (h Handle[A]) IsValid() bool {
	return h.ref != nil
}

// ID returns 0 for zero Handle
func (h Handle[A]) ID() uint64 {
	if h.ref == nil {
		return 0
	}
	return h.ref.id
}

func (h Handle[A]) Clone() Handle[A] {
	if h.ref != nil {
		h.ref.strong.Add(1)
	}
	return h
}

// Release drops one strong reference.
// Weak handles stop upgrading after last one is released.
func (h Handle[A]) Release() {
	if h.ref != nil {
		if h.ref.strong.Add(-1) < 0 {
			panic("assets: handle released more times than acquired")
		}
	}
}

func (h Handle[A]) Downgrade() WeakHandle[A] {
	return WeakHandle[A]{ref: h.ref}
}

func (h Handle[A]) String() string {
	return "#" + strconv.FormatUint(h.ID(), 10)
}

func (h Handle[A]) MarshalJSON() ([]byte, error) {
	if h.ref == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(h.ref.id, 10)), nil
}

// Upgrade returns new strong handle if entry is still referenced
func (w WeakHandle[A]) Upgrade() (Handle[A], bool) {
	if w.ref == nil {
		return Handle[A]{}, false
	}
	for {
		n := w.ref.strong.Load()
		if n <= 0 {
			return Handle[A]{}, false
		}
		if w.ref.strong.CompareAndSwap(n, n+1) {
			return Handle[A]{ref: w.ref}, true
		}
	}
}

func (w WeakHandle[A]) Alive() bool {
	return w.ref != nil && w.ref.strong.Load() > 0
}
