package core

// HandleAllocator hands out increasing non-zero ids. The counter wraps back to 1 after 2³²
// allocations; AcquireUnused skips ids that are still live after a wrap.
type HandleAllocator struct {
	next uint32
}

func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{next: 1}
}

func (h *HandleAllocator) Acquire() uint32 {
	if h.next == 0 {
		h.next = 1
	}
	id := h.next
	h.next++
	return id
}

// AcquireUnused returns the next id for which live reports false. It returns 0 when every id
// is live.
func (h *HandleAllocator) AcquireUnused(live func(id uint32) bool) uint32 {
	for range ^uint32(0) {
		if id := h.Acquire(); !live(id) {
			return id
		}
	}
	return 0
}

// Peek returns the id the next Acquire will return.
func (h *HandleAllocator) Peek() uint32 {
	if h.next == 0 {
		return 1
	}
	return h.next
}
