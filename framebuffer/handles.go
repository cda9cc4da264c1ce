package framebuffer

// Handle is an opaque identifier for a host GPU object. Handles are unique
// across all object kinds within one FrameBuffer's lifetime and are never
// reused. 0 is reserved to mean invalid/none.
type Handle uint32

// handleAllocator hands out handles from a single monotonically increasing
// counter. Callers must hold the FrameBuffer lock.
type handleAllocator struct {
	next uint32
}

func (a *handleAllocator) alloc() Handle {
	a.next++
	if a.next == 0 { // wrapped; skip the reserved invalid handle
		a.next = 1
	}
	return Handle(a.next)
}
