package renderctl

// GrallocGate reproduces, on the host, the mutual exclusion that
// gralloc_lock/gralloc_unlock provide around shared buffers on the guest.
// Calls from different guest threads arrive on independent host worker
// threads in arbitrary order; without this gate, apps that render through
// gralloc buffers (camera preview, video) present frames out of order.
//
// The gate is deliberately a single process-wide gate rather than
// per-buffer: it reproduces the guest's historical coarse-grained locking
// exactly, trading parallelism for ordering fidelity.
//
// The locking protocol is asymmetric across two wire operations:
// ColorBufferCacheFlush acquires the gate and returns with it held, and the
// matching release happens in the subsequent UpdateColorBuffer. A guest
// that issues a cache flush and never updates the buffer leaves the gate
// held and deadlocks every later locking operation. That pairing mirrors
// the guest kernel's lock lifetime and must not be "fixed" here.
type GrallocGate struct {
	enabled bool
	// sem is a capacity-1 semaphore: send acquires, receive releases.
	// A channel rather than sync.Mutex so that Lock and Unlock may happen
	// on different host threads and an unpaired Unlock is a no-op instead
	// of a crash.
	sem chan struct{}
}

// NewGrallocGate creates the gate. When enabled is false every operation
// is a no-op; the flag is fixed for the gate's lifetime.
func NewGrallocGate(enabled bool) *GrallocGate {
	return &GrallocGate{
		enabled: enabled,
		sem:     make(chan struct{}, 1),
	}
}

// Lock blocks the calling thread until exclusive access is granted.
// It may block indefinitely if a prior caller acquired the gate through a
// cache flush and never issued the matching buffer update; there is no
// timeout, matching the guest-side lock.
func (g *GrallocGate) Lock() {
	if !g.enabled {
		return
	}
	g.sem <- struct{}{}
}

// Unlock releases the gate. Releasing an idle gate is a no-op, so a buffer
// update that was not preceded by a cache flush does not fault.
func (g *GrallocGate) Unlock() {
	if !g.enabled {
		return
	}
	select {
	case <-g.sem:
	default:
	}
}

// Held reports whether the gate is currently in the held state.
func (g *GrallocGate) Held() bool {
	return len(g.sem) == 1
}

// Enabled reports whether the gate actually gates anything.
func (g *GrallocGate) Enabled() bool {
	return g.enabled
}
