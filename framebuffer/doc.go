// Package framebuffer is the host-side GPU resource manager for the
// render-control protocol.
//
// A FrameBuffer owns every guest-visible GPU object: rendering contexts,
// window surfaces, color buffers, and client images. Objects are named by
// opaque uint32 handles allocated here; handle 0 is reserved as
// invalid/none. The dispatcher in the root package forwards handles
// without interpreting them, so the tables in this package are the single
// source of truth for what a handle means.
//
// All methods are safe for concurrent use. Internally a FrameBuffer holds
// one RWMutex over its handle tables; pixel copies happen under it, which
// keeps per-buffer read/update/flush operations mutually consistent.
package framebuffer
