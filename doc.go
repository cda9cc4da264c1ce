// Package renderctl implements the host side of a virtualized GPU's
// render-control protocol.
//
// # Overview
//
// A guest graphics driver running inside a virtual machine manages GPU
// resources (rendering contexts, window surfaces, color buffers, client
// images) by opaque uint32 handles. renderctl receives those handle-based
// commands on the host, routes them to a framebuffer resource manager, and
// reproduces the synchronization guarantees the guest kernel graphics layer
// depends on. It does not render pixels itself; it manages the resources
// that are rendered into.
//
// # Quick Start
//
//	feats := feature.Default()
//	fb, err := framebuffer.New(1080, 1920, framebuffer.Options{Features: feats})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rc := renderctl.New(renderctl.Options{Features: feats})
//	rc.Attach(fb)
//
//	sess := rc.Session(1) // one session per guest render thread
//	ctx := rc.CreateContext(configID, 0, 2)
//	surf := rc.CreateWindowSurface(configID, 256, 256)
//	rc.MakeCurrent(sess, ctx, surf, surf)
//
// # Architecture
//
// The library is organized into:
//   - Root package: dispatcher (RenderControl), sessions, the gralloc gate,
//     string marshalling
//   - framebuffer: the host resource manager that owns all handles
//   - display: pluggable display backends (software, wgpu)
//   - protocol: the fixed function table the wire decoder invokes
//   - checksum, feature: protocol version negotiation and boot-time flags
//
// # Concurrency
//
// Guest calls arrive on independent host worker threads. Every dispatcher
// operation is synchronous and safe for concurrent use; the only blocking
// point is the gralloc gate, which reproduces the guest's coarse-grained
// buffer locking (see GrallocGate).
package renderctl

// Version information
const (
	// Version is the current version of the library.
	Version = "0.1.0"

	// RendererVersion is the render-control protocol revision reported to
	// guests. It only changes when the wire contract changes.
	RendererVersion int32 = 1
)
