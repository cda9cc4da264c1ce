package renderctl

import (
	"sync"

	"github.com/gogpu/renderctl/checksum"
	"github.com/gogpu/renderctl/feature"
	"github.com/gogpu/renderctl/framebuffer"
)

// Parameters for the FBParam query.
const (
	FBWidth           int32 = 1
	FBHeight          int32 = 2
	FBXDPI            int32 = 3
	FBYDPI            int32 = 4
	FBFPS             int32 = 5
	FBMinSwapInterval int32 = 6
	FBMaxSwapInterval int32 = 7
)

// Options configures a RenderControl.
type Options struct {
	// Features is the boot-time flag set.
	Features feature.Set

	// Gate overrides the gralloc gate, letting several dispatchers share
	// one. Nil constructs a gate from Features.GrallocSync.
	Gate *GrallocGate
}

// RenderControl dispatches guest render-control operations to a
// framebuffer resource manager.
//
// The framebuffer is attached explicitly and may be absent (before Attach
// or after Detach). Every operation checks for absence and degrades to
// its neutral failure value: zero handle, false, zero-length query, or
// no-op. The dispatcher holds no resource state of its own; all side
// effects land in the framebuffer.
//
// All methods are safe for concurrent use from any number of host worker
// threads.
type RenderControl struct {
	mu sync.RWMutex
	fb *framebuffer.FrameBuffer

	gate     *GrallocGate
	features feature.Set

	sessMu   sync.Mutex
	sessions map[uint64]*Session
}

// New creates a dispatcher with no framebuffer attached.
func New(opts Options) *RenderControl {
	gate := opts.Gate
	if gate == nil {
		gate = NewGrallocGate(opts.Features.GrallocSync)
	}
	return &RenderControl{
		gate:     gate,
		features: opts.Features,
		sessions: make(map[uint64]*Session),
	}
}

// Attach connects the framebuffer all subsequent operations are routed
// to, replacing any previous one.
func (rc *RenderControl) Attach(fb *framebuffer.FrameBuffer) {
	rc.mu.Lock()
	rc.fb = fb
	rc.mu.Unlock()
	Logger().Info("framebuffer attached")
}

// Detach disconnects the framebuffer and returns it so the caller can
// close it. Operations issued after Detach fail neutrally.
func (rc *RenderControl) Detach() *framebuffer.FrameBuffer {
	rc.mu.Lock()
	fb := rc.fb
	rc.fb = nil
	rc.mu.Unlock()
	return fb
}

// Gate exposes the gralloc gate, mainly to tests and to hosts that share
// it across dispatchers.
func (rc *RenderControl) Gate() *GrallocGate { return rc.gate }

func (rc *RenderControl) frame() *framebuffer.FrameBuffer {
	rc.mu.RLock()
	fb := rc.fb
	rc.mu.RUnlock()
	return fb
}

func handle(h uint32) framebuffer.Handle { return framebuffer.Handle(h) }

// RendererVersion reports the render-control protocol revision. It is the
// one operation that works without a framebuffer.
func (rc *RenderControl) RendererVersion() int32 {
	return RendererVersion
}

// EGLVersion reports the host EGL capabilities. ok is false when no
// framebuffer is attached.
func (rc *RenderControl) EGLVersion() (major, minor int32, ok bool) {
	fb := rc.frame()
	if fb == nil {
		return 0, 0, false
	}
	caps := fb.Caps()
	return caps.EGLMajor, caps.EGLMinor, true
}

// QueryEGLString packs an EGL string into buf using the fixed-buffer
// contract: a nil or undersized buf yields the negated required length
// and no write. Unknown names and a detached framebuffer yield 0.
func (rc *RenderControl) QueryEGLString(name uint32, buf []byte) int32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	s := fb.EGLString(name)
	if s == "" {
		return 0
	}
	return packString(buf, s)
}

// GLString packs a driver string (vendor, renderer, version, extensions)
// into buf using the fixed-buffer contract.
//
// Driver strings require a current context. When the session has none, a
// minimal one is created (config 0, 1x1 pbuffer) and left attached to the
// session so later queries from the same caller reuse it.
//
// When the checksum feature is enabled, the extensions string carries the
// maximum supported checksum version marker after the base list.
func (rc *RenderControl) GLString(sess *Session, name uint32, buf []byte) int32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}

	rc.ensureCurrentContext(sess, fb)

	s := fb.GLString(name)
	if rc.features.GLPipeChecksum && name == framebuffer.GLExtensions {
		s = joinExtension(s, checksum.MaxVersionString())
	}
	if s == "" {
		if len(buf) >= 1 {
			buf[0] = 0
		}
		return 0
	}
	return packString(buf, s)
}

// ensureCurrentContext gives the session a current context if it has
// none, solely so driver-string queries are valid. The context stays
// attached afterwards; CloseSession tears it down.
func (rc *RenderControl) ensureCurrentContext(sess *Session, fb *framebuffer.FrameBuffer) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.bind.Context != 0 {
		return
	}
	ctx := fb.CreateContext(0, 0, 2)
	surf := fb.CreatePbufferSurface(0, 1, 1)
	if ctx == 0 || surf == 0 || !fb.BindContext(ctx, surf, surf) {
		Logger().Warn("trivial query context creation failed",
			"session", sess.id, "context", uint32(ctx), "surface", uint32(surf))
		return
	}
	sess.bind = Binding{Context: uint32(ctx), Draw: uint32(surf), Read: uint32(surf)}
	sess.trivialContext = uint32(ctx)
	sess.trivialSurface = uint32(surf)
	Logger().Debug("trivial query context attached", "session", sess.id)
}

// NumConfigs reports how many configs the host exposes and how many
// attributes each packs.
func (rc *RenderControl) NumConfigs() (configs, attribs int32) {
	fb := rc.frame()
	if fb == nil {
		return 0, 0
	}
	return fb.Configs().Count(), fb.Configs().NumAttribs()
}

// Configs packs the config list into buf; see ConfigList.Pack for the
// layout and sizing contract.
func (rc *RenderControl) Configs(buf []uint32) int32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return fb.Configs().Pack(buf)
}

// ChooseConfig writes the indices of configs matching the EGL attribute
// list into out and returns the match count.
func (rc *RenderControl) ChooseConfig(attribs []int32, out []uint32) int32 {
	fb := rc.frame()
	if fb == nil || len(attribs) == 0 {
		return 0
	}
	return fb.Configs().Choose(attribs, out)
}

// FBParam reports a display parameter. Unknown parameters are 0.
func (rc *RenderControl) FBParam(param int32) int32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	switch param {
	case FBWidth:
		return fb.Width()
	case FBHeight:
		return fb.Height()
	case FBXDPI, FBYDPI:
		return 72
	case FBFPS:
		return 60
	case FBMinSwapInterval, FBMaxSwapInterval:
		return 1
	default:
		return 0
	}
}

// CreateContext creates a rendering context. GL version 2 or 3 yields a
// GLES2-class context, matching the guest-side EGL. Returns 0 on failure.
func (rc *RenderControl) CreateContext(config, share uint32, glVersion int32) uint32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return uint32(fb.CreateContext(config, handle(share), glVersion))
}

// DestroyContext destroys a context. No-op for unknown handles or a
// detached framebuffer.
func (rc *RenderControl) DestroyContext(ctx uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.DestroyContext(handle(ctx))
}

// CreateWindowSurface creates a window drawable. Returns 0 on failure.
func (rc *RenderControl) CreateWindowSurface(config, width, height uint32) uint32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return uint32(fb.CreateWindowSurface(config, int32(width), int32(height)))
}

// DestroyWindowSurface destroys a window surface.
func (rc *RenderControl) DestroyWindowSurface(surf uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.DestroyWindowSurface(handle(surf))
}

// CreateColorBuffer creates a shareable color buffer. Returns 0 on
// failure.
func (rc *RenderControl) CreateColorBuffer(width, height, internalFormat uint32) uint32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return uint32(fb.CreateColorBuffer(int32(width), int32(height), internalFormat))
}

// OpenColorBuffer2 adds a reference to a color buffer. Returns 0 on
// success, -1 on failure.
func (rc *RenderControl) OpenColorBuffer2(cb uint32) int32 {
	fb := rc.frame()
	if fb == nil {
		return -1
	}
	return fb.OpenColorBuffer(handle(cb))
}

// OpenColorBuffer is the pre-OpenColorBuffer2 entry point, kept for
// compatibility with old guest system images. It delegates to
// OpenColorBuffer2 and discards the result.
//
// Deprecated: new guests call OpenColorBuffer2.
func (rc *RenderControl) OpenColorBuffer(cb uint32) {
	_ = rc.OpenColorBuffer2(cb)
}

// CloseColorBuffer drops a reference to a color buffer.
func (rc *RenderControl) CloseColorBuffer(cb uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.CloseColorBuffer(handle(cb))
}

// SetWindowColorBuffer binds a color buffer to a window surface.
func (rc *RenderControl) SetWindowColorBuffer(surf, cb uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.SetWindowSurfaceColorBuffer(handle(surf), handle(cb))
}

// FlushWindowColorBuffer copies a window surface's contents into its
// bound color buffer under the gralloc gate, so the delivery cannot be
// reordered against guest buffer locks. Returns 0 on success, -1 on
// failure.
//
// The failure paths return with the gate still held, mirroring the
// original protocol behavior; see GrallocGate for the pairing contract.
func (rc *RenderControl) FlushWindowColorBuffer(surf uint32) int32 {
	rc.gate.Lock()

	fb := rc.frame()
	if fb == nil {
		return -1
	}
	if !fb.FlushWindowSurfaceColorBuffer(handle(surf)) {
		return -1
	}

	rc.gate.Unlock()
	return 0
}

// MakeCurrent binds a context and draw/read surfaces to the session as
// one atomic rebind: concurrent Binding calls observe either the old or
// the new triple, never a mix. The all-zero triple unbinds.
func (rc *RenderControl) MakeCurrent(sess *Session, ctx, draw, read uint32) bool {
	fb := rc.frame()
	if fb == nil {
		return false
	}
	if !fb.BindContext(handle(ctx), handle(draw), handle(read)) {
		return false
	}

	sess.mu.Lock()
	sess.bind = Binding{Context: ctx, Draw: draw, Read: read}
	sess.mu.Unlock()
	return true
}

// FBPost presents a color buffer on the host display.
func (rc *RenderControl) FBPost(cb uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.Post(handle(cb))
}

// FBSetSwapInterval accepts the guest's swap interval. The host ignores
// it; FBParam reports min=max=1.
func (rc *RenderControl) FBSetSwapInterval(interval int32) {
	_ = interval
}

// BindTexture binds a color buffer as the current texture's storage.
func (rc *RenderControl) BindTexture(cb uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.BindColorBufferToTexture(handle(cb))
}

// BindRenderbuffer binds a color buffer as the current renderbuffer's
// storage.
func (rc *RenderControl) BindRenderbuffer(cb uint32) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	fb.BindColorBufferToRenderbuffer(handle(cb))
}

// ColorBufferCacheFlush is the host half of a guest gralloc_lock: it
// acquires the gralloc gate and returns 0 with the gate HELD. The
// matching release is the next UpdateColorBuffer. See GrallocGate.
func (rc *RenderControl) ColorBufferCacheFlush(cb uint32, postCount, forRead int32) int32 {
	_ = cb
	_ = postCount
	_ = forRead
	rc.gate.Lock()
	return 0
}

// ReadColorBuffer copies a rectangle of a color buffer into pixels in the
// wire format. Failures (detached framebuffer, unknown handle, bad rect)
// leave pixels untouched.
func (rc *RenderControl) ReadColorBuffer(cb uint32, x, y, width, height int32, format, typ uint32, pixels []byte) {
	fb := rc.frame()
	if fb == nil {
		return
	}
	if err := fb.ReadColorBuffer(handle(cb), x, y, width, height, format, typ, pixels); err != nil {
		Logger().Warn("read color buffer", "buffer", cb, "error", err)
	}
}

// UpdateColorBuffer writes pixels into a rectangle of a color buffer and
// releases the gralloc gate, completing the cache-flush/update pairing.
// Returns 0 on success, -1 when no framebuffer is attached (in which case
// the gate is NOT released, preserving the wire protocol's pairing).
func (rc *RenderControl) UpdateColorBuffer(cb uint32, x, y, width, height int32, format, typ uint32, pixels []byte) int32 {
	fb := rc.frame()
	if fb == nil {
		return -1
	}

	if err := fb.UpdateColorBuffer(handle(cb), x, y, width, height, format, typ, pixels); err != nil {
		Logger().Warn("update color buffer", "buffer", cb, "error", err)
	}

	rc.gate.Unlock()
	return 0
}

// CreateClientImage creates an EGLImage-like object from a color buffer.
// Returns 0 on failure.
func (rc *RenderControl) CreateClientImage(ctx, target, buffer uint32) uint32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return uint32(fb.CreateClientImage(handle(ctx), target, handle(buffer)))
}

// DestroyClientImage destroys a client image. Returns 1 on success, 0 on
// failure.
func (rc *RenderControl) DestroyClientImage(img uint32) int32 {
	fb := rc.frame()
	if fb == nil {
		return 0
	}
	return fb.DestroyClientImage(handle(img))
}

// SelectChecksumCalculator negotiates the wire checksum scheme for the
// session. Versions this host cannot honor are ignored, leaving the
// previous selection in place.
func (rc *RenderControl) SelectChecksumCalculator(sess *Session, version, reserved uint32) {
	_ = reserved
	v := checksum.Version(version)
	if !v.Valid() {
		Logger().Warn("unsupported checksum version ignored",
			"session", sess.id, "version", version)
		return
	}
	sess.mu.Lock()
	sess.checksum = v
	sess.mu.Unlock()
}
