package framebuffer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/renderctl/display"
	"github.com/gogpu/renderctl/feature"
)

// Caps are the EGL capabilities reported to guests.
type Caps struct {
	EGLMajor int32
	EGLMinor int32
}

// Options configures FrameBuffer construction.
type Options struct {
	// Features is the boot-time flag set. The zero value disables all
	// optional behavior.
	Features feature.Set

	// Logger receives diagnostics. Nil means silent.
	Logger *slog.Logger

	// Display overrides an already-constructed display backend. When nil,
	// a backend is selected from the display registry using
	// Features.Display (empty = best available).
	Display display.Display
}

// FrameBuffer owns all guest-visible GPU objects and the display they are
// presented on. All methods are safe for concurrent use.
type FrameBuffer struct {
	mu sync.RWMutex

	width, height int32
	caps          Caps
	configs       *ConfigList
	disp          display.Display
	log           *slog.Logger

	alloc        handleAllocator
	contexts     map[Handle]*renderContext
	surfaces     map[Handle]*windowSurface
	colorBuffers map[Handle]*colorBuffer
	clientImages map[Handle]*clientImage

	closed bool
}

// New creates a FrameBuffer of the given guest display size.
func New(width, height int32, opts Options) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(discardHandler{})
	}

	disp := opts.Display
	if disp == nil {
		var err error
		dopts := display.Options{Width: width, Height: height}
		if name := opts.Features.Display; name != "" {
			disp, err = display.NewByName(name, dopts)
		} else {
			disp, err = display.New(dopts)
		}
		if err != nil {
			return nil, fmt.Errorf("framebuffer: display: %w", err)
		}
	}

	fb := &FrameBuffer{
		width:        width,
		height:       height,
		caps:         Caps{EGLMajor: 1, EGLMinor: 4},
		configs:      DefaultConfigs(),
		disp:         disp,
		log:          log,
		contexts:     make(map[Handle]*renderContext),
		surfaces:     make(map[Handle]*windowSurface),
		colorBuffers: make(map[Handle]*colorBuffer),
		clientImages: make(map[Handle]*clientImage),
	}
	log.Info("framebuffer created",
		"width", width, "height", height, "display", fmt.Sprintf("%T", disp))
	return fb, nil
}

// Close destroys every table and the display backend. The dispatcher must
// be detached first; FrameBuffer methods must not be called after Close.
func (fb *FrameBuffer) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return nil
	}
	fb.closed = true
	fb.contexts = nil
	fb.surfaces = nil
	fb.colorBuffers = nil
	fb.clientImages = nil
	return fb.disp.Close()
}

// Width returns the guest display width in pixels.
func (fb *FrameBuffer) Width() int32 { return fb.width }

// Height returns the guest display height in pixels.
func (fb *FrameBuffer) Height() int32 { return fb.height }

// Caps returns the EGL capabilities.
func (fb *FrameBuffer) Caps() Caps { return fb.caps }

// Configs returns the config list.
func (fb *FrameBuffer) Configs() *ConfigList { return fb.configs }

// EGLString returns the EGL string for a query name, or "" for unknown
// names.
func (fb *FrameBuffer) EGLString(name uint32) string {
	switch name {
	case EGLVendor:
		return fb.disp.Strings().Vendor
	case EGLVersion:
		return fmt.Sprintf("%d.%d", fb.caps.EGLMajor, fb.caps.EGLMinor)
	case EGLExtensions:
		return "EGL_KHR_image_base EGL_KHR_gl_texture_2D_image"
	default:
		return ""
	}
}

// GLString returns the driver string for a glGetString name, or "" for
// unknown names.
func (fb *FrameBuffer) GLString(name uint32) string {
	s := fb.disp.Strings()
	switch name {
	case GLVendor:
		return s.Vendor
	case GLRenderer:
		return s.Renderer
	case GLVersion:
		return s.Version
	case GLExtensions:
		return s.Extensions
	default:
		return ""
	}
}

// CreateContext creates a rendering context against a config. share, when
// non-zero, must name an existing context to share object namespaces
// with. Returns 0 on failure.
func (fb *FrameBuffer) CreateContext(config uint32, share Handle, glVersion int32) Handle {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.configs.Get(config) == nil {
		fb.log.Warn("create context: unknown config", "config", config)
		return 0
	}
	if share != 0 {
		if _, ok := fb.contexts[share]; !ok {
			fb.log.Warn("create context: unknown share context", "share", uint32(share))
			return 0
		}
	}
	h := fb.alloc.alloc()
	fb.contexts[h] = newRenderContext(h, config, share, glVersion)
	fb.log.Debug("context created", "handle", uint32(h), "config", config, "glVersion", glVersion)
	return h
}

// DestroyContext removes a context. Unknown handles are ignored.
func (fb *FrameBuffer) DestroyContext(ctx Handle) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	delete(fb.contexts, ctx)
}

// CreateWindowSurface creates a window drawable against a config.
// Returns 0 on failure.
func (fb *FrameBuffer) CreateWindowSurface(config uint32, width, height int32) Handle {
	return fb.createSurface(config, width, height, false)
}

// CreatePbufferSurface creates an off-screen drawable. It backs the
// trivial contexts used for driver-string queries.
func (fb *FrameBuffer) CreatePbufferSurface(config uint32, width, height int32) Handle {
	return fb.createSurface(config, width, height, true)
}

func (fb *FrameBuffer) createSurface(config uint32, width, height int32, pbuffer bool) Handle {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.configs.Get(config) == nil {
		fb.log.Warn("create surface: unknown config", "config", config)
		return 0
	}
	ws, err := newWindowSurface(0, config, width, height, pbuffer)
	if err != nil {
		fb.log.Warn("create surface", "error", err)
		return 0
	}
	h := fb.alloc.alloc()
	ws.handle = h
	fb.surfaces[h] = ws
	fb.log.Debug("surface created",
		"handle", uint32(h), "size", fmt.Sprintf("%dx%d", width, height), "pbuffer", pbuffer)
	return h
}

// DestroyWindowSurface removes a surface, releasing its color buffer
// reference. Unknown handles are ignored.
func (fb *FrameBuffer) DestroyWindowSurface(surf Handle) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	ws, ok := fb.surfaces[surf]
	if !ok {
		return
	}
	if ws.colorBuffer != 0 {
		fb.closeColorBufferLocked(ws.colorBuffer)
	}
	delete(fb.surfaces, surf)
}

// CreateColorBuffer creates a shareable pixel store. The new buffer's
// reference count is 1. Returns 0 on failure.
func (fb *FrameBuffer) CreateColorBuffer(width, height int32, internalFormat uint32) Handle {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	h := fb.alloc.alloc()
	cb, err := newColorBuffer(h, width, height, internalFormat)
	if err != nil {
		fb.log.Warn("create color buffer", "error", err)
		return 0
	}
	fb.colorBuffers[h] = cb
	fb.log.Debug("color buffer created",
		"handle", uint32(h), "size", fmt.Sprintf("%dx%d", width, height), "format", cb.format)
	return h
}

// OpenColorBuffer adds a reference to a color buffer on behalf of another
// guest process. Returns 0 on success and -1 for an unknown handle.
func (fb *FrameBuffer) OpenColorBuffer(cb Handle) int32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	buf, ok := fb.colorBuffers[cb]
	if !ok {
		fb.log.Warn("open color buffer: unknown handle", "handle", uint32(cb))
		return -1
	}
	buf.refcount++
	return 0
}

// CloseColorBuffer drops a reference; the buffer is destroyed when the
// count reaches zero. Unknown handles are ignored.
func (fb *FrameBuffer) CloseColorBuffer(cb Handle) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.closeColorBufferLocked(cb)
}

func (fb *FrameBuffer) closeColorBufferLocked(cb Handle) {
	buf, ok := fb.colorBuffers[cb]
	if !ok {
		return
	}
	buf.refcount--
	if buf.refcount <= 0 {
		delete(fb.colorBuffers, cb)
		fb.log.Debug("color buffer destroyed", "handle", uint32(cb))
	}
}

// ColorBufferRefCount reports the reference count of a buffer, 0 for
// unknown handles.
func (fb *FrameBuffer) ColorBufferRefCount(cb Handle) int32 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	if buf, ok := fb.colorBuffers[cb]; ok {
		return buf.refcount
	}
	return 0
}

// SetWindowSurfaceColorBuffer binds a color buffer to a window surface,
// replacing any previous binding. The surface takes a reference on the
// buffer and drops the one it held before.
func (fb *FrameBuffer) SetWindowSurfaceColorBuffer(surf, cb Handle) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	ws, ok := fb.surfaces[surf]
	if !ok {
		fb.log.Warn("set window color buffer: unknown surface", "surface", uint32(surf))
		return false
	}
	buf, ok := fb.colorBuffers[cb]
	if !ok {
		fb.log.Warn("set window color buffer: unknown buffer", "buffer", uint32(cb))
		return false
	}
	if ws.colorBuffer == cb {
		return true
	}
	if ws.colorBuffer != 0 {
		fb.closeColorBufferLocked(ws.colorBuffer)
	}
	buf.refcount++
	ws.colorBuffer = cb
	return true
}

// FlushWindowSurfaceColorBuffer copies a surface's contents into its
// bound color buffer. False when the surface is unknown or has no buffer
// bound.
func (fb *FrameBuffer) FlushWindowSurfaceColorBuffer(surf Handle) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	ws, ok := fb.surfaces[surf]
	if !ok {
		return false
	}
	cb, ok := fb.colorBuffers[ws.colorBuffer]
	if !ok {
		return false
	}
	ws.flushTo(cb)
	return true
}

// BindContext validates a make-current triple. The all-zero triple is the
// explicit unbind and always succeeds; otherwise the context and both
// surfaces must resolve.
func (fb *FrameBuffer) BindContext(ctx, draw, read Handle) bool {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	if ctx == 0 && draw == 0 && read == 0 {
		return true
	}
	if _, ok := fb.contexts[ctx]; !ok {
		return false
	}
	if _, ok := fb.surfaces[draw]; !ok {
		return false
	}
	if _, ok := fb.surfaces[read]; !ok {
		return false
	}
	return true
}

// Post presents a color buffer on the display.
func (fb *FrameBuffer) Post(cb Handle) bool {
	fb.mu.RLock()
	buf, ok := fb.colorBuffers[cb]
	if !ok {
		fb.mu.RUnlock()
		fb.log.Warn("post: unknown buffer", "buffer", uint32(cb))
		return false
	}
	img := buf.snapshot()
	fb.mu.RUnlock()

	if err := fb.disp.Post(img); err != nil {
		fb.log.Warn("post", "buffer", uint32(cb), "error", err)
		return false
	}
	return true
}

// BindColorBufferToTexture marks a buffer as the backing store of the
// current context's bound texture.
func (fb *FrameBuffer) BindColorBufferToTexture(cb Handle) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	buf, ok := fb.colorBuffers[cb]
	if !ok {
		return false
	}
	buf.boundTexture = true
	return true
}

// BindColorBufferToRenderbuffer marks a buffer as the backing store of
// the current context's bound renderbuffer.
func (fb *FrameBuffer) BindColorBufferToRenderbuffer(cb Handle) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	buf, ok := fb.colorBuffers[cb]
	if !ok {
		return false
	}
	buf.boundRenderbuffer = true
	return true
}

// ReadColorBuffer copies a rectangle of a buffer into pixels using the
// wire format.
func (fb *FrameBuffer) ReadColorBuffer(cb Handle, x, y, w, h int32, format, typ uint32, pixels []byte) error {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	buf, ok := fb.colorBuffers[cb]
	if !ok {
		return fmt.Errorf("%w: color buffer %d", ErrUnknownHandle, cb)
	}
	return buf.read(x, y, w, h, format, typ, pixels)
}

// UpdateColorBuffer copies pixels in the wire format into a rectangle of
// a buffer.
func (fb *FrameBuffer) UpdateColorBuffer(cb Handle, x, y, w, h int32, format, typ uint32, pixels []byte) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	buf, ok := fb.colorBuffers[cb]
	if !ok {
		return fmt.Errorf("%w: color buffer %d", ErrUnknownHandle, cb)
	}
	return buf.update(x, y, w, h, format, typ, pixels)
}

// CreateClientImage creates an EGLImage-like snapshot of a color buffer
// for a context. Returns 0 on failure.
func (fb *FrameBuffer) CreateClientImage(ctx Handle, target uint32, buffer Handle) Handle {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if _, ok := fb.contexts[ctx]; !ok {
		fb.log.Warn("create client image: unknown context", "context", uint32(ctx))
		return 0
	}
	src, ok := fb.colorBuffers[buffer]
	if !ok {
		fb.log.Warn("create client image: unknown buffer", "buffer", uint32(buffer))
		return 0
	}
	h := fb.alloc.alloc()
	fb.clientImages[h] = &clientImage{
		handle:  h,
		context: ctx,
		target:  target,
		source:  buffer,
		img:     src.snapshot(),
	}
	return h
}

// DestroyClientImage removes a client image. Returns 1 on success, 0 for
// an unknown handle (the wire result of the destroy operation).
func (fb *FrameBuffer) DestroyClientImage(img Handle) int32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if _, ok := fb.clientImages[img]; !ok {
		return 0
	}
	delete(fb.clientImages, img)
	return 1
}

// WindowSurfaceColorBuffer reports the buffer bound to a surface, 0 when
// none.
func (fb *FrameBuffer) WindowSurfaceColorBuffer(surf Handle) Handle {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	if ws, ok := fb.surfaces[surf]; ok {
		return ws.colorBuffer
	}
	return 0
}
