package framebuffer

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/renderctl/display"
)

func newTestFB(t *testing.T) (*FrameBuffer, *display.Software) {
	t.Helper()
	disp := display.NewSoftware(64, 64)
	fb, err := New(64, 64, Options{Display: disp})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { fb.Close() })
	return fb, disp
}

func TestHandlesUniqueAcrossKinds(t *testing.T) {
	fb, _ := newTestFB(t)

	seen := make(map[Handle]bool)
	add := func(h Handle) {
		if h == 0 {
			t.Fatal("allocation failed")
		}
		if seen[h] {
			t.Fatalf("handle %d allocated twice", h)
		}
		seen[h] = true
	}

	add(fb.CreateContext(0, 0, 2))
	add(fb.CreateWindowSurface(0, 16, 16))
	add(fb.CreateColorBuffer(16, 16, GLRGBA))
	ctx := fb.CreateContext(0, 0, 2)
	add(ctx)
	cb := fb.CreateColorBuffer(8, 8, GLRGBA)
	add(cb)
	add(fb.CreateClientImage(ctx, 0x0DE1, cb))
}

func TestCreateContextValidation(t *testing.T) {
	fb, _ := newTestFB(t)

	if h := fb.CreateContext(99, 0, 2); h != 0 {
		t.Errorf("unknown config should fail, got handle %d", h)
	}
	if h := fb.CreateContext(0, 12345, 2); h != 0 {
		t.Errorf("unknown share context should fail, got handle %d", h)
	}

	base := fb.CreateContext(0, 0, 2)
	if base == 0 {
		t.Fatal("CreateContext failed")
	}
	if h := fb.CreateContext(0, base, 3); h == 0 {
		t.Error("sharing with a live context should succeed")
	}
}

func TestCreateColorBufferValidation(t *testing.T) {
	fb, _ := newTestFB(t)

	if h := fb.CreateColorBuffer(0, 16, GLRGBA); h != 0 {
		t.Error("zero width should fail")
	}
	if h := fb.CreateColorBuffer(16, 16, 0xBEEF); h != 0 {
		t.Error("unknown internal format should fail")
	}
}

func TestColorBufferRefCounting(t *testing.T) {
	fb, _ := newTestFB(t)

	cb := fb.CreateColorBuffer(16, 16, GLRGBA)
	if cb == 0 {
		t.Fatal("CreateColorBuffer failed")
	}
	if rc := fb.ColorBufferRefCount(cb); rc != 1 {
		t.Fatalf("refcount after create = %d, want 1", rc)
	}

	if ret := fb.OpenColorBuffer(cb); ret != 0 {
		t.Fatalf("OpenColorBuffer() = %d, want 0", ret)
	}
	if rc := fb.ColorBufferRefCount(cb); rc != 2 {
		t.Fatalf("refcount after open = %d, want 2", rc)
	}

	fb.CloseColorBuffer(cb)
	if rc := fb.ColorBufferRefCount(cb); rc != 1 {
		t.Fatalf("refcount after close = %d, want 1", rc)
	}

	fb.CloseColorBuffer(cb)
	if rc := fb.ColorBufferRefCount(cb); rc != 0 {
		t.Fatal("buffer should be destroyed at refcount 0")
	}
	if ret := fb.OpenColorBuffer(cb); ret != -1 {
		t.Errorf("OpenColorBuffer(dead) = %d, want -1", ret)
	}
}

func TestOpenColorBufferUnknown(t *testing.T) {
	fb, _ := newTestFB(t)
	if ret := fb.OpenColorBuffer(4242); ret != -1 {
		t.Errorf("OpenColorBuffer(unknown) = %d, want -1", ret)
	}
}

func TestSetWindowSurfaceColorBuffer(t *testing.T) {
	fb, _ := newTestFB(t)

	surf := fb.CreateWindowSurface(0, 16, 16)
	cb1 := fb.CreateColorBuffer(16, 16, GLRGBA)
	cb2 := fb.CreateColorBuffer(16, 16, GLRGBA)

	if !fb.SetWindowSurfaceColorBuffer(surf, cb1) {
		t.Fatal("bind cb1 failed")
	}
	if rc := fb.ColorBufferRefCount(cb1); rc != 2 {
		t.Errorf("cb1 refcount = %d, want 2 (surface holds one)", rc)
	}

	// Rebinding drops the old reference and takes a new one.
	if !fb.SetWindowSurfaceColorBuffer(surf, cb2) {
		t.Fatal("bind cb2 failed")
	}
	if rc := fb.ColorBufferRefCount(cb1); rc != 1 {
		t.Errorf("cb1 refcount after rebind = %d, want 1", rc)
	}
	if rc := fb.ColorBufferRefCount(cb2); rc != 2 {
		t.Errorf("cb2 refcount after rebind = %d, want 2", rc)
	}
	if got := fb.WindowSurfaceColorBuffer(surf); got != cb2 {
		t.Errorf("bound buffer = %d, want %d", got, cb2)
	}

	if fb.SetWindowSurfaceColorBuffer(surf, 999) {
		t.Error("binding an unknown buffer should fail")
	}
	if fb.SetWindowSurfaceColorBuffer(999, cb1) {
		t.Error("binding to an unknown surface should fail")
	}
}

func TestDestroyWindowSurfaceReleasesBuffer(t *testing.T) {
	fb, _ := newTestFB(t)

	surf := fb.CreateWindowSurface(0, 16, 16)
	cb := fb.CreateColorBuffer(16, 16, GLRGBA)
	fb.SetWindowSurfaceColorBuffer(surf, cb)

	fb.DestroyWindowSurface(surf)
	if rc := fb.ColorBufferRefCount(cb); rc != 1 {
		t.Errorf("refcount after surface destroy = %d, want 1", rc)
	}
}

func TestFlushWindowSurfaceColorBuffer(t *testing.T) {
	fb, _ := newTestFB(t)

	surf := fb.CreateWindowSurface(0, 4, 4)
	cb := fb.CreateColorBuffer(4, 4, GLRGBA)

	if fb.FlushWindowSurfaceColorBuffer(surf) {
		t.Error("flush with no bound buffer should fail")
	}

	fb.SetWindowSurfaceColorBuffer(surf, cb)

	// Paint the surface through its backing store and flush.
	fb.mu.Lock()
	ws := fb.surfaces[surf]
	ws.img.Pix[0] = 0xAB
	fb.mu.Unlock()

	if !fb.FlushWindowSurfaceColorBuffer(surf) {
		t.Fatal("flush failed")
	}

	fb.mu.RLock()
	got := fb.colorBuffers[cb].img.Pix[0]
	fb.mu.RUnlock()
	if got != 0xAB {
		t.Errorf("color buffer pixel = 0x%02x, want 0xAB", got)
	}

	if fb.FlushWindowSurfaceColorBuffer(12345) {
		t.Error("flush of unknown surface should fail")
	}
}

func TestBindContext(t *testing.T) {
	fb, _ := newTestFB(t)

	ctx := fb.CreateContext(0, 0, 2)
	surf := fb.CreateWindowSurface(0, 16, 16)

	if !fb.BindContext(0, 0, 0) {
		t.Error("all-zero triple is the explicit unbind and must succeed")
	}
	if !fb.BindContext(ctx, surf, surf) {
		t.Error("valid triple should bind")
	}
	if fb.BindContext(ctx, 0, 0) {
		t.Error("zero surfaces with a live context should fail")
	}
	if fb.BindContext(9999, surf, surf) {
		t.Error("unknown context should fail")
	}
	if fb.BindContext(ctx, surf, 9999) {
		t.Error("unknown read surface should fail")
	}
}

func TestReadUpdateColorBufferRGBA(t *testing.T) {
	fb, _ := newTestFB(t)
	cb := fb.CreateColorBuffer(4, 4, GLRGBA)

	src := make([]byte, 2*2*4)
	for i := range src {
		src[i] = byte(i + 1)
	}
	if err := fb.UpdateColorBuffer(cb, 1, 1, 2, 2, GLRGBA, GLUnsignedByte, src); err != nil {
		t.Fatalf("UpdateColorBuffer() error = %v", err)
	}

	dst := make([]byte, 2*2*4)
	if err := fb.ReadColorBuffer(cb, 1, 1, 2, 2, GLRGBA, GLUnsignedByte, dst); err != nil {
		t.Fatalf("ReadColorBuffer() error = %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestReadUpdateColorBufferRGB(t *testing.T) {
	fb, _ := newTestFB(t)
	cb := fb.CreateColorBuffer(2, 1, GLRGBA)

	src := []byte{10, 20, 30, 40, 50, 60}
	if err := fb.UpdateColorBuffer(cb, 0, 0, 2, 1, GLRGB, GLUnsignedByte, src); err != nil {
		t.Fatalf("UpdateColorBuffer() error = %v", err)
	}

	dst := make([]byte, 6)
	if err := fb.ReadColorBuffer(cb, 0, 0, 2, 1, GLRGB, GLUnsignedByte, dst); err != nil {
		t.Fatalf("ReadColorBuffer() error = %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, dst[i], src[i])
		}
	}

	// Alpha is forced opaque on RGB updates.
	rgba := make([]byte, 2*4)
	if err := fb.ReadColorBuffer(cb, 0, 0, 2, 1, GLRGBA, GLUnsignedByte, rgba); err != nil {
		t.Fatalf("ReadColorBuffer(RGBA) error = %v", err)
	}
	if rgba[3] != 0xFF || rgba[7] != 0xFF {
		t.Error("RGB update should leave alpha opaque")
	}
}

func TestReadUpdateErrors(t *testing.T) {
	fb, _ := newTestFB(t)
	cb := fb.CreateColorBuffer(4, 4, GLRGBA)

	if err := fb.UpdateColorBuffer(999, 0, 0, 1, 1, GLRGBA, GLUnsignedByte, make([]byte, 4)); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("unknown handle error = %v, want ErrUnknownHandle", err)
	}
	if err := fb.UpdateColorBuffer(cb, 2, 2, 4, 4, GLRGBA, GLUnsignedByte, make([]byte, 64)); !errors.Is(err, ErrBadRect) {
		t.Errorf("out of bounds error = %v, want ErrBadRect", err)
	}
	if err := fb.UpdateColorBuffer(cb, 0, 0, 2, 2, GLRGBA, GLUnsignedByte, make([]byte, 3)); !errors.Is(err, ErrShortPixels) {
		t.Errorf("short pixels error = %v, want ErrShortPixels", err)
	}
	if err := fb.ReadColorBuffer(cb, 0, 0, 1, 1, GLRGBA, 0x1406, make([]byte, 4)); !errors.Is(err, ErrBadFormat) {
		t.Errorf("bad type error = %v, want ErrBadFormat", err)
	}
}

func TestPost(t *testing.T) {
	fb, disp := newTestFB(t)

	cb := fb.CreateColorBuffer(64, 64, GLRGBA)
	px := []byte{0x11, 0x22, 0x33, 0xFF}
	if err := fb.UpdateColorBuffer(cb, 0, 0, 1, 1, GLRGBA, GLUnsignedByte, px); err != nil {
		t.Fatalf("UpdateColorBuffer() error = %v", err)
	}

	if !fb.Post(cb) {
		t.Fatal("Post failed")
	}
	if disp.Posts() != 1 {
		t.Errorf("display posts = %d, want 1", disp.Posts())
	}
	front := disp.Front()
	if got := front.RGBAAt(0, 0); got.R != 0x11 || got.G != 0x22 || got.B != 0x33 {
		t.Errorf("front(0,0) = %+v, want posted pixel", got)
	}

	if fb.Post(9999) {
		t.Error("posting an unknown buffer should fail")
	}
}

func TestClientImageSnapshotIsolation(t *testing.T) {
	fb, _ := newTestFB(t)

	ctx := fb.CreateContext(0, 0, 2)
	cb := fb.CreateColorBuffer(2, 2, GLRGBA)
	fb.UpdateColorBuffer(cb, 0, 0, 1, 1, GLRGBA, GLUnsignedByte, []byte{9, 9, 9, 9})

	img := fb.CreateClientImage(ctx, 0x0DE1, cb)
	if img == 0 {
		t.Fatal("CreateClientImage failed")
	}

	// Later writes to the source must not flow into the image.
	fb.UpdateColorBuffer(cb, 0, 0, 1, 1, GLRGBA, GLUnsignedByte, []byte{1, 1, 1, 1})
	fb.mu.RLock()
	snap := fb.clientImages[img].img.Pix[0]
	fb.mu.RUnlock()
	if snap != 9 {
		t.Errorf("client image pixel = %d, want the snapshot value 9", snap)
	}

	if got := fb.DestroyClientImage(img); got != 1 {
		t.Errorf("DestroyClientImage() = %d, want 1", got)
	}
	if got := fb.DestroyClientImage(img); got != 0 {
		t.Errorf("DestroyClientImage(dead) = %d, want 0", got)
	}

	if h := fb.CreateClientImage(999, 0x0DE1, cb); h != 0 {
		t.Error("unknown context should fail")
	}
	if h := fb.CreateClientImage(ctx, 0x0DE1, 999); h != 0 {
		t.Error("unknown buffer should fail")
	}
}

func TestStrings(t *testing.T) {
	fb, _ := newTestFB(t)

	if got := fb.EGLString(EGLVersion); got != "1.4" {
		t.Errorf("EGLString(version) = %q, want 1.4", got)
	}
	if fb.EGLString(EGLVendor) == "" {
		t.Error("EGL vendor should not be empty")
	}
	if fb.EGLString(0xFFFF) != "" {
		t.Error("unknown EGL name should be empty")
	}
	if fb.GLString(GLRenderer) == "" {
		t.Error("GL renderer should not be empty")
	}
	if fb.GLString(0xFFFF) != "" {
		t.Error("unknown GL name should be empty")
	}
}

func TestConcurrentHandleTraffic(t *testing.T) {
	fb, _ := newTestFB(t)

	const workers = 16
	const rounds = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				cb := fb.CreateColorBuffer(8, 8, GLRGBA)
				if cb == 0 {
					t.Error("CreateColorBuffer failed under load")
					return
				}
				if fb.OpenColorBuffer(cb) != 0 {
					t.Error("OpenColorBuffer failed under load")
					return
				}
				fb.CloseColorBuffer(cb)
				fb.CloseColorBuffer(cb)
			}
		}()
	}
	wg.Wait()
}
