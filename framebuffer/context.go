package framebuffer

// renderContext is a host rendering context created on behalf of a guest.
type renderContext struct {
	handle Handle
	config uint32
	share  Handle

	// gles2 records which API class the context speaks. The guest sends
	// glVersion 1, 2 or 3; versions 2 and 3 both map to a GLES2-class
	// host context, matching the guest-side EGL.
	gles2 bool
}

func newRenderContext(h Handle, config uint32, share Handle, glVersion int32) *renderContext {
	return &renderContext{
		handle: h,
		config: config,
		share:  share,
		gles2:  glVersion == 2 || glVersion == 3,
	}
}
