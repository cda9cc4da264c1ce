package framebuffer

import "image"

// clientImage is the host object behind an EGLImage the guest created
// from a color buffer. It captures the buffer's pixels at creation time;
// later writes to the source buffer do not flow through, which is the
// sharing model the guest-side EGL_KHR_image_base implementation expects
// from this host.
type clientImage struct {
	handle  Handle
	context Handle
	target  uint32
	source  Handle
	img     *image.RGBA
}
