package framebuffer

// GL and EGL enum values that cross the wire. The guest driver sends the
// numeric values; the names here exist so host code stays readable.
const (
	// Pixel formats and types.
	GLRGB          uint32 = 0x1907
	GLRGBA         uint32 = 0x1908
	GLBGRA         uint32 = 0x80E1
	GLUnsignedByte uint32 = 0x1401

	// glGetString names.
	GLVendor     uint32 = 0x1F00
	GLRenderer   uint32 = 0x1F01
	GLVersion    uint32 = 0x1F02
	GLExtensions uint32 = 0x1F03

	// eglQueryString names.
	EGLVendor     uint32 = 0x3053
	EGLVersion    uint32 = 0x3054
	EGLExtensions uint32 = 0x3055

	// eglChooseConfig attribute keys.
	EGLAlphaSize   uint32 = 0x3021
	EGLBlueSize    uint32 = 0x3022
	EGLGreenSize   uint32 = 0x3023
	EGLRedSize     uint32 = 0x3024
	EGLDepthSize   uint32 = 0x3025
	EGLStencilSize uint32 = 0x3026
	EGLSurfaceType uint32 = 0x3033
	EGLNone        uint32 = 0x3038

	// EGL_SURFACE_TYPE bits.
	EGLPbufferBit uint32 = 0x0001
	EGLWindowBit  uint32 = 0x0004
)
