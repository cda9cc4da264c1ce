// Package wgpu provides a GPU-backed display backend using gogpu/wgpu.
//
// Importing the package registers the backend with the display registry
// at GPU priority; hosts opt in with a blank import:
//
//	import _ "github.com/gogpu/renderctl/backend/wgpu"
//
// When no usable GPU adapter exists the backend reports itself
// unavailable and the registry falls through to the software display.
//
// Build with the nogpu tag to compile the package out entirely.
package wgpu
