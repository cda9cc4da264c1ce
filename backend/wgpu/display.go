//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/renderctl/display"
)

// BackendName is this backend's registry identifier.
const BackendName = "wgpu"

// ErrNoGPU indicates that no usable GPU adapter was found.
var ErrNoGPU = errors.New("wgpu: no GPU adapter available")

// Display presents guest frames through a wgpu device.
//
// The device is either owned (instance/adapter/device/queue created here,
// released in reverse order on Close) or borrowed from an external
// gpucontext.DeviceProvider via SetDeviceProvider, in which case Close
// releases nothing.
//
// Frames are staged CPU-side; the texture upload is dispatched once wgpu
// texture support is complete, mirroring how gg gates its upload path.
type Display struct {
	mu sync.Mutex

	width, height int32

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID
	gpuInfo  *GPUInfo

	provider gpucontext.DeviceProvider

	staged *image.RGBA
	posts  uint64
	closed bool
}

// New creates a wgpu display of the given size, owning its device.
func New(width, height int32) (*Display, error) {
	d := &Display{width: width, height: height}
	if err := d.initOwnedDevice(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithProvider creates a wgpu display that borrows the device of an
// external provider (typically the gogpu window the host embeds us in).
func NewWithProvider(provider gpucontext.DeviceProvider, width, height int32) (*Display, error) {
	if provider == nil {
		return nil, errors.New("wgpu: provider must not be nil")
	}
	return &Display{width: width, height: height, provider: provider}, nil
}

func (d *Display) initOwnedDevice() error {
	desc := &gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	}
	d.instance = core.NewInstance(desc)

	adapterID, err := d.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	d.adapter = adapterID
	d.gpuInfo, _ = getGPUInfo(adapterID)

	deviceID, err := createDevice(adapterID, "renderctl-display")
	if err != nil {
		_ = releaseAdapter(adapterID)
		return fmt.Errorf("wgpu: device creation failed: %w", err)
	}
	d.device = deviceID

	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		return fmt.Errorf("wgpu: queue retrieval failed: %w", err)
	}
	d.queue = queueID
	return nil
}

// Size returns the display dimensions in pixels.
func (d *Display) Size() (int32, int32) {
	return d.width, d.height
}

// Post stages a frame for presentation.
func (d *Display) Post(img *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return display.ErrClosed
	}
	if img == nil {
		return nil
	}

	if d.staged == nil || d.staged.Bounds() != img.Bounds() {
		d.staged = image.NewRGBA(img.Bounds())
	}
	copy(d.staged.Pix, img.Pix)
	d.posts++

	// TODO: core.QueueWriteTexture of d.staged into the swapchain texture
	// once wgpu texture support lands; staging keeps the protocol path
	// exercisable until then.
	return nil
}

// Strings returns the driver identification strings, naming the adapter
// when its info is known.
func (d *Display) Strings() display.Strings {
	renderer := "wgpu Display"
	vendor := "gogpu"
	if d.gpuInfo != nil {
		renderer = d.gpuInfo.String()
		if d.gpuInfo.Vendor != "" {
			vendor = d.gpuInfo.Vendor
		}
	}
	return display.Strings{
		Vendor:     vendor,
		Renderer:   renderer,
		Version:    "OpenGL ES 2.0 (renderctl wgpu)",
		Extensions: "GL_OES_EGL_image GL_OES_depth24 GL_OES_rgb8_rgba8 GL_OES_texture_npot",
	}
}

// Close releases GPU resources in reverse order of creation. Borrowed
// devices are left alone. Close is idempotent.
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.staged = nil

	if d.provider != nil {
		return nil
	}

	var firstErr error
	if err := releaseDevice(d.device); err != nil {
		firstErr = err
	}
	d.device = core.DeviceID{}

	if err := releaseAdapter(d.adapter); err != nil && firstErr == nil {
		firstErr = err
	}
	d.adapter = core.AdapterID{}
	return firstErr
}

// available probes for a usable adapter once and caches the answer.
var available = sync.OnceValue(func() bool {
	instance := core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})
	adapterID, err := instance.RequestAdapter(&gputypes.RequestAdapterOptions{})
	if err != nil {
		return false
	}
	_ = releaseAdapter(adapterID)
	return true
})

func init() {
	display.Register(BackendName, 100, func(opts display.Options) (display.Display, error) {
		return New(opts.Width, opts.Height)
	}, available)
}
