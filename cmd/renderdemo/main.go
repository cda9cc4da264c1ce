// Command renderdemo drives the render-control surface the way a guest
// would: it creates a context, a window surface and a color buffer, walks
// the gralloc lock/update protocol to fill the buffer, presents it, and
// saves the resulting frame as a PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/renderctl"
	"github.com/gogpu/renderctl/display"
	"github.com/gogpu/renderctl/feature"
	"github.com/gogpu/renderctl/framebuffer"

	_ "github.com/gogpu/renderctl/backend/wgpu"
)

func main() {
	var (
		width    = flag.Int("width", 320, "framebuffer width")
		height   = flag.Int("height", 240, "framebuffer height")
		output   = flag.String("output", "frame.png", "output file")
		features = flag.String("features", "", "feature flag file (TOML)")
		verbose  = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if *verbose {
		renderctl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	feats, err := feature.Load(*features)
	if err != nil {
		log.Fatalf("Failed to load features: %v", err)
	}
	log.Printf("display backends: registered %v, available %v",
		display.List(), display.Available())

	disp := display.NewSoftware(int32(*width), int32(*height))
	fb, err := framebuffer.New(int32(*width), int32(*height), framebuffer.Options{
		Features: feats,
		Display:  disp,
		Logger:   renderctl.Logger(),
	})
	if err != nil {
		log.Fatalf("Failed to create framebuffer: %v", err)
	}
	defer fb.Close()

	rc := renderctl.New(renderctl.Options{Features: feats})
	rc.Attach(fb)
	sess := rc.Session(1)

	log.Printf("renderer v%d, EGL %s", rc.RendererVersion(), queryString(rc, framebuffer.EGLVersion))

	ctx := rc.CreateContext(0, 0, 2)
	surf := rc.CreateWindowSurface(0, uint32(*width), uint32(*height))
	cb := rc.CreateColorBuffer(uint32(*width), uint32(*height), framebuffer.GLRGBA)
	if ctx == 0 || surf == 0 || cb == 0 {
		log.Fatal("Failed to create render resources")
	}
	rc.SetWindowColorBuffer(surf, cb)
	if !rc.MakeCurrent(sess, ctx, surf, surf) {
		log.Fatal("Failed to make current")
	}

	// Guest-style buffer write: lock, upload, unlock.
	if rc.ColorBufferCacheFlush(cb, 0, 0) != 0 {
		log.Fatal("Cache flush failed")
	}
	if rc.UpdateColorBuffer(cb, 0, 0, int32(*width), int32(*height),
		framebuffer.GLRGBA, framebuffer.GLUnsignedByte, gradient(*width, *height)) != 0 {
		log.Fatal("Update failed")
	}

	if rc.FlushWindowColorBuffer(surf) != 0 {
		log.Fatal("Flush failed")
	}
	rc.FBPost(cb)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, disp.Front()); err != nil {
		log.Fatalf("Failed to encode: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d)", *output, *width, *height)
}

func queryString(rc *renderctl.RenderControl, name uint32) string {
	n := rc.QueryEGLString(name, nil)
	if n >= 0 {
		return "?"
	}
	buf := make([]byte, -n)
	rc.QueryEGLString(name, buf)
	return string(buf[:len(buf)-1])
}

// gradient fills a horizontal red and vertical green ramp.
func gradient(w, h int) []byte {
	px := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			px[i+0] = byte(255 * x / w)
			px[i+1] = byte(255 * y / h)
			px[i+2] = 0x40
			px[i+3] = 0xFF
		}
	}
	return px
}
