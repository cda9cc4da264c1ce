package framebuffer

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// windowSurface is a drawable target associated with a guest window.
// The guest renders into it, binds a color buffer to it, and flushes the
// surface contents into that buffer for posting.
//
// The same type backs the 1x1 pbuffer surfaces used by trivial query
// contexts; pbuffer surfaces never have a color buffer bound.
type windowSurface struct {
	handle        Handle
	config        uint32
	width, height int32
	pbuffer       bool

	img         *image.RGBA
	colorBuffer Handle // 0 when unbound
}

func newWindowSurface(h Handle, config uint32, width, height int32, pbuffer bool) (*windowSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	return &windowSurface{
		handle:  h,
		config:  config,
		width:   width,
		height:  height,
		pbuffer: pbuffer,
		img:     image.NewRGBA(image.Rect(0, 0, int(width), int(height))),
	}, nil
}

// flushTo blits the surface contents into cb, scaling when the two
// differ in size.
func (ws *windowSurface) flushTo(cb *colorBuffer) {
	if ws.img.Bounds() == cb.img.Bounds() {
		copy(cb.img.Pix, ws.img.Pix)
		return
	}
	xdraw.NearestNeighbor.Scale(cb.img, cb.img.Bounds(), ws.img, ws.img.Bounds(), xdraw.Src, nil)
}
