package framebuffer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Errors reported by pixel operations. The dispatcher swallows these into
// the protocol's neutral failure values; they exist for logging and tests.
var (
	ErrUnknownHandle  = errors.New("framebuffer: unknown handle")
	ErrBadFormat      = errors.New("framebuffer: unsupported pixel format")
	ErrBadRect        = errors.New("framebuffer: rectangle out of bounds")
	ErrShortPixels    = errors.New("framebuffer: pixel buffer too small")
	ErrUnknownConfig  = errors.New("framebuffer: unknown config")
	ErrBadDimensions  = errors.New("framebuffer: invalid dimensions")
	ErrNoColorBuffer  = errors.New("framebuffer: no color buffer bound")
	ErrDisplayFailure = errors.New("framebuffer: display rejected frame")
)

// colorBuffer is a guest-shareable pixel store. Guests pass its handle
// between processes (gralloc), so it is reference counted: create starts
// the count at 1, every open adds one, every close drops one, and the
// buffer dies when the count reaches zero.
type colorBuffer struct {
	handle         Handle
	width, height  int32
	internalFormat uint32
	format         gputypes.TextureFormat
	img            *image.RGBA
	refcount       int32

	// Host-side binding bookkeeping for BindTexture/BindRenderbuffer.
	boundTexture      bool
	boundRenderbuffer bool
}

// textureFormatFor maps a GL internal format from the wire to the
// gputypes format the backing store is kept in. Everything is stored
// RGBA8; the internal format is remembered for repacking on read/update.
func textureFormatFor(internalFormat uint32) (gputypes.TextureFormat, error) {
	switch internalFormat {
	case GLRGBA, GLRGB:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case GLBGRA:
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: 0x%04x", ErrBadFormat, internalFormat)
	}
}

func newColorBuffer(h Handle, width, height int32, internalFormat uint32) (*colorBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	format, err := textureFormatFor(internalFormat)
	if err != nil {
		return nil, err
	}
	return &colorBuffer{
		handle:         h,
		width:          width,
		height:         height,
		internalFormat: internalFormat,
		format:         format,
		img:            image.NewRGBA(image.Rect(0, 0, int(width), int(height))),
		refcount:       1,
	}, nil
}

func (cb *colorBuffer) rect(x, y, w, h int32) (image.Rectangle, error) {
	r := image.Rect(int(x), int(y), int(x+w), int(y+h))
	if w <= 0 || h <= 0 || !r.In(cb.img.Bounds()) {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d+%d+%d in %dx%d",
			ErrBadRect, w, h, x, y, cb.width, cb.height)
	}
	return r, nil
}

// bytesPerPixel returns the wire pixel stride for a format/type pair, or
// 0 when the pair is unsupported.
func bytesPerPixel(format, typ uint32) int {
	if typ != GLUnsignedByte {
		return 0
	}
	switch format {
	case GLRGBA, GLBGRA:
		return 4
	case GLRGB:
		return 3
	default:
		return 0
	}
}

// read copies the rectangle into pixels using the wire format.
func (cb *colorBuffer) read(x, y, w, h int32, format, typ uint32, pixels []byte) error {
	bpp := bytesPerPixel(format, typ)
	if bpp == 0 {
		return fmt.Errorf("%w: format=0x%04x type=0x%04x", ErrBadFormat, format, typ)
	}
	r, err := cb.rect(x, y, w, h)
	if err != nil {
		return err
	}
	if len(pixels) < int(w)*int(h)*bpp {
		return ErrShortPixels
	}

	di := 0
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		si := cb.img.PixOffset(r.Min.X, yy)
		for xx := 0; xx < int(w); xx++ {
			px := cb.img.Pix[si : si+4]
			switch format {
			case GLRGBA:
				copy(pixels[di:di+4], px)
			case GLBGRA:
				pixels[di+0] = px[2]
				pixels[di+1] = px[1]
				pixels[di+2] = px[0]
				pixels[di+3] = px[3]
			case GLRGB:
				copy(pixels[di:di+3], px[:3])
			}
			si += 4
			di += bpp
		}
	}
	return nil
}

// update copies pixels in the wire format into the rectangle.
func (cb *colorBuffer) update(x, y, w, h int32, format, typ uint32, pixels []byte) error {
	bpp := bytesPerPixel(format, typ)
	if bpp == 0 {
		return fmt.Errorf("%w: format=0x%04x type=0x%04x", ErrBadFormat, format, typ)
	}
	r, err := cb.rect(x, y, w, h)
	if err != nil {
		return err
	}
	if len(pixels) < int(w)*int(h)*bpp {
		return ErrShortPixels
	}

	si := 0
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		di := cb.img.PixOffset(r.Min.X, yy)
		for xx := 0; xx < int(w); xx++ {
			px := cb.img.Pix[di : di+4]
			switch format {
			case GLRGBA:
				copy(px, pixels[si:si+4])
			case GLBGRA:
				px[0] = pixels[si+2]
				px[1] = pixels[si+1]
				px[2] = pixels[si+0]
				px[3] = pixels[si+3]
			case GLRGB:
				copy(px[:3], pixels[si:si+3])
				px[3] = 0xFF
			}
			si += bpp
			di += 4
		}
	}
	return nil
}

// snapshot returns a copy of the full pixel store.
func (cb *colorBuffer) snapshot() *image.RGBA {
	out := image.NewRGBA(cb.img.Bounds())
	copy(out.Pix, cb.img.Pix)
	return out
}
