package framebuffer

// Config describes one framebuffer configuration a guest can render
// against. Configs are identified on the wire by their index in the list.
type Config struct {
	Red, Green, Blue, Alpha int32
	Depth, Stencil          int32
	SurfaceType             int32
}

// attribKeys is the fixed attribute order used when packing configs for
// the guest. Row 0 of the packed buffer carries these keys; changing the
// order is a wire break.
var attribKeys = []uint32{
	EGLRedSize,
	EGLGreenSize,
	EGLBlueSize,
	EGLAlphaSize,
	EGLDepthSize,
	EGLStencilSize,
	EGLSurfaceType,
}

func (c *Config) attrib(key uint32) int32 {
	switch key {
	case EGLRedSize:
		return c.Red
	case EGLGreenSize:
		return c.Green
	case EGLBlueSize:
		return c.Blue
	case EGLAlphaSize:
		return c.Alpha
	case EGLDepthSize:
		return c.Depth
	case EGLStencilSize:
		return c.Stencil
	case EGLSurfaceType:
		return c.SurfaceType
	default:
		return 0
	}
}

// ConfigList is an ordered, immutable set of configs.
type ConfigList struct {
	configs []Config
}

// DefaultConfigs returns the configs this host exposes. Config 0 is the
// plain RGBA8888 config the trivial query context is built on; keep it
// first.
func DefaultConfigs() *ConfigList {
	both := int32(EGLWindowBit | EGLPbufferBit)
	return &ConfigList{configs: []Config{
		{Red: 8, Green: 8, Blue: 8, Alpha: 8, SurfaceType: both},
		{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 24, Stencil: 8, SurfaceType: both},
		{Red: 5, Green: 6, Blue: 5, SurfaceType: both},
	}}
}

// Count returns the number of configs.
func (l *ConfigList) Count() int32 {
	return int32(len(l.configs))
}

// NumAttribs returns the number of packed attributes per config.
func (l *ConfigList) NumAttribs() int32 {
	return int32(len(attribKeys))
}

// Get returns the config at index i, or nil when out of range.
func (l *ConfigList) Get(i uint32) *Config {
	if int(i) >= len(l.configs) {
		return nil
	}
	return &l.configs[i]
}

// Pack serializes the list into buf: one row of attribute keys, then one
// row of values per config. On success it returns the config count; when
// buf is nil or too small it returns the negated number of uint32 slots
// required, so the guest can size its buffer and retry.
func (l *ConfigList) Pack(buf []uint32) int32 {
	need := (l.Count() + 1) * l.NumAttribs()
	if buf == nil || int32(len(buf)) < need {
		return -need
	}
	for i, key := range attribKeys {
		buf[i] = key
	}
	for ci := range l.configs {
		row := (ci + 1) * len(attribKeys)
		for ai, key := range attribKeys {
			buf[row+ai] = uint32(l.configs[ci].attrib(key))
		}
	}
	return l.Count()
}

// Choose returns the configs matching the EGL-style attribute list:
// (key, value) pairs terminated by EGL_NONE. Size attributes match any
// config with at least the requested value; the surface type matches when
// every requested bit is present. Matching config indices are written into
// out when it is non-nil (up to its length); the return value is the total
// match count. An empty or malformed attribute list matches nothing.
func (l *ConfigList) Choose(attribs []int32, out []uint32) int32 {
	wanted := make(map[uint32]int32)
	terminated := false
	for i := 0; i < len(attribs); i += 2 {
		key := uint32(attribs[i])
		if key == EGLNone {
			terminated = true
			break
		}
		if i+1 >= len(attribs) {
			break // key without a value
		}
		wanted[key] = attribs[i+1]
	}
	if !terminated {
		return 0
	}

	var n int32
	for ci := range l.configs {
		if !l.configs[ci].matches(wanted) {
			continue
		}
		if out != nil && int(n) < len(out) {
			out[n] = uint32(ci)
		}
		n++
	}
	return n
}

func (c *Config) matches(wanted map[uint32]int32) bool {
	for key, val := range wanted {
		switch key {
		case EGLSurfaceType:
			if c.SurfaceType&val != val {
				return false
			}
		case EGLRedSize, EGLGreenSize, EGLBlueSize, EGLAlphaSize, EGLDepthSize, EGLStencilSize:
			if c.attrib(key) < val {
				return false
			}
		default:
			// Unknown keys are ignored rather than failing the match,
			// matching how permissive the guest-side EGL is.
		}
	}
	return true
}
