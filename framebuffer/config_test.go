package framebuffer

import "testing"

func TestConfigListPackInfo(t *testing.T) {
	l := DefaultConfigs()
	if l.Count() == 0 {
		t.Fatal("default config list should not be empty")
	}
	if l.NumAttribs() != int32(len(attribKeys)) {
		t.Errorf("NumAttribs() = %d, want %d", l.NumAttribs(), len(attribKeys))
	}
}

func TestConfigListPack(t *testing.T) {
	l := DefaultConfigs()
	need := (l.Count() + 1) * l.NumAttribs()

	if got := l.Pack(nil); got != -need {
		t.Errorf("Pack(nil) = %d, want %d", got, -need)
	}
	if got := l.Pack(make([]uint32, need-1)); got != -need {
		t.Errorf("Pack(short) = %d, want %d", got, -need)
	}

	buf := make([]uint32, need)
	if got := l.Pack(buf); got != l.Count() {
		t.Fatalf("Pack() = %d, want %d", got, l.Count())
	}

	// Row 0 carries the attribute keys in wire order.
	for i, key := range attribKeys {
		if buf[i] != key {
			t.Errorf("buf[%d] = 0x%04x, want key 0x%04x", i, buf[i], key)
		}
	}

	// Config 0 is RGBA8888: red size sits under the EGLRedSize column.
	row := int(l.NumAttribs())
	for i, key := range attribKeys {
		if key == EGLRedSize && buf[row+i] != 8 {
			t.Errorf("config 0 red size = %d, want 8", buf[row+i])
		}
	}
}

func TestConfigListChoose(t *testing.T) {
	l := DefaultConfigs()

	tests := []struct {
		name    string
		attribs []int32
		want    int32
	}{
		{
			name:    "rgba8888",
			attribs: []int32{int32(EGLRedSize), 8, int32(EGLGreenSize), 8, int32(EGLBlueSize), 8, int32(EGLAlphaSize), 8, int32(EGLNone)},
			want:    2, // with and without depth
		},
		{
			name:    "depth",
			attribs: []int32{int32(EGLDepthSize), 24, int32(EGLNone)},
			want:    1,
		},
		{
			name:    "anything",
			attribs: []int32{int32(EGLNone)},
			want:    l.Count(),
		},
		{
			name:    "too deep",
			attribs: []int32{int32(EGLDepthSize), 32, int32(EGLNone)},
			want:    0,
		},
		{
			name:    "empty",
			attribs: nil,
			want:    0,
		},
		{
			name:    "unterminated",
			attribs: []int32{int32(EGLRedSize), 8},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Choose(tt.attribs, nil); got != tt.want {
				t.Errorf("Choose() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigListChooseWritesIndices(t *testing.T) {
	l := DefaultConfigs()
	out := make([]uint32, l.Count())
	n := l.Choose([]int32{int32(EGLDepthSize), 24, int32(EGLNone)}, out)
	if n != 1 {
		t.Fatalf("Choose() = %d, want 1", n)
	}
	if cfg := l.Get(out[0]); cfg == nil || cfg.Depth < 24 {
		t.Errorf("chosen config %d does not satisfy depth request", out[0])
	}
}
