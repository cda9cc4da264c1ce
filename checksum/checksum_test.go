package checksum

import "testing"

func TestMaxVersionString(t *testing.T) {
	got := MaxVersionString()
	want := "ANDROID_EMU_CHECKSUM_HELPER_v1"
	if got != want {
		t.Errorf("MaxVersionString() = %q, want %q", got, want)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		v    Version
		want bool
	}{
		{0, false},
		{1, true},
		{MaxVersion, true},
		{MaxVersion + 1, false},
		{99, false},
	}
	for _, tt := range tests {
		if got := tt.v.Valid(); got != tt.want {
			t.Errorf("Version(%d).Valid() = %v, want %v", tt.v, got, tt.want)
		}
	}
}
