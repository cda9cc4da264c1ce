package feature

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	set := Default()
	if !set.GrallocSync {
		t.Error("Default should enable gralloc_sync")
	}
	if !set.GLPipeChecksum {
		t.Error("Default should enable gl_pipe_checksum")
	}
	if set.Display != "" {
		t.Errorf("Default display = %q, want auto", set.Display)
	}
}

func TestLoadReader(t *testing.T) {
	src := `
gralloc_sync = false
display = "software"
`
	set, err := LoadReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	if set.GrallocSync {
		t.Error("gralloc_sync should be off")
	}
	if !set.GLPipeChecksum {
		t.Error("gl_pipe_checksum should keep its default when unset")
	}
	if set.Display != "software" {
		t.Errorf("display = %q, want software", set.Display)
	}
}

func TestLoadReaderUnknownKey(t *testing.T) {
	_, err := LoadReader(strings.NewReader(`graloc_sync = true`))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "graloc_sync") {
		t.Errorf("error %q should name the unknown key", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	set, err := Load("testdata/does-not-exist.toml")
	if err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}
	if set != Default() {
		t.Errorf("missing file should yield Default, got %+v", set)
	}
}
