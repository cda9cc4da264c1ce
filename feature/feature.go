// Package feature holds the boot-time feature flags for the render-control
// host. Flags are fixed before the first guest call and never change at
// runtime; components capture the values they need at construction.
package feature

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Set is the full flag set. The zero value disables everything; most
// callers start from Default.
type Set struct {
	// GrallocSync enables host-side emulation of the guest's gralloc
	// buffer locking. Without it, frames from different guest threads may
	// present out of order.
	GrallocSync bool `toml:"gralloc_sync"`

	// GLPipeChecksum advertises wire-protocol checksum support to guests
	// through the GL_EXTENSIONS string.
	GLPipeChecksum bool `toml:"gl_pipe_checksum"`

	// Display selects the display backend by registry name.
	// Empty means best available.
	Display string `toml:"display"`
}

// Default returns the flag set used when no config file is present:
// both protocol features on, display auto-selected.
func Default() Set {
	return Set{
		GrallocSync:    true,
		GLPipeChecksum: true,
	}
}

// Load reads a flag set from a TOML file. A missing file is not an error;
// it yields Default so hosts without a config run with stock behavior.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Set{}, fmt.Errorf("feature: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader decodes a flag set from TOML. Unknown keys are rejected so a
// typo in a flag name fails loudly instead of silently running defaults.
func LoadReader(r io.Reader) (Set, error) {
	set := Default()
	meta, err := toml.NewDecoder(r).Decode(&set)
	if err != nil {
		return Set{}, fmt.Errorf("feature: decode: %w", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Set{}, fmt.Errorf("feature: unknown key %q", undec[0].String())
	}
	return set, nil
}
