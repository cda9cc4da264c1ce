package checksum

import "fmt"

// Version identifies a checksum scheme for the wire protocol.
// Version 0 means no checksumming.
type Version uint32

// MaxVersion is the newest scheme this host understands.
const MaxVersion Version = 1

// extensionPrefix is the marker advertised through GL_EXTENSIONS.
// Old guests match the exact _v1 string, so the format is frozen.
const extensionPrefix = "ANDROID_EMU_CHECKSUM_HELPER_v"

// MaxVersionString returns the extension marker for MaxVersion,
// e.g. "ANDROID_EMU_CHECKSUM_HELPER_v1".
func MaxVersionString() string {
	return VersionString(MaxVersion)
}

// VersionString returns the extension marker for v.
func VersionString(v Version) string {
	return fmt.Sprintf("%s%d", extensionPrefix, v)
}

// Valid reports whether v names a scheme this host can honor.
func (v Version) Valid() bool {
	return v > 0 && v <= MaxVersion
}
