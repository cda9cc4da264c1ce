// Package checksum defines the wire-protocol checksum versioning scheme a
// guest can negotiate.
//
// A guest discovers host support by looking for the version marker in the
// GL_EXTENSIONS string and then selects a scheme with the
// rcSelectChecksumCalculator operation. Only the negotiation surface lives
// here; computing and verifying the per-packet checksums is the stream
// decoder's concern.
package checksum
