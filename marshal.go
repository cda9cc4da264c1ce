package renderctl

// Query results cross the wire as nul-terminated byte strings written into
// a caller-provided fixed buffer. The caller does not know the required
// size up front, so the pack helpers implement a two-step contract: a nil
// or undersized destination gets back the negated required length and no
// write; a sufficient destination gets the string plus terminator and the
// positive length written.

// packString writes s and a trailing NUL into dst and returns the number
// of bytes written, including the terminator. If dst is nil or smaller
// than len(s)+1 nothing is written and -(len(s)+1) is returned so the
// caller can reallocate and retry.
func packString(dst []byte, s string) int32 {
	need := int32(len(s)) + 1
	if dst == nil || int32(len(dst)) < need {
		return -need
	}
	copy(dst, s)
	dst[len(s)] = 0
	return need
}

// joinExtension appends marker to a base extension list with a single
// separating space. The result is packed in one write so the length
// accounting covers base, separator, marker, and terminator together.
func joinExtension(base, marker string) string {
	if marker == "" {
		return base
	}
	if base == "" {
		return marker
	}
	return base + " " + marker
}
