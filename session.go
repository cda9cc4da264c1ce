package renderctl

import (
	"sync"

	"github.com/gogpu/renderctl/checksum"
)

// Binding is a session's make-current triple. The zero value means
// nothing is bound.
type Binding struct {
	Context uint32
	Draw    uint32
	Read    uint32
}

// Session carries the per-caller state the guest kernel keeps in
// thread-locals: the currently bound rendering context and the negotiated
// checksum version. The outer decode layer creates one session per guest
// render thread and passes it into every dispatcher call for that thread.
//
// The dispatcher borrows sessions; RenderControl owns them.
type Session struct {
	id uint64

	mu       sync.Mutex
	bind     Binding
	checksum checksum.Version

	// trivialContext remembers a context auto-created for driver-string
	// queries so CloseSession can destroy it.
	trivialContext uint32
	trivialSurface uint32
}

// ID returns the caller-provided session identifier.
func (s *Session) ID() uint64 { return s.id }

// Binding returns a consistent snapshot of the make-current triple.
// It never observes a partially applied rebind.
func (s *Session) Binding() Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bind
}

// ChecksumVersion returns the negotiated checksum version, 0 when none.
func (s *Session) ChecksumVersion() checksum.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checksum
}

// Session returns the session for id, creating it on first use.
func (rc *RenderControl) Session(id uint64) *Session {
	rc.sessMu.Lock()
	defer rc.sessMu.Unlock()

	if s, ok := rc.sessions[id]; ok {
		return s
	}
	s := &Session{id: id}
	rc.sessions[id] = s
	return s
}

// CloseSession destroys the session for id, tearing down any trivial
// query context that was created on its behalf. Resources the guest
// created through the session (contexts, surfaces, buffers) stay alive;
// they are owned by the framebuffer and have their own lifecycle.
func (rc *RenderControl) CloseSession(id uint64) {
	rc.sessMu.Lock()
	s, ok := rc.sessions[id]
	delete(rc.sessions, id)
	rc.sessMu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	trivCtx, trivSurf := s.trivialContext, s.trivialSurface
	s.bind = Binding{}
	s.trivialContext, s.trivialSurface = 0, 0
	s.mu.Unlock()

	if trivCtx == 0 && trivSurf == 0 {
		return
	}
	if fb := rc.frame(); fb != nil {
		fb.DestroyContext(handle(trivCtx))
		fb.DestroyWindowSurface(handle(trivSurf))
	}
}
