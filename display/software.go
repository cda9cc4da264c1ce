// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Software is a headless display backend that retains the last posted
// frame in memory. It is the fallback on hosts without a usable GPU and
// the backend of choice in tests, where Front gives direct access to the
// presented pixels.
type Software struct {
	mu     sync.Mutex
	width  int32
	height int32
	front  *image.RGBA
	posts  uint64
	closed bool
}

// NewSoftware creates a software display of the given size.
func NewSoftware(width, height int32) *Software {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &Software{
		width:  width,
		height: height,
		front:  image.NewRGBA(image.Rect(0, 0, int(width), int(height))),
	}
}

// Size returns the display dimensions in pixels.
func (s *Software) Size() (int32, int32) {
	return s.width, s.height
}

// Post copies img into the front buffer, scaling when the sizes differ.
func (s *Software) Post(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if img == nil {
		return nil
	}

	if img.Bounds() == s.front.Bounds() {
		copy(s.front.Pix, img.Pix)
	} else {
		xdraw.NearestNeighbor.Scale(s.front, s.front.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}
	s.posts++
	return nil
}

// Strings returns the driver identification strings.
func (s *Software) Strings() Strings {
	return Strings{
		Vendor:     "gogpu",
		Renderer:   "Software Display",
		Version:    "OpenGL ES 2.0 (renderctl software)",
		Extensions: "GL_OES_EGL_image GL_OES_depth24 GL_OES_rgb8_rgba8",
	}
}

// Close releases the front buffer. Close is idempotent.
func (s *Software) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Front returns a copy of the last presented frame.
func (s *Software) Front() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := image.NewRGBA(s.front.Bounds())
	copy(out.Pix, s.front.Pix)
	return out
}

// Posts returns how many frames have been presented.
func (s *Software) Posts() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}
