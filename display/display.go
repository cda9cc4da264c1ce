// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package display abstracts where posted guest frames end up.
//
// The framebuffer resource manager owns GPU objects; when a guest posts a
// color buffer, the pixels are handed to a Display. Backends register
// themselves in a priority registry: the built-in software backend is
// always available, and GPU-backed backends (see backend/wgpu) register at
// a higher priority via blank import.
package display

import (
	"errors"
	"image"
)

// Strings are the driver identification strings a backend reports.
// They surface to guests through the GL and EGL string queries.
type Strings struct {
	Vendor     string
	Renderer   string
	Version    string
	Extensions string
}

// Display is a sink for posted frames.
//
// Implementations must be safe for concurrent use: posts arrive from
// whichever host worker thread carries the guest's call.
type Display interface {
	// Size returns the display dimensions in pixels.
	Size() (width, height int32)

	// Post presents a frame. The image is scaled to the display size if
	// needed. The display must not retain img after Post returns.
	Post(img *image.RGBA) error

	// Strings returns the driver identification strings.
	Strings() Strings

	// Close releases backend resources. Close is idempotent.
	Close() error
}

// Options configures backend construction.
type Options struct {
	Width  int32
	Height int32
}

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("display: closed")
