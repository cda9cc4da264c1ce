// Package protocol exposes the render-control operations as the fixed
// function table an outer wire decoder invokes.
//
// The decoder parses the guest byte stream (length framing, checksums)
// and calls one table entry per command; that layer lives outside this
// module. The table's shape (field set and signatures) is the
// wire-compatible contract and only grows, never changes: old guests keep
// finding the entry points they were built against.
package protocol

import (
	"github.com/gogpu/renderctl"
)

// EGL booleans as they cross the wire.
const (
	EGLFalse int32 = 0
	EGLTrue  int32 = 1
)

// TableVersion tracks the table's revision. It matches the renderer
// version reported by GetRendererVersion.
const TableVersion int32 = 1

// Table holds one entry per wire operation. Field names follow the wire
// operation names (rcGetRendererVersion and so on, without the rc
// prefix). Byte and word slices stand in for the wire's
// pointer-plus-length pairs; nil means the guest passed a null pointer.
type Table struct {
	GetRendererVersion func() int32
	GetEGLVersion      func(major, minor *int32) int32
	QueryEGLString     func(name uint32, buf []byte) int32
	GetGLString        func(name uint32, buf []byte) int32
	GetNumConfigs      func(numAttribs *uint32) int32
	GetConfigs         func(buf []uint32) int32
	ChooseConfig       func(attribs []int32, configs []uint32) int32
	GetFBParam         func(param int32) int32
	CreateContext      func(config, share uint32, glVersion int32) uint32
	DestroyContext     func(ctx uint32)

	CreateWindowSurface  func(config, width, height uint32) uint32
	DestroyWindowSurface func(surf uint32)

	CreateColorBuffer      func(width, height, internalFormat uint32) uint32
	OpenColorBuffer        func(cb uint32) // deprecated; kept for old system images
	CloseColorBuffer       func(cb uint32)
	SetWindowColorBuffer   func(surf, cb uint32)
	FlushWindowColorBuffer func(surf uint32) int32

	MakeCurrent       func(ctx, draw, read uint32) int32
	FBPost            func(cb uint32)
	FBSetSwapInterval func(interval int32)
	BindTexture       func(cb uint32)
	BindRenderbuffer  func(cb uint32)

	ColorBufferCacheFlush func(cb uint32, postCount, forRead int32) int32
	ReadColorBuffer       func(cb uint32, x, y, width, height int32, format, typ uint32, pixels []byte)
	UpdateColorBuffer     func(cb uint32, x, y, width, height int32, format, typ uint32, pixels []byte) int32
	OpenColorBuffer2      func(cb uint32) int32

	CreateClientImage  func(ctx, target, buffer uint32) uint32
	DestroyClientImage func(img uint32) int32

	SelectChecksumCalculator func(version, reserved uint32)
}

// Bind populates a table against a dispatcher and the session of the
// guest render thread the decoder serves. Every entry is filled; the
// decoder never needs nil checks.
func Bind(rc *renderctl.RenderControl, sess *renderctl.Session) *Table {
	return &Table{
		GetRendererVersion: rc.RendererVersion,
		GetEGLVersion: func(major, minor *int32) int32 {
			ma, mi, ok := rc.EGLVersion()
			if !ok {
				return EGLFalse
			}
			if major != nil {
				*major = ma
			}
			if minor != nil {
				*minor = mi
			}
			return EGLTrue
		},
		QueryEGLString: rc.QueryEGLString,
		GetGLString: func(name uint32, buf []byte) int32 {
			return rc.GLString(sess, name, buf)
		},
		GetNumConfigs: func(numAttribs *uint32) int32 {
			configs, attribs := rc.NumConfigs()
			if numAttribs != nil {
				*numAttribs = uint32(attribs)
			}
			return configs
		},
		GetConfigs:   rc.Configs,
		ChooseConfig: rc.ChooseConfig,
		GetFBParam:   rc.FBParam,

		CreateContext:  rc.CreateContext,
		DestroyContext: rc.DestroyContext,

		CreateWindowSurface:  rc.CreateWindowSurface,
		DestroyWindowSurface: rc.DestroyWindowSurface,

		CreateColorBuffer:      rc.CreateColorBuffer,
		OpenColorBuffer:        rc.OpenColorBuffer,
		CloseColorBuffer:       rc.CloseColorBuffer,
		SetWindowColorBuffer:   rc.SetWindowColorBuffer,
		FlushWindowColorBuffer: rc.FlushWindowColorBuffer,

		MakeCurrent: func(ctx, draw, read uint32) int32 {
			if rc.MakeCurrent(sess, ctx, draw, read) {
				return EGLTrue
			}
			return EGLFalse
		},
		FBPost:            rc.FBPost,
		FBSetSwapInterval: rc.FBSetSwapInterval,
		BindTexture:       rc.BindTexture,
		BindRenderbuffer:  rc.BindRenderbuffer,

		ColorBufferCacheFlush: rc.ColorBufferCacheFlush,
		ReadColorBuffer:       rc.ReadColorBuffer,
		UpdateColorBuffer:     rc.UpdateColorBuffer,
		OpenColorBuffer2:      rc.OpenColorBuffer2,

		CreateClientImage:  rc.CreateClientImage,
		DestroyClientImage: rc.DestroyClientImage,

		SelectChecksumCalculator: func(version, reserved uint32) {
			rc.SelectChecksumCalculator(sess, version, reserved)
		},
	}
}
