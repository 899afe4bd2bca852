package renderer

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/opengl"
	"github.com/spaghettifunk/marionette/engine/renderer/software"
)

// SurfaceDevice is a gpu.Device whose default surface follows the host window size.
type SurfaceDevice interface {
	gpu.Device
	Resize(width, height int)
}

type RendererType uint8

const (
	OpenGL RendererType = iota
	Software
)

func (t RendererType) String() string {
	switch t {
	case OpenGL:
		return "opengl"
	case Software:
		return "software"
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

// ParseRendererType maps a configuration value to a RendererType.
func ParseRendererType(s string) (RendererType, error) {
	switch s {
	case "", "opengl", "gl":
		return OpenGL, nil
	case "software", "cpu":
		return Software, nil
	}
	return OpenGL, fmt.Errorf("unknown renderer type %q", s)
}

// NewDevice creates the device for t. OpenGL requires the window's context to be current on
// the calling goroutine.
func NewDevice(t RendererType, width, height int) (SurfaceDevice, error) {
	switch t {
	case OpenGL:
		return opengl.New(width, height)
	case Software:
		return software.New(width, height), nil
	}
	return nil, fmt.Errorf("unsupported renderer type %s", t)
}
