package engine

import (
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             any
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize runs once the renderer exists, so the game can upload its textures.
type Initialize func(r *renderer.Renderer) error
type Update func(deltaTime float64) error

// Render returns the frame to draw. A nil frame draws only the clear color.
type Render func(deltaTime float64) (*metadata.Frame, error)
type OnResize func(width, height int) error
type Shutdown func() error
