package engine

import (
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int
	// Window starting position y axis, if applicable.
	StartPosY int
	// Path of the TOML configuration file. Empty means defaults with no hot reload.
	ConfigPath string
	// Configuration used when ConfigPath is empty.
	Config *core.Config
	// Device selects the GPU device. Software runs headless without a window.
	Device renderer.RendererType
	// MaxFrames stops the loop after that many rendered frames; 0 runs until quit.
	MaxFrames uint64
	// LimitFrames sleeps away the remainder of each 60Hz frame.
	LimitFrames bool
}

// loadConfig resolves the configuration the engine starts with.
func (ac *ApplicationConfig) loadConfig() (*core.Config, error) {
	if ac.ConfigPath != "" {
		return core.LoadConfig(ac.ConfigPath)
	}
	if ac.Config != nil {
		cfg := *ac.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return core.DefaultConfig(), nil
}
