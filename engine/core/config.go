package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level string `toml:"level"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// RendererConfig holds the scene parameters the pipeline reads at the start of every frame.
type RendererConfig struct {
	ClearColor           [4]float32 `toml:"clear_color"`
	AmbientLight         [4]float32 `toml:"ambient_light"`
	DisableAdvancedBlend bool       `toml:"disable_advanced_blend"`
	ColorKeyTransparency bool       `toml:"color_key_transparency"`
	ThumbnailGrid        bool       `toml:"thumbnail_grid"`
	DefaultPostProcess   bool       `toml:"default_post_process"`
	DebugPointSize       float32    `toml:"debug_point_size"`
	DebugLineWidth       float32    `toml:"debug_line_width"`
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Window: WindowConfig{
			Title:  "Marionette",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			ClearColor:     [4]float32{0, 0, 0, 0},
			AmbientLight:   [4]float32{1, 1, 1, 1},
			DebugPointSize: 1,
			DebugLineWidth: 1,
		},
	}
}

// ParseConfig decodes a TOML document on top of the defaults, so missing keys keep their default value.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrConfigInvalid, c.Window.Width, c.Window.Height)
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d]=%v outside [0,1]", ErrConfigInvalid, i, v)
		}
	}
	for i, v := range c.Renderer.AmbientLight {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: ambient_light[%d]=%v outside [0,1]", ErrConfigInvalid, i, v)
		}
	}
	if c.Renderer.DebugPointSize <= 0 || c.Renderer.DebugLineWidth <= 0 {
		return fmt.Errorf("%w: debug sizes must be positive", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
