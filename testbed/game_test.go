package testbed

import (
	"image/color"
	"testing"

	"github.com/spaghettifunk/marionette/engine"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headlessConfig(frames uint64) *engine.ApplicationConfig {
	cfg := core.DefaultConfig()
	cfg.Window.Width = 96
	cfg.Window.Height = 64
	return &engine.ApplicationConfig{
		Config:    cfg,
		Device:    renderer.Software,
		MaxFrames: frames,
	}
}

func TestPuppetRendersHeadless(t *testing.T) {
	tg := NewTestGame(headlessConfig(3))
	e, err := engine.New(tg.Game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	r := e.Renderer()
	dev, ok := r.Backend().Device().(*software.Device)
	require.True(t, ok)

	require.NoError(t, e.Run())
	assert.Equal(t, engine.EngineStageShutDown, e.Stage())

	m := r.Metrics()
	assert.Equal(t, uint64(3), m.TotalFrames)
	assert.Equal(t, uint32(8), m.Last.Draws)
	assert.Zero(t, m.Last.SkippedDraws)
	assert.Equal(t, uint32(1), m.Last.Masks)
	assert.Equal(t, uint32(1), m.Last.Composites)
	assert.Zero(t, m.Total.UnbalancedCloses)

	// the body covers the middle of the surface
	center := dev.Snapshot().RGBAAt(48, 32)
	assert.NotZero(t, center.A)
}

func TestRenderBeforeInitializeFails(t *testing.T) {
	tg := NewTestGame(headlessConfig(1))
	_, err := tg.Render(0.016)
	assert.Error(t, err)
}

func TestTexturesArePremultiplied(t *testing.T) {
	img := radial(32, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	for i := 0; i < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		assert.LessOrEqual(t, img.Pix[i], a)
		assert.LessOrEqual(t, img.Pix[i+1], a)
		assert.LessOrEqual(t, img.Pix[i+2], a)
	}
	assert.Equal(t, 32, img.Bounds().Dx())
}
