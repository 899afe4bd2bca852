package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	initialized bool
	updates     int
	renders     int
	resizes     [][2]int
	shutdown    bool
	renderErr   error
}

func newTestGame(rec *recorder, ac *ApplicationConfig) *Game {
	return &Game{
		ApplicationConfig: ac,
		FnInitialize: func(r *renderer.Renderer) error {
			rec.initialized = r != nil
			return nil
		},
		FnUpdate: func(float64) error {
			rec.updates++
			return nil
		},
		FnRender: func(float64) (*metadata.Frame, error) {
			rec.renders++
			return nil, rec.renderErr
		},
		FnOnResize: func(w, h int) error {
			rec.resizes = append(rec.resizes, [2]int{w, h})
			return nil
		},
		FnShutdown: func() error {
			rec.shutdown = true
			return nil
		},
	}
}

func headless(frames uint64) *ApplicationConfig {
	cfg := core.DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 32, 16
	return &ApplicationConfig{Config: cfg, Device: renderer.Software, MaxFrames: frames}
}

func startEngine(t *testing.T, rec *recorder, ac *ApplicationConfig) *Engine {
	t.Helper()
	e, err := New(newTestGame(rec, ac))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := core.DefaultConfig()
	cfg.Window.Width = 0
	_, err = New(newTestGame(&recorder{}, &ApplicationConfig{Config: cfg, Device: renderer.Software}))
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	rec := &recorder{}
	e := startEngine(t, rec, headless(4))
	assert.True(t, rec.initialized)
	assert.Equal(t, [][2]int{{32, 16}}, rec.resizes)

	require.NoError(t, e.Run())
	assert.Equal(t, 4, rec.updates)
	assert.Equal(t, 4, rec.renders)
	assert.True(t, rec.shutdown)
	assert.Equal(t, EngineStageShutDown, e.Stage())
	assert.Equal(t, uint64(4), e.Renderer().Metrics().TotalFrames)
}

func TestRunReturnsRenderErrors(t *testing.T) {
	rec := &recorder{renderErr: errors.New("boom")}
	e := startEngine(t, rec, headless(0))
	err := e.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, rec.renders)
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(newTestGame(&recorder{}, headless(1)))
	require.NoError(t, err)
	assert.Error(t, e.Run())
}

func TestQuitEventStopsLoop(t *testing.T) {
	e := startEngine(t, &recorder{}, headless(0))
	updates := 0
	e.gameInstance.FnUpdate = func(float64) error {
		updates++
		if updates == 2 {
			e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, core.EventContext{Key: core.KEY_ESCAPE})
		}
		return nil
	}
	require.NoError(t, e.Run())
	assert.Equal(t, 2, updates)
}

func TestKeyTogglesRendererConfig(t *testing.T) {
	e := startEngine(t, &recorder{}, headless(1))
	var reloaded *core.Config
	e.Events().Register(core.EVENT_CODE_CONFIG_RELOADED, nil, func(_ core.SystemEventCode, _, _ any, ctx core.EventContext) bool {
		reloaded = ctx.Config
		return false
	})

	assert.True(t, e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, core.EventContext{Key: core.KEY_T}))
	assert.True(t, e.Config().Renderer.ThumbnailGrid)
	assert.True(t, e.Renderer().Config().ThumbnailGrid)
	require.NotNil(t, reloaded)
	assert.True(t, reloaded.Renderer.ThumbnailGrid)

	e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, core.EventContext{Key: core.KEY_L})
	assert.True(t, e.Renderer().Config().DisableAdvancedBlend)

	assert.False(t, e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, core.EventContext{Key: core.KEY_SPACE}))
}

func TestResizeEvents(t *testing.T) {
	rec := &recorder{}
	e := startEngine(t, rec, headless(1))

	assert.False(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Width: 32, Height: 16}))
	assert.True(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Width: 64, Height: 48}))
	w, h := e.Renderer().Backend().Device().DrawingBufferSize()
	assert.Equal(t, [2]int{64, 48}, [2]int{w, h})
	assert.Equal(t, [2]int{64, 48}, rec.resizes[len(rec.resizes)-1])

	e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Width: 0, Height: 0})
	assert.True(t, e.isSuspended)
	e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Width: 20, Height: 10})
	assert.False(t, e.isSuspended)
	w, h = e.GetFramebufferSize()
	assert.Equal(t, [2]int{20, 10}, [2]int{w, h})
}

func TestConfigFileReloadAppliesBetweenFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marionette.toml")
	cfg := core.DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 16, 16
	data, err := cfg.Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	e := startEngine(t, &recorder{}, &ApplicationConfig{ConfigPath: path, Device: renderer.Software})
	require.NotNil(t, e.watcher)

	cfg.Renderer.ColorKeyTransparency = true
	data, err = cfg.Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	assert.Eventually(t, func() bool {
		e.pollConfig()
		return e.Renderer().Config().ColorKeyTransparency
	}, 2*time.Second, 10*time.Millisecond)
}
