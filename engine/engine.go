package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/platform"
	"github.com/spaghettifunk/marionette/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every resource
	EngineStageShutDown
)

const targetFrameSeconds = 1.0 / 60.0

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    atomic.Bool
	isSuspended  bool

	events   *core.EventBus
	platform *platform.Platform
	config   *core.Config
	watcher  *core.ConfigWatcher
	renderer *renderer.Renderer

	width    int
	height   int
	clock    *core.Clock
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("engine: game and application config are required")
	}
	cfg, err := g.ApplicationConfig.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		events:       core.NewEventBus(),
		config:       cfg,
		clock:        core.NewClock(),
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) headless() bool {
	return e.gameInstance.ApplicationConfig.Device == renderer.Software
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	ac := e.gameInstance.ApplicationConfig

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if !e.headless() {
		e.platform = platform.New(e.events)
		if err := e.platform.Startup(e.config.Window.Title, ac.StartPosX, ac.StartPosY, e.width, e.height); err != nil {
			return err
		}
		// the drawable can be larger than the requested window on high-density displays
		e.width, e.height = e.platform.FramebufferSize()
	}

	dev, err := renderer.NewDevice(ac.Device, e.width, e.height)
	if err != nil {
		return err
	}
	r, err := renderer.New(dev, e.config.Renderer)
	if err != nil {
		return err
	}
	e.renderer = r
	core.LogInfo("%s renderer initialized (%dx%d, advanced blend %v)", ac.Device, e.width, e.height, r.Backend().SupportsAdvancedBlend())

	if ac.ConfigPath != "" {
		w, err := core.NewConfigWatcher(ac.ConfigPath)
		if err != nil {
			core.LogWarn("config hot reload disabled: %s", err)
		} else {
			e.watcher = w
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(r); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Renderer is available after Initialize.
func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Config() core.Config {
	return *e.config
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Stop asks the loop to exit after the current frame. It is safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Run drives the frame loop until quit, then shuts the engine down.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine: run called in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	ac := e.gameInstance.ApplicationConfig

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	var frames uint64
	for e.isRunning.Load() {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		e.pollConfig()

		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.frame(delta); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			runErr = err
			break
		}
		if e.platform != nil {
			e.platform.SwapBuffers()
		}

		frames++
		if ac.MaxFrames > 0 && frames >= ac.MaxFrames {
			e.isRunning.Store(false)
		}

		// If there is time left, give it back to the OS.
		remaining := time.Duration(targetFrameSeconds*float64(time.Second)) - time.Since(frameStart)
		if ac.LimitFrames && remaining > time.Millisecond {
			time.Sleep(remaining - time.Millisecond)
		}
		e.lastTime = currentTime
	}

	if err := e.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (e *Engine) frame(delta float64) error {
	g := e.gameInstance
	if g.FnUpdate != nil {
		if err := g.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}
	if g.FnRender == nil {
		return e.renderer.DrawFrame(nil)
	}
	frame, err := g.FnRender(delta)
	if err != nil {
		return fmt.Errorf("game render: %w", err)
	}
	return e.renderer.DrawFrame(frame)
}

// pollConfig applies a reloaded configuration between frames.
func (e *Engine) pollConfig() {
	if e.watcher == nil {
		return
	}
	select {
	case cfg, ok := <-e.watcher.Updates():
		if ok && cfg != nil {
			e.ApplyConfig(cfg)
		}
	default:
	}
}

// ApplyConfig switches to cfg. The window size is left to the OS.
func (e *Engine) ApplyConfig(cfg *core.Config) {
	if level, err := core.ParseLogLevel(cfg.Log.Level); err == nil {
		core.SetLogLevel(level)
	}
	if e.platform != nil && cfg.Window.Title != e.config.Window.Title {
		e.platform.SetTitle(cfg.Window.Title)
	}
	e.config = cfg
	if e.renderer != nil {
		e.renderer.ApplyConfig(cfg.Renderer)
	}
	e.events.Fire(core.EVENT_CODE_CONFIG_RELOADED, e, core.EventContext{Config: cfg})
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
	}
	if e.platform != nil {
		errs = append(errs, e.platform.Shutdown())
	}
	e.events.Clear()
	e.currentStage = EngineStageShutDown
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order) of the drawable surface.
func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener any, ctx core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender, listener any, ctx core.EventContext) bool {
	cfg := *e.config
	switch ctx.Key {
	case core.KEY_ESCAPE:
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		return true
	case core.KEY_T:
		cfg.Renderer.ThumbnailGrid = !cfg.Renderer.ThumbnailGrid
	case core.KEY_C:
		cfg.Renderer.ColorKeyTransparency = !cfg.Renderer.ColorKeyTransparency
	case core.KEY_L:
		cfg.Renderer.DisableAdvancedBlend = !cfg.Renderer.DisableAdvancedBlend
	case core.KEY_P:
		cfg.Renderer.DefaultPostProcess = !cfg.Renderer.DefaultPostProcess
	default:
		return false
	}
	core.LogInfo("renderer toggles: thumbnails=%v colorKey=%v legacyBlend=%v post=%v",
		cfg.Renderer.ThumbnailGrid, cfg.Renderer.ColorKeyTransparency,
		cfg.Renderer.DisableAdvancedBlend, cfg.Renderer.DefaultPostProcess)
	e.ApplyConfig(&cfg)
	return true
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listener any, ctx core.EventContext) bool {
	width, height := ctx.Width, ctx.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.renderer != nil {
		if err := e.renderer.OnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
