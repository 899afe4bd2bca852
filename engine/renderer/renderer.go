// Package renderer is the frame-level front-end over the pipeline: it times frames, folds the
// pipeline counters into core.Metrics and applies configuration between frames.
package renderer

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/spaghettifunk/marionette/engine/renderer/pipeline"
)

type Renderer struct {
	device  SurfaceDevice
	backend *pipeline.Backend
	clock   *core.Clock
	metrics *core.Metrics
	config  core.RendererConfig
}

func New(device SurfaceDevice, cfg core.RendererConfig) (*Renderer, error) {
	return NewWithClock(device, cfg, core.NewClock())
}

// NewWithClock is New with a caller-provided frame clock.
func NewWithClock(device SurfaceDevice, cfg core.RendererConfig, clock *core.Clock) (*Renderer, error) {
	if device == nil {
		return nil, fmt.Errorf("renderer: %w", core.ErrDeviceLost)
	}
	backend, err := pipeline.New(device, cfg)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	clock.Start()
	return &Renderer{
		device:  device,
		backend: backend,
		clock:   clock,
		metrics: core.NewMetrics(),
		config:  cfg,
	}, nil
}

func (r *Renderer) Backend() *pipeline.Backend {
	return r.backend
}

func (r *Renderer) Metrics() *core.Metrics {
	return r.metrics
}

func (r *Renderer) Config() core.RendererConfig {
	return r.config
}

// ApplyConfig takes effect on the next frame.
func (r *Renderer) ApplyConfig(cfg core.RendererConfig) {
	r.config = cfg
	r.backend.ApplyConfig(cfg)
}

// DrawFrame renders frame and records its time and pipeline counters.
func (r *Renderer) DrawFrame(frame *metadata.Frame) error {
	if err := r.backend.RenderFrame(frame); err != nil {
		core.LogError("DrawFrame failed: %s", err)
		return err
	}
	r.clock.Update()
	elapsed := r.clock.Elapsed()
	r.clock.Start()

	stats := r.backend.FrameStats()
	r.metrics.Update(elapsed, stats)
	if stats.UnbalancedCloses > 0 {
		core.LogWarn("frame %d closed %d composites that were never opened", r.metrics.TotalFrames, stats.UnbalancedCloses)
	}
	return nil
}

// OnResize resizes the default surface. The scene targets follow on the next frame.
func (r *Renderer) OnResize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", core.ErrConfigInvalid, width, height)
	}
	r.device.Resize(width, height)
	core.LogDebug("renderer surface resized to %dx%d", width, height)
	return nil
}

func (r *Renderer) Shutdown() {
	r.clock.Stop()
	r.backend.Dispose()
	fps, ms := r.metrics.Frame()
	core.LogInfo("renderer shut down after %d frames (%.1f fps, %.2f ms)", r.metrics.TotalFrames, fps, ms)
}
