// Package pipeline turns a frame's command stream into device calls. A Backend owns every
// GPU object the puppet renderer needs for one surface: the texture table, the built-in
// programs, the ping-pong scene targets, the composite framebuffer cache and the mask and
// composite state machines. A Backend is not safe for concurrent use; every call must come
// from the goroutine that owns the device context.
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spaghettifunk/marionette/engine/containers"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

type Backend struct {
	id       uuid.UUID
	log      *log.Logger
	dev      gpu.Device
	caps     gpu.Caps
	disposed bool

	// resource table
	textures     map[metadata.TextureHandle]*textureRecord
	textureIDs   *core.HandleAllocator
	indexBuffers map[metadata.IndexBufferHandle]gpu.Buffer

	shaders     *shaderSet
	userShaders map[metadata.ShaderHandle]gpu.Program
	shaderIDs   *core.HandleAllocator
	postStack   []gpu.Program

	geometry geometryBuffers
	scene    sceneTargets

	presentCopy     gpu.Texture
	presentCopySize [2]int
	thumbTest       gpu.Texture

	viewports *containers.Stack[viewportSize]
	fbCache   map[framebufferKey]cachedFramebuffer

	mask          maskState
	passes        *containers.Stack[*compositeFrame]
	activeTargets targetSet
	boundAlbedo   metadata.TextureHandle
	blend         appliedBlend

	// scene parameters
	clearColor           [4]float32
	ambientLight         [4]float32
	legacyOnly           bool
	colorKey             bool
	thumbnailGrid        bool
	defaultPost          bool
	differenceAggressive bool
	debugPointSize       float32
	debugLineWidth       float32

	stats core.FrameCounters
}

// New builds the shader set and the shared geometry objects on dev. Any program that fails to
// build aborts construction with an error wrapping core.ErrShaderBuild.
func New(dev gpu.Device, cfg core.RendererConfig) (*Backend, error) {
	if dev == nil {
		return nil, fmt.Errorf("pipeline: %w", core.ErrDeviceLost)
	}
	id := uuid.New()
	b := &Backend{
		id:            id,
		log:           core.Logger("backend", id.String()),
		dev:           dev,
		caps:          dev.Caps(),
		textures:      make(map[metadata.TextureHandle]*textureRecord),
		textureIDs:    core.NewHandleAllocator(),
		indexBuffers:  make(map[metadata.IndexBufferHandle]gpu.Buffer),
		userShaders:   make(map[metadata.ShaderHandle]gpu.Program),
		shaderIDs:     core.NewHandleAllocator(),
		viewports:     containers.NewStack[viewportSize](4),
		fbCache:       make(map[framebufferKey]cachedFramebuffer),
		passes:        containers.NewStack[*compositeFrame](4),
		activeTargets: targetSet{},
	}

	shaders, err := buildShaderSet(dev)
	if err != nil {
		b.log.Error("failed to build shader set", "err", err)
		return nil, err
	}
	b.shaders = shaders

	if err := b.geometry.init(dev); err != nil {
		b.log.Error("failed to create shared geometry", "err", err)
		b.Dispose()
		return nil, err
	}

	b.ApplyConfig(cfg)

	dev.BindVertexArray(b.geometry.drawable)
	dev.Disable(gpu.DepthTest)
	dev.Enable(gpu.Blend)
	b.setBlendState(premultipliedOver)

	b.log.Info("pipeline backend ready",
		"advancedBlend", b.caps.AdvancedBlend,
		"coherent", b.caps.AdvancedBlendCoherent,
		"anisotropy", b.caps.Anisotropy)
	return b, nil
}

// ID identifies this backend in log output.
func (b *Backend) ID() uuid.UUID {
	return b.id
}

// Device returns the device the backend drives.
func (b *Backend) Device() gpu.Device {
	return b.dev
}

// ApplyConfig updates the scene parameters. It may be called between any two frames.
func (b *Backend) ApplyConfig(cfg core.RendererConfig) {
	b.clearColor = cfg.ClearColor
	b.ambientLight = cfg.AmbientLight
	b.legacyOnly = cfg.DisableAdvancedBlend
	b.colorKey = cfg.ColorKeyTransparency
	b.thumbnailGrid = cfg.ThumbnailGrid
	b.defaultPost = cfg.DefaultPostProcess
	b.SetDebugPointSize(cfg.DebugPointSize)
	b.SetDebugLineWidth(cfg.DebugLineWidth)
}

func (b *Backend) SetClearColor(r, g, bl, a float32) {
	b.clearColor = [4]float32{r, g, bl, a}
}

func (b *Backend) SetSceneAmbientLight(r, g, bl, a float32) {
	b.ambientLight = [4]float32{r, g, bl, a}
}

// SetDifferenceAggressiveMode is recorded for hosts that query it; the pipeline itself does not
// change behavior on it.
func (b *Backend) SetDifferenceAggressiveMode(enabled bool) {
	b.differenceAggressive = enabled
}

func (b *Backend) DifferenceAggressiveMode() bool {
	return b.differenceAggressive
}

// SetLegacyBlendOnly forces the fixed-function blend mapping even where advanced equations exist.
func (b *Backend) SetLegacyBlendOnly(enabled bool) {
	b.legacyOnly = enabled
}

func (b *Backend) SetColorKeyTransparency(enabled bool) {
	b.colorKey = enabled
}

func (b *Backend) SetThumbnailGrid(enabled bool) {
	b.thumbnailGrid = enabled
}

func (b *Backend) SupportsAdvancedBlend() bool {
	return b.caps.AdvancedBlend
}

func (b *Backend) SupportsAdvancedBlendCoherent() bool {
	return b.caps.AdvancedBlend && b.caps.AdvancedBlendCoherent
}

// FrameStats returns the counters of the last rendered frame.
func (b *Backend) FrameStats() core.FrameCounters {
	return b.stats
}

// Dispose releases every GPU object owned by the backend. The backend must not be used afterwards.
func (b *Backend) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	dev := b.dev

	for h, rec := range b.textures {
		dev.DeleteTexture(rec.tex)
		delete(b.textures, h)
	}
	for h, buf := range b.indexBuffers {
		dev.DeleteBuffer(buf)
		delete(b.indexBuffers, h)
	}
	for key, entry := range b.fbCache {
		dev.DeleteFramebuffer(entry.fb)
		delete(b.fbCache, key)
	}
	b.scene.release(dev)
	if b.presentCopy != 0 {
		dev.DeleteTexture(b.presentCopy)
		b.presentCopy = 0
	}
	if b.thumbTest != 0 {
		dev.DeleteTexture(b.thumbTest)
		b.thumbTest = 0
	}
	b.geometry.release(dev)
	for h, p := range b.userShaders {
		dev.DeleteProgram(p)
		delete(b.userShaders, h)
	}
	b.postStack = nil
	if b.shaders != nil {
		b.shaders.release(dev)
		b.shaders = nil
	}
	b.log.Debug("pipeline backend disposed")
}
