package pipeline

import (
	"slices"

	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// targetSet holds the texture handles currently bound as render targets. Sampling one of them
// binds no texture instead.
type targetSet []metadata.TextureHandle

func (s targetSet) contains(h metadata.TextureHandle) bool {
	return h != 0 && slices.Contains(s, h)
}

// CompositePass is a resolved dynamic composite. A pass without a surface renders nothing.
type CompositePass struct {
	Spec    metadata.DynamicCompositeSpec
	key     framebufferKey
	surface cachedFramebuffer
	ok      bool
}

func (p *CompositePass) HasSurface() bool {
	return p != nil && p.ok
}

func (p *CompositePass) HasStencil() bool {
	return p.HasSurface() && p.surface.hasStencil
}

func (p *CompositePass) Framebuffer() gpu.Framebuffer {
	if !p.HasSurface() {
		return 0
	}
	return p.surface.fb
}

// compositeFrame is what BeginDynamicComposite saved and EndDynamicComposite restores.
type compositeFrame struct {
	pass         *CompositePass
	prevDraw     gpu.Framebuffer
	prevRead     gpu.Framebuffer
	prevViewport [4]int
	prevTargets  targetSet
	suppressed   bool
}

// CreateDynamicCompositePass resolves spec to a cached or newly built framebuffer. Identical
// specs share one framebuffer.
func (b *Backend) CreateDynamicCompositePass(spec metadata.DynamicCompositeSpec) *CompositePass {
	key := makeFramebufferKey(&spec)
	pass := &CompositePass{Spec: spec, key: key}
	pass.surface, pass.ok = b.compositeFramebuffer(key)
	return pass
}

// BeginDynamicComposite redirects rendering into the pass's surface, cleared to transparent.
// A pass without a surface, or one opened inside such a pass, still opens a frame so the
// matching end stays balanced, but every draw until then is dropped.
func (b *Backend) BeginDynamicComposite(pass *CompositePass) {
	dev := b.dev
	frame := &compositeFrame{
		pass:         pass,
		prevDraw:     dev.FramebufferBinding(gpu.FramebufferDraw),
		prevRead:     dev.FramebufferBinding(gpu.FramebufferRead),
		prevViewport: dev.ViewportRect(),
		prevTargets:  b.activeTargets,
	}
	if !pass.HasSurface() || b.suppressed() {
		frame.suppressed = true
		b.passes.Push(frame)
		if !pass.HasSurface() {
			b.stats.SurfacelessComposite++
			b.log.Warn("composite pass has no surface, skipping its content")
		}
		return
	}
	b.passes.Push(frame)

	count := max(pass.key.count, 1)
	b.activeTargets = slices.Clone(targetSet(pass.key.textures[:pass.key.count]))
	if pass.key.stencil != 0 {
		b.activeTargets = append(b.activeTargets, pass.key.stencil)
	}
	b.boundAlbedo = 0

	dev.BindFramebuffer(gpu.FramebufferBoth, pass.surface.fb)
	width, height := dev.DrawingBufferSize()
	if rec, ok := b.textures[pass.key.textures[0]]; ok && rec.width > 0 && rec.height > 0 {
		width, height = rec.width, rec.height
	}
	b.setDrawBuffers(0, count)
	b.PushViewport(width, height)
	dev.Viewport(0, 0, width, height)

	dev.ClearColor(0, 0, 0, 0)
	if pass.surface.hasStencil {
		dev.StencilMask(0xFF)
		dev.ClearStencil(0)
		dev.Clear(gpu.ColorBufferBit | gpu.StencilBufferBit)
		dev.StencilMask(b.stencilWriteMask())
	} else {
		dev.Clear(gpu.ColorBufferBit)
	}
	b.setBlendState(premultipliedOver)
	b.stats.Composites++
}

// EndDynamicComposite closes the innermost composite and restores the framebuffers, viewport
// and render target set saved when it opened. It reports false when no composite was open.
func (b *Backend) EndDynamicComposite() bool {
	frame, err := b.passes.Pop()
	if err != nil {
		b.stats.UnbalancedCloses++
		b.log.Warn("composite end without a matching begin")
		return false
	}
	if frame.suppressed {
		return true
	}
	dev := b.dev
	b.rebindActiveTargets()
	dev.BindFramebuffer(gpu.FramebufferDraw, frame.prevDraw)
	dev.BindFramebuffer(gpu.FramebufferRead, frame.prevRead)
	b.PopViewport()
	vp := frame.prevViewport
	dev.Viewport(vp[0], vp[1], vp[2], vp[3])
	b.activeTargets = frame.prevTargets
	b.boundAlbedo = 0
	return true
}

// CompositeDepth is the number of open composites.
func (b *Backend) CompositeDepth() int {
	return b.passes.Len()
}

// suppressed reports whether the innermost composite has no surface.
func (b *Backend) suppressed() bool {
	top, err := b.passes.Peek()
	return err == nil && top.suppressed
}
