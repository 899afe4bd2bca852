package pipeline

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

// sceneColorTargets is the number of color attachments of a scene target: albedo, emissive, bump.
const sceneColorTargets = 3

// renderSurface is one multi-target scene framebuffer.
type renderSurface struct {
	fb       gpu.Framebuffer
	albedo   gpu.Texture
	emissive gpu.Texture
	bump     gpu.Texture
	stencil  gpu.Texture
}

func (s *renderSurface) colors() [sceneColorTargets]gpu.Texture {
	return [sceneColorTargets]gpu.Texture{s.albedo, s.emissive, s.bump}
}

func (s *renderSurface) release(dev gpu.Device) {
	if s.fb != 0 {
		dev.DeleteFramebuffer(s.fb)
	}
	for _, tex := range []gpu.Texture{s.albedo, s.emissive, s.bump, s.stencil} {
		if tex != 0 {
			dev.DeleteTexture(tex)
		}
	}
	*s = renderSurface{}
}

// sceneTargets are the two same-sized ping-pong surfaces. A receives the scene, B is the
// post-process scratch target.
type sceneTargets struct {
	a, b          renderSurface
	width, height int
}

func (t *sceneTargets) ready() bool {
	return t.a.fb != 0 && t.b.fb != 0
}

func (t *sceneTargets) release(dev gpu.Device) {
	t.a.release(dev)
	t.b.release(dev)
	t.width, t.height = 0, 0
}

func makeTarget(dev gpu.Device, format gpu.Format, width, height int) (gpu.Texture, error) {
	tex, err := dev.CreateTexture()
	if err != nil {
		return 0, err
	}
	filter := gpu.Linear
	if format == gpu.FormatDepth24Stencil8 {
		filter = gpu.Nearest
	}
	dev.TexFilter(tex, filter, filter)
	dev.TexWrap(tex, gpu.ClampToEdge, gpu.ClampToEdge)
	dev.TexImage2D(tex, format, width, height, nil)
	return tex, nil
}

func makeSurface(dev gpu.Device, width, height int) (renderSurface, error) {
	var s renderSurface
	var err error
	if s.fb, err = dev.CreateFramebuffer(); err != nil {
		return s, err
	}
	for _, dst := range []*gpu.Texture{&s.albedo, &s.emissive, &s.bump} {
		if *dst, err = makeTarget(dev, gpu.FormatRGBA8, width, height); err != nil {
			s.release(dev)
			return s, err
		}
	}
	if s.stencil, err = makeTarget(dev, gpu.FormatDepth24Stencil8, width, height); err != nil {
		s.release(dev)
		return s, err
	}
	return s, nil
}

// ensureSceneTargets rebuilds both scene surfaces when the requested size differs from the
// current one.
func (b *Backend) ensureSceneTargets(width, height int) error {
	w, h := max(1, width), max(1, height)
	if b.scene.ready() && b.scene.width == w && b.scene.height == h {
		return nil
	}
	b.scene.release(b.dev)

	a, err := makeSurface(b.dev, w, h)
	if err != nil {
		return fmt.Errorf("%w: scene target %dx%d: %v", core.ErrResourceCreation, w, h, err)
	}
	bs, err := makeSurface(b.dev, w, h)
	if err != nil {
		a.release(b.dev)
		return fmt.Errorf("%w: scene target %dx%d: %v", core.ErrResourceCreation, w, h, err)
	}
	b.scene = sceneTargets{a: a, b: bs, width: w, height: h}
	b.log.Debug("scene targets resized", "width", w, "height", h)
	b.rebindActiveTargets()
	return nil
}

// rebindActiveTargets re-points every scene attachment at the current scene textures. The
// framebuffer bindings are preserved.
func (b *Backend) rebindActiveTargets() {
	if !b.scene.ready() {
		return
	}
	prevDraw := b.dev.FramebufferBinding(gpu.FramebufferDraw)
	prevRead := b.dev.FramebufferBinding(gpu.FramebufferRead)
	for _, s := range []*renderSurface{&b.scene.a, &b.scene.b} {
		b.dev.BindFramebuffer(gpu.FramebufferDraw, s.fb)
		for i, tex := range s.colors() {
			b.dev.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment(i), tex)
		}
		b.dev.FramebufferTexture2D(gpu.FramebufferDraw, gpu.DepthStencilAttachment, s.stencil)
	}
	b.dev.BindFramebuffer(gpu.FramebufferDraw, prevDraw)
	b.dev.BindFramebuffer(gpu.FramebufferRead, prevRead)
}

// setDrawBuffers routes fragment outputs first..count-1 to the matching color attachments of
// the bound draw framebuffer, skipping slots without an attachment. It returns the number of
// routed outputs. The default surface only has output 0. When first is past every attachment
// nothing is routed, the draw buffers are left alone and 0 is returned.
func (b *Backend) setDrawBuffers(first, count int) int {
	if b.dev.FramebufferBinding(gpu.FramebufferDraw) == 0 {
		if first > 0 {
			return 0
		}
		return 1
	}
	count = min(count, sceneColorTargets)
	bufs := make([]gpu.Attachment, 0, count)
	routed, last := 0, -1
	for i := 0; i < count; i++ {
		att := gpu.ColorAttachment(i)
		if i < first || b.dev.FramebufferAttachment(gpu.FramebufferDraw, att) == 0 {
			bufs = append(bufs, gpu.AttachmentNone)
			continue
		}
		bufs = append(bufs, att)
		routed++
		last = i
	}
	if routed == 0 {
		if first > 0 {
			return 0
		}
		b.dev.DrawBuffers([]gpu.Attachment{gpu.ColorAttachment0})
		return 1
	}
	b.dev.DrawBuffers(bufs[:last+1])
	return routed
}

// boundColorTextures returns the color attachments of the bound draw framebuffer.
func (b *Backend) boundColorTextures() []gpu.Texture {
	if b.dev.FramebufferBinding(gpu.FramebufferDraw) == 0 {
		return nil
	}
	var out []gpu.Texture
	for i := 0; i < sceneColorTargets; i++ {
		if tex := b.dev.FramebufferAttachment(gpu.FramebufferDraw, gpu.ColorAttachment(i)); tex != 0 {
			out = append(out, tex)
		}
	}
	return out
}

// beginScene binds target A cleared for a new frame: albedo to the clear color, emissive and
// bump to opaque black, with every draw buffer routed and premultiplied blending.
func (b *Backend) beginScene() error {
	dev := b.dev
	b.boundAlbedo = 0
	dev.Enable(gpu.Blend)
	for i := 0; i < sceneColorTargets; i++ {
		dev.EnableIndexed(gpu.Blend, i)
	}
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.CullFace)
	dev.Disable(gpu.ScissorTest)
	dev.Disable(gpu.StencilTest)
	dev.ColorMask(true, true, true, true)
	dev.StencilMask(0xFF)

	vw, vh := b.Viewport()
	dev.Viewport(0, 0, vw, vh)
	if err := b.ensureSceneTargets(vw, vh); err != nil {
		return err
	}
	b.rebindActiveTargets()

	dev.BindFramebuffer(gpu.FramebufferBoth, b.scene.b.fb)
	b.setDrawBuffers(0, sceneColorTargets)

	dev.BindFramebuffer(gpu.FramebufferBoth, b.scene.a.fb)
	if status := dev.CheckFramebufferStatus(gpu.FramebufferDraw); status != gpu.FramebufferComplete {
		b.log.Warn("scene target incomplete", "status", status)
	}
	b.setDrawBuffers(0, 1)
	c := b.clearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])
	dev.Clear(gpu.ColorBufferBit)

	if b.setDrawBuffers(1, sceneColorTargets) > 0 {
		dev.ClearColor(0, 0, 0, 1)
		dev.Clear(gpu.ColorBufferBit)
	}

	b.setDrawBuffers(0, sceneColorTargets)
	b.setBlendState(premultipliedOver)
	return nil
}

// endScene returns to the default surface with depth and culling restored.
func (b *Backend) endScene() {
	dev := b.dev
	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
	for i := 0; i < sceneColorTargets; i++ {
		dev.DisableIndexed(gpu.Blend, i)
	}
	dev.Enable(gpu.DepthTest)
	dev.Enable(gpu.CullFace)
	dev.Disable(gpu.Blend)
	dev.UseProgram(0)
	dev.BindVertexArray(0)
	dev.Flush()
	if dev.FramebufferBinding(gpu.FramebufferDraw) != 0 {
		dev.DrawBuffers([]gpu.Attachment{gpu.ColorAttachment0})
	}
}

// SceneSize is the size of the scene targets, zero before the first frame.
func (b *Backend) SceneSize() (int, int) {
	return b.scene.width, b.scene.height
}
