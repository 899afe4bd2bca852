package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

// colorKey is written where the frame is fully transparent when color-key transparency is on.
var colorKey = [4]float32{1, 0, 1, 1}

// presentSource picks the texture to present: the scene albedo, the bound read framebuffer's
// first attachment, or a copy of the default surface.
func (b *Backend) presentSource(width, height int) gpu.Texture {
	if b.scene.ready() {
		return b.scene.a.albedo
	}
	if tex := b.dev.FramebufferAttachment(gpu.FramebufferRead, gpu.ColorAttachment0); tex != 0 {
		return tex
	}

	if b.presentCopy == 0 {
		tex, err := b.dev.CreateTexture()
		if err != nil {
			b.log.Warn("present copy texture allocation failed", "err", err)
			return 0
		}
		b.dev.TexFilter(tex, gpu.Linear, gpu.Linear)
		b.dev.TexWrap(tex, gpu.ClampToEdge, gpu.ClampToEdge)
		b.presentCopy = tex
	}
	b.dev.BindFramebuffer(gpu.FramebufferRead, 0)
	if b.presentCopySize != [2]int{width, height} {
		b.dev.TexImage2D(b.presentCopy, gpu.FormatRGBA8, width, height, nil)
		b.presentCopySize = [2]int{width, height}
	}
	b.dev.CopyTexImage2D(b.presentCopy, gpu.FormatRGBA8, 0, 0, width, height)
	return b.presentCopy
}

// Present draws the final frame onto the default surface at width×height.
func (b *Backend) Present(width, height int) {
	width, height = max(1, width), max(1, height)
	src := b.presentSource(width, height)

	dev := b.dev
	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
	dev.Viewport(0, 0, width, height)
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.CullFace)
	dev.Disable(gpu.Blend)
	dev.Disable(gpu.StencilTest)
	dev.ColorMask(true, true, true, true)
	if b.colorKey {
		dev.ClearColor(colorKey[0], colorKey[1], colorKey[2], colorKey[3])
	} else {
		dev.ClearColor(0, 0, 0, 0)
	}
	dev.Clear(gpu.ColorBufferBit)

	s := b.shaders
	dev.UseProgram(s.present)
	dev.Uniform1i(s.presentU.src, 0)
	key := 0
	if b.colorKey {
		key = 1
	}
	dev.Uniform1i(s.presentU.colorKey, key)
	dev.BindTexture(0, src)
	b.drawQuad()
	b.boundAlbedo = 0
}
