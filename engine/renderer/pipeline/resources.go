package pipeline

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

type textureRecord struct {
	tex       gpu.Texture
	width     int
	height    int
	channels  int
	stencil   bool
	mipmapped bool
}

// TextureInfo describes a texture owned by the resource table.
type TextureInfo struct {
	Width    int
	Height   int
	Channels int
	Stencil  bool
}

// CreateTexture allocates a texture of width×height. stencil selects a combined depth-stencil
// texture, otherwise channels (1..4) picks the color format.
func (b *Backend) CreateTexture(width, height, channels int, stencil bool) (metadata.TextureHandle, error) {
	tex, err := b.dev.CreateTexture()
	if err != nil {
		return 0, fmt.Errorf("%w: texture %dx%d: %v", core.ErrResourceCreation, width, height, err)
	}
	format := gpu.FormatForChannels(channels)
	filter := gpu.Linear
	if stencil {
		format = gpu.FormatDepth24Stencil8
		filter = gpu.Nearest
	}
	b.dev.TexFilter(tex, filter, filter)
	b.dev.TexWrap(tex, gpu.ClampToEdge, gpu.ClampToEdge)
	b.dev.TexImage2D(tex, format, width, height, nil)

	h := metadata.TextureHandle(b.textureIDs.AcquireUnused(func(id uint32) bool {
		_, live := b.textures[metadata.TextureHandle(id)]
		return live
	}))
	b.textures[h] = &textureRecord{
		tex:      tex,
		width:    width,
		height:   height,
		channels: channels,
		stencil:  stencil,
	}
	b.log.Debug("texture created", "handle", h, "width", width, "height", height, "channels", channels, "stencil", stencil)
	return h, nil
}

// UpdateTexture replaces the contents of a color texture. It is a no-op for unknown handles,
// stencil textures, or data shorter than width*height*channels.
func (b *Backend) UpdateTexture(h metadata.TextureHandle, data []byte, width, height, channels int) bool {
	rec, ok := b.textures[h]
	if !ok || rec.stencil {
		return false
	}
	expected := width * height * channels
	if expected <= 0 || len(data) < expected {
		return false
	}
	b.dev.TexImage2D(rec.tex, gpu.FormatForChannels(channels), width, height, data[:expected])
	rec.width, rec.height, rec.channels = width, height, channels
	rec.mipmapped = false
	return true
}

// UploadTextureData reallocates a texture, converting data from inChannels to outChannels. With
// stencil set the texture becomes a depth-stencil target and data is ignored. Empty data
// allocates without uploading; data shorter than width×height×inChannels is rejected.
func (b *Backend) UploadTextureData(h metadata.TextureHandle, width, height, inChannels, outChannels int, stencil bool, data []byte) bool {
	rec, ok := b.textures[h]
	if !ok || width <= 0 || height <= 0 {
		return false
	}
	if !stencil && len(data) > 0 && len(data) < width*height*clampChannels(inChannels) {
		b.log.Warn("texture upload shorter than its size", "handle", h, "bytes", len(data), "width", width, "height", height)
		return false
	}
	rec.mipmapped = false
	if stencil {
		b.dev.TexImage2D(rec.tex, gpu.FormatDepth24Stencil8, width, height, nil)
		rec.width, rec.height, rec.channels, rec.stencil = width, height, outChannels, true
		return true
	}
	var pixels []byte
	if len(data) > 0 {
		pixels = convertChannels(data, width*height, inChannels, outChannels)
	}
	b.dev.TexImage2D(rec.tex, gpu.FormatForChannels(outChannels), width, height, pixels)
	rec.width, rec.height, rec.channels, rec.stencil = width, height, outChannels, false
	return true
}

// convertChannels expands or narrows interleaved 8-bit pixels. Missing color channels read as
// zero and a missing alpha as opaque.
func convertChannels(src []byte, pixels, in, out int) []byte {
	in, out = clampChannels(in), clampChannels(out)
	if in == out {
		n := min(len(src), pixels*in)
		return src[:n]
	}
	pixels = min(pixels, len(src)/in)
	dst := make([]byte, pixels*out)
	for i := 0; i < pixels; i++ {
		s := src[i*in : i*in+in]
		d := dst[i*out : i*out+out]
		for c := 0; c < out; c++ {
			switch {
			case c == 3 && in == 4:
				d[3] = s[3]
			case c == 3:
				d[3] = 0xFF
			case c < in:
				d[c] = s[c]
			}
		}
	}
	return dst
}

func clampChannels(c int) int {
	return math.Clamp(c, 1, 4)
}

// ReleaseTexture frees the texture and evicts every cached composite framebuffer referencing it.
func (b *Backend) ReleaseTexture(h metadata.TextureHandle) {
	rec, ok := b.textures[h]
	if !ok {
		return
	}
	b.evictFramebuffers(h)
	b.dev.DeleteTexture(rec.tex)
	delete(b.textures, h)
	if b.boundAlbedo == h {
		b.boundAlbedo = 0
	}
	b.log.Debug("texture released", "handle", h)
}

// ReadTextureData reads the texture back through a transient framebuffer. Color reads produce
// channels bytes per pixel; stencil reads produce packed depth<<8|stencil words.
func (b *Backend) ReadTextureData(h metadata.TextureHandle, channels int, stencil bool, out []byte) bool {
	rec, ok := b.textures[h]
	if !ok || rec.tex == 0 || rec.width <= 0 || rec.height <= 0 {
		return false
	}
	format := gpu.FormatForChannels(channels)
	att := gpu.ColorAttachment0
	if stencil {
		format = gpu.FormatDepth24Stencil8
		att = gpu.DepthStencilAttachment
	}
	if len(out) < rec.width*rec.height*format.Channels() {
		return false
	}

	prevRead := b.dev.FramebufferBinding(gpu.FramebufferRead)
	prevDraw := b.dev.FramebufferBinding(gpu.FramebufferDraw)
	fb, err := b.dev.CreateFramebuffer()
	if err != nil {
		b.log.Warn("no framebuffer for texture readback", "handle", h, "err", err)
		return false
	}
	b.dev.BindFramebuffer(gpu.FramebufferBoth, fb)
	b.dev.FramebufferTexture2D(gpu.FramebufferBoth, att, rec.tex)
	b.dev.ReadPixels(0, 0, rec.width, rec.height, format, out)

	b.dev.BindFramebuffer(gpu.FramebufferRead, prevRead)
	b.dev.BindFramebuffer(gpu.FramebufferDraw, prevDraw)
	b.dev.DeleteFramebuffer(fb)
	return true
}

// BindTextureHandle binds the texture to a sampler unit, or unbinds the unit for unknown handles.
func (b *Backend) BindTextureHandle(h metadata.TextureHandle, unit int) {
	unit = math.Clamp(unit, 0, 31)
	var tex gpu.Texture
	if rec, ok := b.textures[h]; ok {
		tex = rec.tex
	}
	b.dev.BindTexture(unit, tex)
}

func (b *Backend) GenerateTextureMipmap(h metadata.TextureHandle) {
	rec, ok := b.textures[h]
	if !ok || rec.stencil {
		return
	}
	b.dev.GenerateMipmap(rec.tex)
	rec.mipmapped = true
}

// ApplyTextureFiltering selects nearest or linear sampling. The minification filter uses the
// mipmap chain once GenerateTextureMipmap has run on the texture.
func (b *Backend) ApplyTextureFiltering(h metadata.TextureHandle, filtering metadata.Filtering) {
	rec, ok := b.textures[h]
	if !ok {
		return
	}
	linear := filtering == metadata.FilteringLinear
	mag := gpu.Nearest
	if linear {
		mag = gpu.Linear
	}
	minFilter := mag
	if rec.mipmapped {
		minFilter = gpu.NearestMipmapNearest
		if linear {
			minFilter = gpu.LinearMipmapLinear
		}
	}
	b.dev.TexFilter(rec.tex, minFilter, mag)
}

func (b *Backend) ApplyTextureWrapping(h metadata.TextureHandle, wrapping metadata.Wrapping) {
	rec, ok := b.textures[h]
	if !ok {
		return
	}
	wrap := gpu.ClampToEdge
	switch wrapping {
	case metadata.WrappingRepeat:
		wrap = gpu.Repeat
	case metadata.WrappingMirror:
		wrap = gpu.MirroredRepeat
	default:
		if b.caps.BorderClamp {
			wrap = gpu.ClampToBorder
		}
	}
	b.dev.TexWrap(rec.tex, wrap, wrap)
	if wrapping == metadata.WrappingClamp && b.caps.BorderClamp {
		b.dev.TexBorderColor(rec.tex, [4]float32{})
	}
}

// ApplyTextureAnisotropy clamps value to [1, max anisotropy]. Devices without anisotropic
// filtering ignore it.
func (b *Backend) ApplyTextureAnisotropy(h metadata.TextureHandle, value float32) {
	rec, ok := b.textures[h]
	if !ok || !b.caps.Anisotropy {
		return
	}
	b.dev.TexAnisotropy(rec.tex, math.Clamp(value, 1, max(1, b.caps.MaxAnisotropy)))
}

func (b *Backend) TextureSize(h metadata.TextureHandle) (int, int, bool) {
	rec, ok := b.textures[h]
	if !ok {
		return 0, 0, false
	}
	return rec.width, rec.height, true
}

func (b *Backend) TextureInfo(h metadata.TextureHandle) (TextureInfo, bool) {
	rec, ok := b.textures[h]
	if !ok {
		return TextureInfo{}, false
	}
	return TextureInfo{Width: rec.width, Height: rec.height, Channels: rec.channels, Stencil: rec.stencil}, true
}

// Textures lists the live texture handles in allocation order.
func (b *Backend) Textures() []metadata.TextureHandle {
	return slices.Sorted(maps.Keys(b.textures))
}

// indexBuffer resolves an index buffer id, creating it on first use and replacing its contents
// when indices are supplied.
func (b *Backend) indexBuffer(h metadata.IndexBufferHandle, indices []uint16, count uint32) (gpu.Buffer, bool) {
	if h == 0 || count == 0 {
		return 0, false
	}
	buf, ok := b.indexBuffers[h]
	if !ok {
		var err error
		if buf, err = b.dev.CreateBuffer(); err != nil {
			b.log.Warn("index buffer allocation failed", "id", h, "err", err)
			return 0, false
		}
		b.indexBuffers[h] = buf
	}
	if indices != nil {
		b.dev.BufferData(gpu.ElementArrayBuffer, buf, uint16Bytes(indices))
	}
	return buf, true
}
