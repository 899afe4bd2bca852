package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// framebufferKey identifies a composite surface. Slots at or beyond count are always zero so
// that equal surfaces hash equally.
type framebufferKey struct {
	textures [metadata.MaxPartTextures]metadata.TextureHandle
	count    int
	stencil  metadata.TextureHandle
}

type cachedFramebuffer struct {
	fb         gpu.Framebuffer
	hasStencil bool
}

func makeFramebufferKey(spec *metadata.DynamicCompositeSpec) framebufferKey {
	key := framebufferKey{
		count:   math.Clamp(spec.TextureCount, 0, metadata.MaxPartTextures),
		stencil: spec.Stencil,
	}
	copy(key.textures[:key.count], spec.Textures[:key.count])
	return key
}

func (k framebufferKey) references(h metadata.TextureHandle) bool {
	if h == 0 {
		return false
	}
	if k.stencil == h {
		return true
	}
	for _, t := range k.textures[:k.count] {
		if t == h {
			return true
		}
	}
	return false
}

// compositeFramebuffer returns the cached framebuffer of key, building it on a miss. It reports
// false when the surface cannot be built; failed builds are not cached.
func (b *Backend) compositeFramebuffer(key framebufferKey) (cachedFramebuffer, bool) {
	if entry, ok := b.fbCache[key]; ok {
		return entry, true
	}
	if key.count == 0 {
		return cachedFramebuffer{}, false
	}
	if _, ok := b.textures[key.textures[0]]; !ok {
		return cachedFramebuffer{}, false
	}

	dev := b.dev
	prevDraw := dev.FramebufferBinding(gpu.FramebufferDraw)
	prevRead := dev.FramebufferBinding(gpu.FramebufferRead)
	defer func() {
		dev.BindFramebuffer(gpu.FramebufferDraw, prevDraw)
		dev.BindFramebuffer(gpu.FramebufferRead, prevRead)
	}()

	fb, err := dev.CreateFramebuffer()
	if err != nil {
		b.log.Warn("composite framebuffer allocation failed", "err", err)
		return cachedFramebuffer{}, false
	}
	dev.BindFramebuffer(gpu.FramebufferDraw, fb)
	for i, h := range key.textures[:key.count] {
		var tex gpu.Texture
		if rec, ok := b.textures[h]; ok {
			tex = rec.tex
		}
		dev.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment(i), tex)
	}
	entry := cachedFramebuffer{fb: fb}
	if rec, ok := b.textures[key.stencil]; ok && key.stencil != 0 {
		dev.FramebufferTexture2D(gpu.FramebufferDraw, gpu.StencilAttachment, rec.tex)
		entry.hasStencil = true
	} else {
		dev.FramebufferTexture2D(gpu.FramebufferDraw, gpu.StencilAttachment, 0)
	}

	if status := dev.CheckFramebufferStatus(gpu.FramebufferDraw); status != gpu.FramebufferComplete {
		b.log.Warn("composite framebuffer incomplete", "status", status, "textures", key.textures, "count", key.count, "stencil", key.stencil)
		dev.DeleteFramebuffer(fb)
		return cachedFramebuffer{}, false
	}
	b.fbCache[key] = entry
	b.log.Debug("composite framebuffer built", "fb", fb, "textures", key.textures, "count", key.count, "stencil", key.stencil)
	return entry, true
}

// evictFramebuffers deletes every cached framebuffer whose key references h.
func (b *Backend) evictFramebuffers(h metadata.TextureHandle) {
	for key, entry := range b.fbCache {
		if !key.references(h) {
			continue
		}
		b.dev.DeleteFramebuffer(entry.fb)
		delete(b.fbCache, key)
	}
}

// CachedFramebuffers is the number of composite framebuffers currently cached.
func (b *Backend) CachedFramebuffers() int {
	return len(b.fbCache)
}
