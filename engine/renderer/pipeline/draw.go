package pipeline

import (
	"slices"

	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

const (
	stageAlbedo   = 0
	stageEmissive = 1
	stageCombined = 2
)

// DrawPart draws one part into the bound target. Invalid packets are skipped.
func (b *Backend) DrawPart(p *metadata.DrawPacket) {
	b.drawPart(p)
}

func (b *Backend) partDrawable(p *metadata.DrawPacket) bool {
	if !p.Renderable || p.IndexCount == 0 || p.VertexCount == 0 {
		return false
	}
	if min(p.TextureCount, metadata.MaxPartTextures) <= 0 {
		return false
	}
	if _, ok := b.textures[p.Textures[0]]; !ok {
		return false
	}
	return p.VertexAtlasStride != 0 && p.UVAtlasStride != 0 && p.DeformAtlasStride != 0
}

func (b *Backend) drawPart(p *metadata.DrawPacket) {
	if !b.partDrawable(p) {
		b.stats.SkippedDraws++
		return
	}
	buf, ok := b.indexBuffer(p.IndexBuffer, p.Indices, p.IndexCount)
	if !ok {
		b.stats.SkippedDraws++
		return
	}

	b.bindPartTextures(p)
	b.bindPartSoA(p)

	switch {
	case p.IsMask:
		b.drawPartMask(p, buf)
	case p.UseMultistageBlend:
		b.setupStage(stageAlbedo, p)
		b.setDrawBuffers(0, 1)
		b.applyBlendMode(p.BlendMode, false)
		b.drawIndexed(buf, p.IndexCount)
		b.blendModeBarrier(p.BlendMode)

		// targets without emissive or bump attachments have nothing for the second stage
		if p.HasEmissionOrBumpmap && b.setDrawBuffers(1, sceneColorTargets) > 0 {
			b.setupStage(stageEmissive, p)
			b.applyBlendMode(p.BlendMode, true)
			b.drawIndexed(buf, p.IndexCount)
		}
	default:
		// advanced equations only support a single color output
		b.setupStage(stageCombined, p)
		b.setDrawBuffers(0, sceneColorTargets)
		b.applyBlendMode(p.BlendMode, true)
		b.drawIndexed(buf, p.IndexCount)
	}

	b.setDrawBuffers(0, sceneColorTargets)
	b.setBlendState(premultipliedOver)
	b.stats.Draws++
}

func (b *Backend) drawPartMask(p *metadata.DrawPacket, buf gpu.Buffer) {
	s := b.shaders
	b.dev.UseProgram(s.partMsk)
	b.dev.UniformMatrix4fv(s.partMskU.mvp, partMVP(p))
	b.dev.Uniform2f(s.partMskU.offset, p.Origin.X, p.Origin.Y)
	b.dev.Uniform1f(s.partMskU.threshold, p.MaskThreshold)
	b.dev.Uniform1i(s.partMskU.tex, 0)
	b.setBlendState(premultipliedOver)
	b.drawIndexed(buf, p.IndexCount)
}

// partMVP is the transform uploaded for a part: render × model, transposed for upload.
func partMVP(p *metadata.DrawPacket) [16]float32 {
	return math.NewMat4Transposed(p.RenderMatrix.Mul(p.ModelMatrix)).Data
}

func (b *Backend) setupStage(stage int, p *metadata.DrawPacket) {
	s := b.shaders
	u := s.stageU[stage]
	dev := b.dev
	dev.UseProgram(s.stages[stage])
	dev.UniformMatrix4fv(u.mvp, partMVP(p))
	dev.Uniform2f(u.offset, p.Origin.X, p.Origin.Y)
	dev.Uniform1f(u.opacity, p.Opacity)
	dev.Uniform3f(u.multColor, p.ClampedTint.X, p.ClampedTint.Y, p.ClampedTint.Z)
	dev.Uniform3f(u.screenColor, p.ClampedScreen.X, p.ClampedScreen.Y, p.ClampedScreen.Z)
	dev.Uniform1f(u.emissionStrength, p.EmissionStrength)
	dev.Uniform1i(u.albedo, 0)
	dev.Uniform1i(u.emissive, 1)
	dev.Uniform1i(u.bumpmap, 2)
}

// bindPartTextures binds the part's textures to units 0..2 unless its albedo is already bound.
func (b *Backend) bindPartTextures(p *metadata.DrawPacket) {
	albedo := p.Textures[0]
	if albedo == b.boundAlbedo {
		return
	}
	count := min(p.TextureCount, metadata.MaxPartTextures)
	attached := b.boundColorTextures()
	for i := 0; i < metadata.MaxPartTextures; i++ {
		var tex gpu.Texture
		if i < count {
			tex = b.samplerTexture(p.Textures[i], attached)
		}
		b.dev.BindTexture(i, tex)
	}
	b.boundAlbedo = albedo
}

// samplerTexture resolves a handle for sampling. Textures that are being rendered to resolve to
// no texture.
func (b *Backend) samplerTexture(h metadata.TextureHandle, attached []gpu.Texture) gpu.Texture {
	if b.activeTargets.contains(h) {
		return 0
	}
	rec, ok := b.textures[h]
	if !ok || rec.stencil {
		return 0
	}
	if slices.Contains(attached, rec.tex) {
		return 0
	}
	return rec.tex
}
