package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

type maskPhase int

const (
	maskIdle maskPhase = iota
	maskDefining
	maskContent
)

func (p maskPhase) String() string {
	switch p {
	case maskDefining:
		return "defining"
	case maskContent:
		return "content"
	}
	return "idle"
}

type maskState struct {
	phase maskPhase
	// stencil value the current mask compares content against
	ref int
}

// MaskPhase reports the mask state machine's phase, for diagnostics.
func (b *Backend) MaskPhase() string {
	return b.mask.phase.String()
}

// BeginMask enters mask definition. With useStencil the stencil buffer starts at 0 and mask
// geometry stamps coverage; otherwise it starts at 1 so everything is visible until a dodge
// mask cuts it out. A BeginMask while a mask is already open is rejected.
func (b *Backend) BeginMask(useStencil bool) bool {
	if b.mask.phase != maskIdle {
		b.log.Warn("nested mask rejected", "phase", b.mask.phase)
		return false
	}
	initial := 1
	if useStencil {
		initial = 0
	}
	dev := b.dev
	dev.Enable(gpu.StencilTest)
	dev.StencilMask(0xFF)
	dev.ClearStencil(initial)
	dev.Clear(gpu.StencilBufferBit)
	dev.StencilFunc(gpu.Always, initial, 0xFF)
	dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Keep)

	b.mask = maskState{phase: maskDefining, ref: 1}
	b.stats.Masks++
	return true
}

// ApplyMask stamps the packet's coverage into the stencil buffer with color writes off. Dodge
// masks write 0, regular masks write 1.
func (b *Backend) ApplyMask(pkt *metadata.MaskApplyPacket) bool {
	if b.mask.phase != maskDefining {
		b.log.Debug("mask apply outside definition skipped", "phase", b.mask.phase)
		return false
	}
	value := 1
	if pkt.IsDodge {
		value = 0
	}
	dev := b.dev
	dev.ColorMask(false, false, false, false)
	dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Replace)
	dev.StencilFunc(gpu.Always, value, 0xFF)
	dev.StencilMask(0xFF)

	switch pkt.Kind {
	case metadata.MaskDrawablePart:
		b.drawPart(&pkt.Part)
	case metadata.MaskDrawableMask:
		b.drawMaskPacket(&pkt.Mask)
	}

	dev.ColorMask(true, true, true, true)
	return true
}

// BeginMaskContent makes the stencil read-only and limits drawing to pixels holding 1.
func (b *Backend) BeginMaskContent() bool {
	if b.mask.phase != maskDefining {
		b.log.Debug("mask content outside definition skipped", "phase", b.mask.phase)
		return false
	}
	dev := b.dev
	dev.StencilFunc(gpu.Equal, b.mask.ref, 0xFF)
	dev.StencilMask(0)
	dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Keep)
	dev.ColorMask(true, true, true, true)
	b.mask.phase = maskContent
	return true
}

// EndMask turns the stencil test off from any phase.
func (b *Backend) EndMask() {
	dev := b.dev
	dev.StencilMask(0xFF)
	dev.StencilFunc(gpu.Always, 1, 0xFF)
	dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Keep)
	dev.Disable(gpu.StencilTest)
	b.mask = maskState{}
}

// stencilWriteMask is the write mask the current mask phase expects.
func (b *Backend) stencilWriteMask() uint32 {
	if b.mask.phase == maskContent {
		return 0
	}
	return 0xFF
}

func (b *Backend) drawMaskPacket(p *metadata.MaskPacket) {
	if p.IndexCount == 0 || p.VertexCount == 0 || p.VertexAtlasStride == 0 || p.DeformAtlasStride == 0 {
		b.stats.SkippedDraws++
		return
	}
	buf, ok := b.indexBuffer(p.IndexBuffer, p.Indices, p.IndexCount)
	if !ok {
		b.stats.SkippedDraws++
		return
	}
	mvp := p.MVP
	if mvp.IsZero() {
		mvp = p.ModelMatrix
	}
	s := b.shaders
	b.dev.UseProgram(s.mask)
	b.dev.UniformMatrix4fv(s.maskU.mvp, math.NewMat4Transposed(mvp).Data)
	b.dev.Uniform2f(s.maskU.offset, p.Origin.X, p.Origin.Y)
	b.bindMaskSoA(p)
	b.drawIndexed(buf, p.IndexCount)
	b.stats.Draws++
}
