package pipeline

import (
	"image/color"
	"testing"

	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leftHalf = [4]float32{-1, -1, 0, 1}

func applyMask(q *quadFrame, mesh int, dodge bool) metadata.ApplyMask {
	return metadata.ApplyMask{Packet: metadata.MaskApplyPacket{
		Kind:    metadata.MaskDrawableMask,
		Mask:    q.mask(mesh, 2),
		IsDodge: dodge,
	}}
}

func TestMaskedContentIsVisibleInsideMask(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)

	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: true},
		applyMask(q, 0, false),
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: q.part(0, tex, 1)},
		metadata.EndMask{},
	)))

	assertSurface(t, dev, red)
	stats := b.FrameStats()
	assert.Equal(t, uint32(1), stats.Masks)
	assert.Equal(t, uint32(2), stats.Draws)
	assert.Equal(t, "idle", b.MaskPhase())
	assert.False(t, dev.IsEnabled(gpu.StencilTest))
}

func TestMaskWithoutGeometryHidesContent(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)

	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: true},
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: q.part(0, tex, 1)},
		metadata.EndMask{},
	)))
	assertSurface(t, dev, color.RGBA{})
}

func TestPartialMask(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)

	q := newQuadFrame([4]float32{-1, -1, 1, 1}, leftHalf)
	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: true},
		applyMask(q, 1, false),
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: q.part(0, tex, 1)},
		metadata.EndMask{},
	)))

	img := dev.Snapshot()
	assert.Equal(t, red, img.RGBAAt(2, 8))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(13, 8))
}

// A dodge mask cuts its coverage out of an otherwise visible region.
func TestDodgeMask(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)

	q := newQuadFrame([4]float32{-1, -1, 1, 1}, leftHalf)
	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: false},
		applyMask(q, 1, true),
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: q.part(0, tex, 1)},
		metadata.EndMask{},
	)))

	img := dev.Snapshot()
	assert.Equal(t, color.RGBA{}, img.RGBAAt(2, 8))
	assert.Equal(t, red, img.RGBAAt(13, 8))
}

func TestPartAsMask(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)
	cutout := solidTexture(t, b, 4, green)

	q := newQuadFrame([4]float32{-1, -1, 1, 1}, leftHalf)
	maskPart := q.part(1, cutout, 3)
	maskPart.IsMask = true
	maskPart.MaskThreshold = 0.5

	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: true},
		metadata.ApplyMask{Packet: metadata.MaskApplyPacket{Kind: metadata.MaskDrawablePart, Part: maskPart}},
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: q.part(0, tex, 1)},
		metadata.EndMask{},
	)))

	img := dev.Snapshot()
	// the mask part writes no color of its own
	assert.Equal(t, red, img.RGBAAt(2, 8))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(13, 8))
}

func TestApplyingAMaskTwiceMatchesOnce(t *testing.T) {
	stencilAfter := func(applies int) []byte {
		b, _ := newTestBackend(t, 16, 16)
		target := colorTextures(t, b, 1, 8)[0]
		stencil, err := b.CreateTexture(8, 8, 0, true)
		require.NoError(t, err)
		spec := compositeSpec(stencil, target)

		q := newQuadFrame(leftHalf)
		cmds := []metadata.Command{
			metadata.BeginDynamicComposite{Pass: spec},
			metadata.BeginMask{UsesStencil: true},
		}
		for i := 0; i < applies; i++ {
			cmds = append(cmds, applyMask(q, 0, false))
		}
		cmds = append(cmds, metadata.BeginMaskContent{}, metadata.EndMask{}, metadata.EndDynamicComposite{Pass: spec})
		require.NoError(t, b.RenderFrame(q.build(cmds...)))

		words := make([]byte, 8*8*4)
		require.True(t, b.ReadTextureData(stencil, 0, true, words))
		out := make([]byte, 0, 8*8)
		for i := 0; i < len(words); i += 4 {
			out = append(out, words[i])
		}
		return out
	}

	once := stencilAfter(1)
	assert.Equal(t, once, stencilAfter(2))
	assert.Equal(t, byte(1), once[0], "covered pixel")
	assert.Equal(t, byte(0), once[7], "uncovered pixel")
}

func TestMaskStateMachine(t *testing.T) {
	b, _ := newTestBackend(t, 16, 16)
	q := newQuadFrame()
	pkt := applyMask(q, 0, false).Packet

	assert.False(t, b.ApplyMask(&pkt), "apply while idle")
	assert.False(t, b.BeginMaskContent(), "content while idle")

	require.True(t, b.BeginMask(true))
	assert.Equal(t, "defining", b.MaskPhase())
	assert.False(t, b.BeginMask(false), "nested begin")

	require.True(t, b.BeginMaskContent())
	assert.Equal(t, "content", b.MaskPhase())
	assert.False(t, b.ApplyMask(&pkt), "apply after content began")

	b.EndMask()
	assert.Equal(t, "idle", b.MaskPhase())
	b.EndMask()
	assert.Equal(t, "idle", b.MaskPhase())
}

func TestOpenMaskEndsWithFrame(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(
		metadata.BeginMask{UsesStencil: true},
		applyMask(q, 0, false),
	)))
	assert.Equal(t, "idle", b.MaskPhase())
	assert.False(t, dev.IsEnabled(gpu.StencilTest))
}
