package software

import (
	"encoding/binary"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identity = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// painter draws flat colored rectangles given in clip space with the debug kernel.
type painter struct {
	d   *Device
	buf gpu.Buffer
	mvp gpu.UniformLocation
	col gpu.UniformLocation
}

func newPainter(t *testing.T, d *Device) *painter {
	t.Helper()
	prog, err := d.CreateProgram(gpu.ProgramSource{Name: gpu.ProgramDebug})
	require.NoError(t, err)
	vao, err := d.CreateVertexArray()
	require.NoError(t, err)
	buf, err := d.CreateBuffer()
	require.NoError(t, err)
	d.BindVertexArray(vao)
	d.VertexAttribPointer(gpu.AttribQuadPosition, buf, 2, 0, 0)
	d.UseProgram(prog)
	return &painter{d: d, buf: buf, mvp: d.UniformLocation(prog, "mvp"), col: d.UniformLocation(prog, "inColor")}
}

func (p *painter) rect(x0, y0, x1, y1 float32, c [4]float32) {
	verts := []float32{x0, y0, x1, y0, x0, y1, x1, y0, x1, y1, x0, y1}
	data := make([]byte, len(verts)*4)
	for i, v := range verts {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	p.d.BufferData(gpu.ArrayBuffer, p.buf, data)
	p.d.UniformMatrix4fv(p.mvp, identity)
	p.d.Uniform4f(p.col, c[0], c[1], c[2], c[3])
	p.d.DrawArrays(gpu.Triangles, 0, 6)
}

func TestNewDevice(t *testing.T) {
	d := New(0, 3)
	w, h := d.DrawingBufferSize()
	assert.Equal(t, [2]int{1, 3}, [2]int{w, h})
	assert.Equal(t, [4]int{0, 0, 1, 3}, d.ViewportRect())
	assert.False(t, d.Caps().AdvancedBlend)

	adv := New(4, 4, WithAdvancedBlend(false))
	assert.True(t, adv.Caps().AdvancedBlend)
	assert.True(t, adv.Caps().BlendBarrier)
	assert.False(t, New(4, 4, WithAdvancedBlend(true)).Caps().BlendBarrier)
}

func TestCreateProgramNeedsKernel(t *testing.T) {
	d := New(4, 4, WithKernel(gpu.ProgramThumb, nil))
	_, err := d.CreateProgram(gpu.ProgramSource{Name: gpu.ProgramThumb})
	assert.True(t, errors.Is(err, core.ErrShaderBuild))
	_, err = d.CreateProgram(gpu.ProgramSource{Name: "nothing"})
	assert.True(t, errors.Is(err, core.ErrShaderBuild))

	p, err := d.CreateProgram(gpu.ProgramSource{Name: gpu.ProgramPresent})
	require.NoError(t, err)
	assert.Equal(t, gpu.NoUniform, d.UniformLocation(p, "missing"))
	assert.NotEqual(t, gpu.NoUniform, d.UniformLocation(p, "srcTex"))
	assert.Equal(t, 1, d.Stats().ProgramsCreated)
}

func TestClearHonorsScissorAndColorMask(t *testing.T) {
	d := New(4, 4)
	d.ClearColor(1, 0, 0, 1)
	d.Clear(gpu.ColorBufferBit)

	d.Enable(gpu.ScissorTest)
	d.Scissor(0, 0, 2, 4)
	d.ColorMask(false, true, false, false)
	d.ClearColor(0, 1, 1, 0)
	d.Clear(gpu.ColorBufferBit)

	img := d.Snapshot()
	assert.Equal(t, color.RGBA{R: 255, G: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(3, 0))
}

func TestFramebufferCompleteness(t *testing.T) {
	d := New(4, 4)
	fb, err := d.CreateFramebuffer()
	require.NoError(t, err)
	d.BindFramebuffer(gpu.FramebufferBoth, fb)
	assert.Equal(t, gpu.FramebufferIncompleteMissingAttachment, d.CheckFramebufferStatus(gpu.FramebufferDraw))

	ds, _ := d.CreateTexture()
	d.TexImage2D(ds, gpu.FormatDepth24Stencil8, 4, 4, nil)
	d.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment0, ds)
	assert.Equal(t, gpu.FramebufferIncompleteAttachment, d.CheckFramebufferStatus(gpu.FramebufferDraw))

	c, _ := d.CreateTexture()
	d.TexImage2D(c, gpu.FormatRGBA8, 4, 4, nil)
	d.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment0, c)
	d.FramebufferTexture2D(gpu.FramebufferDraw, gpu.StencilAttachment, ds)
	assert.Equal(t, gpu.FramebufferComplete, d.CheckFramebufferStatus(gpu.FramebufferDraw))
	assert.Equal(t, c, d.FramebufferAttachment(gpu.FramebufferDraw, gpu.ColorAttachment0))

	// deleting a bound attachment detaches it
	d.DeleteTexture(c)
	assert.Equal(t, gpu.Texture(0), d.FramebufferAttachment(gpu.FramebufferDraw, gpu.ColorAttachment0))

	d.DeleteFramebuffer(fb)
	assert.Equal(t, gpu.Framebuffer(0), d.FramebufferBinding(gpu.FramebufferDraw))
	assert.Zero(t, d.LiveFramebuffers())
}

func TestStencilLimitsDrawing(t *testing.T) {
	d := New(8, 8)
	p := newPainter(t, d)

	d.Enable(gpu.StencilTest)
	d.StencilMask(0xFF)
	d.ClearStencil(0)
	d.Clear(gpu.StencilBufferBit)
	d.StencilFunc(gpu.Always, 1, 0xFF)
	d.StencilOp(gpu.Keep, gpu.Keep, gpu.Replace)
	d.ColorMask(false, false, false, false)
	p.rect(-1, -1, 0, 1, [4]float32{1, 1, 1, 1})

	d.ColorMask(true, true, true, true)
	d.StencilFunc(gpu.Equal, 1, 0xFF)
	d.StencilMask(0)
	p.rect(-1, -1, 1, 1, [4]float32{0, 1, 0, 1})

	img := d.Snapshot()
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 4))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(6, 4))

	words := make([]byte, 8*8*4)
	d.ReadPixels(0, 0, 8, 8, gpu.FormatDepth24Stencil8, words)
	assert.Equal(t, byte(1), words[0])
	assert.Equal(t, byte(0), words[7*4])
}

func TestPremultipliedBlend(t *testing.T) {
	d := New(2, 2)
	p := newPainter(t, d)
	d.ClearColor(0, 0, 1, 1)
	d.Clear(gpu.ColorBufferBit)

	d.Enable(gpu.Blend)
	d.BlendFunc(gpu.FactorOne, gpu.FactorOneMinusSrcAlpha)
	p.rect(-1, -1, 1, 1, [4]float32{0.5, 0, 0, 0.5})

	got := d.Snapshot().RGBAAt(0, 0)
	assert.InDelta(t, 128, int(got.R), 1)
	assert.InDelta(t, 128, int(got.B), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestAdvancedBlendBarrierTracking(t *testing.T) {
	d := New(2, 2, WithAdvancedBlend(false))
	p := newPainter(t, d)
	d.Enable(gpu.Blend)
	d.BlendEquation(gpu.MultiplyKHR)

	white := [4]float32{1, 1, 1, 1}
	p.rect(-1, -1, 1, 1, white)
	p.rect(-1, -1, 1, 1, white)
	assert.Equal(t, 1, d.Stats().UnsyncedAdvancedDraws)

	d.BlendBarrier()
	p.rect(-1, -1, 1, 1, white)
	stats := d.Stats()
	assert.Equal(t, 3, stats.AdvancedDraws)
	assert.Equal(t, 1, stats.BlendBarriers)
	assert.Equal(t, 1, stats.UnsyncedAdvancedDraws)

	coherent := New(2, 2, WithAdvancedBlend(true))
	coherent.BlendBarrier()
	assert.Zero(t, coherent.Stats().BlendBarriers)
}

func TestViewportMapsClipSpace(t *testing.T) {
	d := New(8, 8)
	p := newPainter(t, d)
	d.Viewport(0, 0, 4, 4)
	p.rect(-1, -1, 1, 1, [4]float32{1, 0, 0, 1})

	img := d.Snapshot()
	// the viewport covers the bottom left quarter
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(1, 6))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(6, 1))
}

func TestBlitAndCopy(t *testing.T) {
	d := New(4, 4)
	d.ClearColor(0, 1, 0, 1)
	d.Clear(gpu.ColorBufferBit)

	a, _ := d.CreateTexture()
	d.TexImage2D(a, gpu.FormatRGBA8, 2, 2, nil)
	b, _ := d.CreateTexture()
	d.TexImage2D(b, gpu.FormatRGBA8, 2, 2, nil)
	fb, _ := d.CreateFramebuffer()
	d.BindFramebuffer(gpu.FramebufferDraw, fb)
	d.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment0, a)
	d.FramebufferTexture2D(gpu.FramebufferDraw, gpu.ColorAttachment1, b)
	d.DrawBuffers([]gpu.Attachment{gpu.ColorAttachment0, gpu.ColorAttachment1})

	d.BindFramebuffer(gpu.FramebufferRead, 0)
	d.BlitFramebuffer([4]int{0, 0, 4, 4}, [4]int{0, 0, 2, 2}, false)

	d.BindFramebuffer(gpu.FramebufferRead, fb)
	out := make([]byte, 2*2*4)
	d.ReadPixels(0, 0, 2, 2, gpu.FormatRGBA8, out)
	assert.Equal(t, []byte{0, 255, 0, 255}, out[:4])

	c, _ := d.CreateTexture()
	d.BindFramebuffer(gpu.FramebufferRead, 0)
	d.CopyTexImage2D(c, gpu.FormatRGBA8, 0, 0, 3, 1)
	w, h, ok := d.TextureSize(c)
	require.True(t, ok)
	assert.Equal(t, [2]int{3, 1}, [2]int{w, h})
}

func TestSamplingUnboundUnitIsOpaqueBlack(t *testing.T) {
	d := New(2, 2)
	s := sampler{d: d}
	assert.Equal(t, [4]float32{0, 0, 0, 1}, s.Sample(0, 0.5, 0.5))
	assert.Equal(t, [4]float32{0, 0, 0, 1}, s.Sample(99, 0.5, 0.5))

	tex, _ := d.CreateTexture()
	d.TexImage2D(tex, gpu.FormatRG8, 1, 1, []byte{255, 0})
	d.TexFilter(tex, gpu.Nearest, gpu.Nearest)
	d.BindTexture(3, tex)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, s.Sample(3, 0.5, 0.5))
}
