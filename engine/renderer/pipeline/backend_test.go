package pipeline

import (
	"errors"
	"image/color"
	"testing"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/spaghettifunk/marionette/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

var quadIndices = []uint16{0, 1, 2, 2, 1, 3}

func testConfig() core.RendererConfig {
	return core.DefaultConfig().Renderer
}

func newTestBackend(t *testing.T, width, height int, opts ...software.Option) (*Backend, *software.Device) {
	t.Helper()
	dev := software.New(width, height, opts...)
	b, err := New(dev, testConfig())
	require.NoError(t, err)
	t.Cleanup(b.Dispose)
	return b, dev
}

// quadFrame holds a frame builder with one quad mesh spanning [x0,x1]×[y0,y1] in clip space.
type quadFrame struct {
	builder *metadata.FrameBuilder
	offsets []uint32
}

func newQuadFrame(rects ...[4]float32) *quadFrame {
	q := &quadFrame{builder: metadata.NewFrameBuilder()}
	if len(rects) == 0 {
		rects = [][4]float32{{-1, -1, 1, 1}}
	}
	for _, r := range rects {
		positions := []math.Vec2{{X: r[0], Y: r[1]}, {X: r[2], Y: r[1]}, {X: r[0], Y: r[3]}, {X: r[2], Y: r[3]}}
		uvs := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
		q.offsets = append(q.offsets, q.builder.AddMesh(positions, uvs, nil))
	}
	return q
}

func (q *quadFrame) part(mesh int, tex metadata.TextureHandle, ibo metadata.IndexBufferHandle) metadata.DrawPacket {
	stride := q.builder.Stride()
	p := metadata.NewDrawPacket()
	p.VertexOffset, p.VertexAtlasStride = q.offsets[mesh], stride
	p.UVOffset, p.UVAtlasStride = q.offsets[mesh], stride
	p.DeformOffset, p.DeformAtlasStride = q.offsets[mesh], stride
	p.VertexCount = 4
	p.IndexCount = uint32(len(quadIndices))
	p.IndexBuffer = ibo
	p.Indices = quadIndices
	p.Textures[0] = tex
	p.TextureCount = 1
	return p
}

func (q *quadFrame) mask(mesh int, ibo metadata.IndexBufferHandle) metadata.MaskPacket {
	stride := q.builder.Stride()
	return metadata.MaskPacket{
		ModelMatrix:       math.NewMat4Identity(),
		VertexOffset:      q.offsets[mesh],
		VertexAtlasStride: stride,
		DeformOffset:      q.offsets[mesh],
		DeformAtlasStride: stride,
		VertexCount:       4,
		IndexCount:        uint32(len(quadIndices)),
		IndexBuffer:       ibo,
		Indices:           quadIndices,
	}
}

func (q *quadFrame) build(cmds ...metadata.Command) *metadata.Frame {
	q.builder.Push(cmds...)
	return q.builder.Build()
}

func solidTexture(t *testing.T, b *Backend, size int, c color.RGBA) metadata.TextureHandle {
	t.Helper()
	h, err := b.CreateTexture(size, size, 4, false)
	require.NoError(t, err)
	data := make([]byte, 0, size*size*4)
	for i := 0; i < size*size; i++ {
		data = append(data, c.R, c.G, c.B, c.A)
	}
	require.True(t, b.UpdateTexture(h, data, size, size, 4))
	return h
}

func assertSurface(t *testing.T, dev *software.Device, want color.RGBA) {
	t.Helper()
	img := dev.Snapshot()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestNewRejectsNilDevice(t *testing.T) {
	_, err := New(nil, testConfig())
	assert.True(t, errors.Is(err, core.ErrDeviceLost))
}

func TestNewFailsWhenAProgramDoesNotBuild(t *testing.T) {
	dev := software.New(8, 8, software.WithKernel(gpu.ProgramPost, nil))
	b, err := New(dev, testConfig())
	assert.Nil(t, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrShaderBuild))
	assert.Contains(t, err.Error(), gpu.ProgramPost)
}

// A 64×64 red texture drawn over the whole viewport with Normal blending yields a solid red frame.
func TestRenderSolidQuad(t *testing.T) {
	b, dev := newTestBackend(t, 64, 64)
	tex := solidTexture(t, b, 64, red)

	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(metadata.DrawPart{Packet: q.part(0, tex, 1)})))

	assertSurface(t, dev, red)
	stats := b.FrameStats()
	assert.Equal(t, uint32(1), stats.Draws)
	assert.Zero(t, stats.SkippedDraws)
	w, h := b.SceneSize()
	assert.Equal(t, [2]int{64, 64}, [2]int{w, h})
}

func TestRenderSkipsInvalidPackets(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)
	q := newQuadFrame()

	hidden := q.part(0, tex, 1)
	hidden.Renderable = false
	noIndices := q.part(0, tex, 1)
	noIndices.IndexCount = 0
	unknownAlbedo := q.part(0, 999, 1)
	noTextures := q.part(0, tex, 1)
	noTextures.TextureCount = 0
	noStride := q.part(0, tex, 1)
	noStride.UVAtlasStride = 0
	noBuffer := q.part(0, tex, 0)

	frame := q.build(
		metadata.DrawPart{Packet: hidden},
		metadata.DrawPart{Packet: noIndices},
		metadata.DrawPart{Packet: unknownAlbedo},
		metadata.DrawPart{Packet: noTextures},
		metadata.DrawPart{Packet: noStride},
		metadata.DrawPart{Packet: noBuffer},
	)
	require.NoError(t, b.RenderFrame(frame))

	stats := b.FrameStats()
	assert.Zero(t, stats.Draws)
	assert.Equal(t, uint32(6), stats.SkippedDraws)
	assertSurface(t, dev, color.RGBA{})
}

func TestRenderFrameResetsStats(t *testing.T) {
	b, _ := newTestBackend(t, 16, 16)
	tex := solidTexture(t, b, 4, red)
	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(metadata.DrawPart{Packet: q.part(0, tex, 1)})))
	require.Equal(t, uint32(1), b.FrameStats().Draws)

	require.NoError(t, b.RenderFrame(nil))
	assert.Equal(t, core.FrameCounters{}, b.FrameStats())
}

func TestRenderFrameLeavesDefaultState(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	require.NoError(t, b.RenderFrame(nil))

	assert.Equal(t, gpu.Framebuffer(0), dev.FramebufferBinding(gpu.FramebufferDraw))
	assert.Equal(t, gpu.Framebuffer(0), dev.FramebufferBinding(gpu.FramebufferRead))
	assert.Equal(t, gpu.Program(0), dev.CurrentProgram())
	assert.Equal(t, gpu.VertexArray(0), dev.VertexArrayBinding())
	assert.False(t, dev.IsEnabled(gpu.Blend))
	assert.True(t, dev.IsEnabled(gpu.DepthTest))
	assert.True(t, dev.IsEnabled(gpu.CullFace))
	assert.False(t, dev.IsEnabled(gpu.StencilTest))
}

func TestRenderAfterDispose(t *testing.T) {
	dev := software.New(8, 8)
	b, err := New(dev, testConfig())
	require.NoError(t, err)
	b.Dispose()
	b.Dispose()

	assert.True(t, errors.Is(b.RenderFrame(nil), core.ErrDeviceLost))
	assert.Zero(t, dev.LiveFramebuffers())
	assert.Zero(t, dev.LiveTextures())
}

func TestColorKeyPresent(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	b.SetColorKeyTransparency(true)

	require.NoError(t, b.RenderFrame(nil))
	assertSurface(t, dev, color.RGBA{R: 255, B: 255, A: 255})

	tex := solidTexture(t, b, 4, red)
	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(metadata.DrawPart{Packet: q.part(0, tex, 1)})))
	assertSurface(t, dev, red)
}

func TestClearColorReachesSurface(t *testing.T) {
	b, dev := newTestBackend(t, 8, 8)
	b.SetClearColor(0, 1, 0, 1)
	require.NoError(t, b.RenderFrame(nil))
	assertSurface(t, dev, green)
}

func TestPresentWithoutScene(t *testing.T) {
	b, dev := newTestBackend(t, 8, 8)
	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
	dev.ClearColor(1, 0, 0, 1)
	dev.Clear(gpu.ColorBufferBit)

	b.Present(8, 8)
	assertSurface(t, dev, red)
	assert.NotZero(t, b.presentCopy)
}

func TestDefaultPostProcessKeepsAlbedo(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	cfg := testConfig()
	cfg.DefaultPostProcess = true
	b.ApplyConfig(cfg)

	tex := solidTexture(t, b, 4, red)
	q := newQuadFrame()
	require.NoError(t, b.RenderFrame(q.build(metadata.DrawPart{Packet: q.part(0, tex, 1)})))
	assertSurface(t, dev, red)
}

func TestUserPostProcessChain(t *testing.T) {
	paint := &software.Kernel{
		Uniforms: []string{"mvp", "ambientLight", "fbSize", "albedo", "emissive", "bumpmap"},
		Vertex:   software.QuadVertex,
		Fragment: func(_ software.Varyings, u *software.Uniforms, _ software.Textures) software.FragmentOut {
			var out software.FragmentOut
			out.Color[0] = u.Vec4("ambientLight")
			out.Written = 1
			return out
		},
	}
	b, dev := newTestBackend(t, 16, 16, software.WithKernel("paint", paint))
	b.SetSceneAmbientLight(0, 1, 0, 1)

	h, err := b.CreateShader("paint", "", "")
	require.NoError(t, err)
	require.True(t, b.PushPostProcessShader(h))

	// one pass ends in the scratch target and is copied back
	require.NoError(t, b.RenderFrame(nil))
	assertSurface(t, dev, green)

	// two passes end in the scene target
	cfg := testConfig()
	cfg.DefaultPostProcess = true
	cfg.AmbientLight = [4]float32{0, 1, 0, 1}
	b.ApplyConfig(cfg)
	require.NoError(t, b.RenderFrame(nil))
	assertSurface(t, dev, green)

	b.ClearPostProcessShaders()
	b.ApplyConfig(testConfig())
	require.NoError(t, b.RenderFrame(nil))
	assertSurface(t, dev, color.RGBA{})

	b.DestroyShader(h)
	assert.False(t, b.PushPostProcessShader(h))
	assert.False(t, b.UseShader(h))
}

func TestCreateShaderFailure(t *testing.T) {
	b, _ := newTestBackend(t, 8, 8)
	_, err := b.CreateShader("missing", "", "")
	assert.True(t, errors.Is(err, core.ErrShaderBuild))
}

func TestShaderUniforms(t *testing.T) {
	k := &software.Kernel{
		Uniforms: []string{"tint"},
		Vertex:   software.QuadVertex,
		Fragment: func(software.Varyings, *software.Uniforms, software.Textures) software.FragmentOut {
			return software.FragmentOut{}
		},
	}
	b, dev := newTestBackend(t, 8, 8, software.WithKernel("custom", k))
	h, err := b.CreateShader("custom", "", "")
	require.NoError(t, err)

	loc := b.ShaderUniformLocation(h, "tint")
	assert.NotEqual(t, gpu.NoUniform, loc)
	assert.Equal(t, gpu.NoUniform, b.ShaderUniformLocation(h, "nope"))
	assert.Equal(t, gpu.NoUniform, b.ShaderUniformLocation(999, "tint"))

	require.True(t, b.UseShader(h))
	assert.NotEqual(t, gpu.Program(0), dev.CurrentProgram())
	b.SetShaderUniformVec4(loc, math.NewVec4(1, 2, 3, 4))
}

func TestThumbnailGridRestoresState(t *testing.T) {
	b, dev := newTestBackend(t, 480, 120)
	tex := solidTexture(t, b, 4, red)
	stencil, err := b.CreateTexture(4, 4, 0, true)
	require.NoError(t, err)
	_ = stencil

	fb, err := dev.CreateFramebuffer()
	require.NoError(t, err)
	dev.BindFramebuffer(gpu.FramebufferBoth, fb)
	dev.Viewport(3, 4, 50, 60)
	dev.Enable(gpu.ScissorTest)
	dev.Enable(gpu.DepthTest)
	dev.Disable(gpu.StencilTest)
	dev.Enable(gpu.Blend)
	dev.UseProgram(b.shaders.mask)
	dev.BindVertexArray(b.geometry.drawable)
	dev.BindTexture(0, b.textures[tex].tex)
	b.applyBlendMode(metadata.BlendModeScreen, true)

	b.RenderThumbnailGrid()

	assert.Equal(t, fb, dev.FramebufferBinding(gpu.FramebufferDraw))
	assert.Equal(t, fb, dev.FramebufferBinding(gpu.FramebufferRead))
	assert.Equal(t, [4]int{3, 4, 50, 60}, dev.ViewportRect())
	assert.True(t, dev.IsEnabled(gpu.ScissorTest))
	assert.True(t, dev.IsEnabled(gpu.DepthTest))
	assert.False(t, dev.IsEnabled(gpu.StencilTest))
	assert.True(t, dev.IsEnabled(gpu.Blend))
	assert.Equal(t, b.shaders.mask, dev.CurrentProgram())
	assert.Equal(t, b.geometry.drawable, dev.VertexArrayBinding())
	assert.Equal(t, b.textures[tex].tex, dev.TextureBinding(0))
	assert.Equal(t, appliedBlend{state: legacyBlend(metadata.BlendModeScreen)}, b.blend)

	img := dev.Snapshot()
	bg := img.RGBAAt(1, 1)
	assert.InDelta(t, 46, int(bg.R), 1)
	assert.Equal(t, bg.R, bg.G)
	assert.Equal(t, uint8(255), bg.A)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(470, 60), "pixels right of the sidebar are untouched")
}

func TestThumbnailGridDuringFrame(t *testing.T) {
	b, dev := newTestBackend(t, 480, 120)
	b.SetThumbnailGrid(true)
	require.NoError(t, b.RenderFrame(nil))

	img := dev.Snapshot()
	// the checker tile occupies the first slot at the bottom left
	tile := img.RGBAAt(thumbPad+checkerCell/2, 120-1-thumbPad-checkerCell/2)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 64, A: 255}, tile)
}

func TestDebugGeometry(t *testing.T) {
	b, dev := newTestBackend(t, 16, 16)
	b.SetDebugPointSize(0)
	assert.Equal(t, float32(1), b.debugPointSize)
	b.SetDebugLineWidth(3)
	assert.Equal(t, float32(3), b.debugLineWidth)

	before := dev.Stats().DrawCalls
	b.DrawDebugLines(math.NewVec4(1, 1, 1, 1), math.NewMat4Identity())
	assert.Equal(t, before, dev.Stats().DrawCalls, "no geometry uploaded yet")

	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
	dev.Viewport(0, 0, 16, 16)
	b.UploadDebugBuffer([]math.Vec2{{X: -1, Y: 0.05}, {X: 1, Y: 0.05}}, []uint16{0, 1})
	b.DrawDebugLines(math.NewVec4(0, 1, 0, 1), math.NewMat4Identity())
	assert.Equal(t, before+1, dev.Stats().DrawCalls)
	b.DrawDebugPoints(math.NewVec4(0, 1, 0, 1), math.NewMat4Identity())
	assert.Equal(t, before+2, dev.Stats().DrawCalls)
}

func TestViewportStack(t *testing.T) {
	b, _ := newTestBackend(t, 40, 30)
	w, h := b.Viewport()
	assert.Equal(t, [2]int{40, 30}, [2]int{w, h})

	b.PushViewport(10, 20)
	b.PushViewport(5, 6)
	w, h = b.Viewport()
	assert.Equal(t, [2]int{5, 6}, [2]int{w, h})

	b.SetViewport(7, 8)
	w, h = b.Viewport()
	assert.Equal(t, [2]int{7, 8}, [2]int{w, h})

	b.PopViewport()
	w, h = b.Viewport()
	assert.Equal(t, [2]int{10, 20}, [2]int{w, h})
	b.PopViewport()
	b.PopViewport()
	w, h = b.Viewport()
	assert.Equal(t, [2]int{40, 30}, [2]int{w, h})

	require.NoError(t, b.ResizeViewportTargets(12, 9))
	w, h = b.SceneSize()
	assert.Equal(t, [2]int{12, 9}, [2]int{w, h})
}

func TestSceneTargetsFollowViewport(t *testing.T) {
	b, dev := newTestBackend(t, 32, 32)
	require.NoError(t, b.RenderFrame(nil))
	created := dev.Stats().FramebuffersCreated

	require.NoError(t, b.RenderFrame(nil))
	assert.Equal(t, created, dev.Stats().FramebuffersCreated, "same size reuses the targets")

	dev.Resize(20, 10)
	require.NoError(t, b.RenderFrame(nil))
	assert.Equal(t, created+2, dev.Stats().FramebuffersCreated)
	w, h := b.SceneSize()
	assert.Equal(t, [2]int{20, 10}, [2]int{w, h})
}

func TestApplyConfig(t *testing.T) {
	b, _ := newTestBackend(t, 8, 8)
	cfg := testConfig()
	cfg.ClearColor = [4]float32{0.1, 0.2, 0.3, 0.4}
	cfg.DisableAdvancedBlend = true
	cfg.ColorKeyTransparency = true
	cfg.ThumbnailGrid = true
	cfg.DebugLineWidth = 2
	b.ApplyConfig(cfg)

	assert.Equal(t, cfg.ClearColor, b.clearColor)
	assert.True(t, b.legacyOnly)
	assert.True(t, b.colorKey)
	assert.True(t, b.thumbnailGrid)
	assert.Equal(t, float32(2), b.debugLineWidth)

	b.SetDifferenceAggressiveMode(true)
	assert.True(t, b.DifferenceAggressiveMode())
	assert.False(t, b.SupportsAdvancedBlend())
	assert.False(t, b.SupportsAdvancedBlendCoherent())
}
