package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

const (
	thumbTile    = 48
	thumbPad     = 2
	thumbColumns = 8
	thumbSidebar = thumbColumns * (thumbTile + thumbPad)
	checkerCell  = 6
)

var thumbBackground = [4]float32{0.18, 0.18, 0.18, 1}

func (b *Backend) SetDebugPointSize(size float32) {
	if size <= 0 {
		size = 1
	}
	b.debugPointSize = size
}

func (b *Backend) SetDebugLineWidth(width float32) {
	if width <= 0 {
		width = 1
	}
	b.debugLineWidth = width
}

// UploadDebugBuffer replaces the debug geometry drawn by DrawDebugPoints and DrawDebugLines.
func (b *Backend) UploadDebugBuffer(positions []math.Vec2, indices []uint16) {
	g := &b.geometry
	data := make([]float32, 0, len(positions)*2)
	for _, p := range positions {
		data = append(data, p.X, p.Y)
	}
	b.dev.BufferData(gpu.ArrayBuffer, g.debugVBO, float32Bytes(data))
	b.dev.BufferData(gpu.ElementArrayBuffer, g.debugIBO, uint16Bytes(indices))
	g.debugIndexCount = len(indices)
}

func (b *Backend) DrawDebugPoints(color math.Vec4, mvp math.Mat4) {
	b.drawDebug(gpu.Points, color, mvp)
}

func (b *Backend) DrawDebugLines(color math.Vec4, mvp math.Mat4) {
	b.drawDebug(gpu.Lines, color, mvp)
}

func (b *Backend) drawDebug(mode gpu.Primitive, color math.Vec4, mvp math.Mat4) {
	g := &b.geometry
	if g.debugIndexCount == 0 {
		return
	}
	dev := b.dev
	s := b.shaders
	dev.UseProgram(s.debug)
	dev.UniformMatrix4fv(s.debugU.mvp, math.NewMat4Transposed(mvp).Data)
	dev.Uniform4f(s.debugU.color, color.X, color.Y, color.Z, color.W)
	dev.BindVertexArray(g.debug)
	dev.Enable(gpu.Blend)
	b.setBlendState(premultipliedOver)
	dev.Disable(gpu.CullFace)
	dev.Disable(gpu.DepthTest)
	if mode == gpu.Points {
		dev.PointSize(b.debugPointSize)
	} else {
		dev.LineWidth(b.debugLineWidth)
	}
	dev.DrawElements(mode, g.debugIndexCount, 0)
}

// checkerPixels is the RGBA image of the thumbnail grid's test tile.
func checkerPixels() []byte {
	on := [4]byte{255, 128, 64, 255}
	off := [4]byte{30, 30, 30, 255}
	out := make([]byte, 0, thumbTile*thumbTile*4)
	for y := 0; y < thumbTile; y++ {
		for x := 0; x < thumbTile; x++ {
			c := off
			if (x/checkerCell+y/checkerCell)%2 == 0 {
				c = on
			}
			out = append(out, c[:]...)
		}
	}
	return out
}

func (b *Backend) ensureThumbTest() gpu.Texture {
	if b.thumbTest != 0 {
		return b.thumbTest
	}
	tex, err := b.dev.CreateTexture()
	if err != nil {
		b.log.Warn("thumbnail test texture allocation failed", "err", err)
		return 0
	}
	b.dev.TexFilter(tex, gpu.Linear, gpu.Linear)
	b.dev.TexWrap(tex, gpu.ClampToEdge, gpu.ClampToEdge)
	b.dev.TexImage2D(tex, gpu.FormatRGBA8, thumbTile, thumbTile, checkerPixels())
	b.thumbTest = tex
	return tex
}

// rectVertices are two triangles covering the pixel rectangle in NDC, interleaved with uvs.
func rectVertices(x, y, width, height, surfaceW, surfaceH int) []float32 {
	left := float32(x)/float32(surfaceW)*2 - 1
	right := float32(x+width)/float32(surfaceW)*2 - 1
	top := float32(y)/float32(surfaceH)*2 - 1
	bottom := float32(y+height)/float32(surfaceH)*2 - 1
	return []float32{
		left, top, 0, 0,
		right, top, 1, 0,
		left, bottom, 0, 1,
		right, top, 1, 0,
		right, bottom, 1, 1,
		left, bottom, 0, 1,
	}
}

type savedState struct {
	draw, read gpu.Framebuffer
	program    gpu.Program
	vao        gpu.VertexArray
	unit0      gpu.Texture
	blend      appliedBlend
	viewport   [4]int
	enabled    map[gpu.Capability]bool
}

func (b *Backend) saveState(caps ...gpu.Capability) savedState {
	dev := b.dev
	st := savedState{
		draw:     dev.FramebufferBinding(gpu.FramebufferDraw),
		read:     dev.FramebufferBinding(gpu.FramebufferRead),
		program:  dev.CurrentProgram(),
		vao:      dev.VertexArrayBinding(),
		unit0:    dev.TextureBinding(0),
		blend:    b.blend,
		viewport: dev.ViewportRect(),
		enabled:  make(map[gpu.Capability]bool, len(caps)),
	}
	for _, c := range caps {
		st.enabled[c] = dev.IsEnabled(c)
	}
	return st
}

func (b *Backend) restoreState(st savedState) {
	dev := b.dev
	dev.BindFramebuffer(gpu.FramebufferDraw, st.draw)
	dev.BindFramebuffer(gpu.FramebufferRead, st.read)
	dev.UseProgram(st.program)
	dev.BindVertexArray(st.vao)
	dev.BindTexture(0, st.unit0)
	b.restoreBlend(st.blend)
	dev.Viewport(st.viewport[0], st.viewport[1], st.viewport[2], st.viewport[3])
	for c, on := range st.enabled {
		if on {
			dev.Enable(c)
		} else {
			dev.Disable(c)
		}
	}
}

// RenderThumbnailGrid tiles every color texture of the resource table into a sidebar on the left
// of the default surface, starting with a checker test tile. GPU state is left as it was found.
func (b *Backend) RenderThumbnailGrid() {
	dev := b.dev
	st := b.saveState(gpu.DepthTest, gpu.StencilTest, gpu.CullFace, gpu.ScissorTest, gpu.Blend)
	defer b.restoreState(st)

	width, height := dev.DrawingBufferSize()
	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
	for _, c := range []gpu.Capability{gpu.DepthTest, gpu.StencilTest, gpu.CullFace, gpu.ScissorTest, gpu.Blend} {
		dev.Disable(c)
	}
	dev.Viewport(0, 0, width, height)

	s := b.shaders
	g := &b.geometry
	identity := math.NewMat4Identity().Data
	dev.BindVertexArray(g.thumb)

	dev.UseProgram(s.debug)
	dev.UniformMatrix4fv(s.debugU.mvp, identity)
	bg := thumbBackground
	dev.Uniform4f(s.debugU.color, bg[0], bg[1], bg[2], bg[3])
	dev.BufferData(gpu.ArrayBuffer, g.thumbVBO, float32Bytes(rectVertices(0, 0, min(thumbSidebar, width), height, width, height)))
	dev.DrawArrays(gpu.Triangles, 0, 6)

	tiles := []gpu.Texture{b.ensureThumbTest()}
	for _, h := range b.Textures() {
		if rec := b.textures[h]; !rec.stencil {
			tiles = append(tiles, rec.tex)
		}
	}

	dev.UseProgram(s.thumb)
	dev.UniformMatrix4fv(s.thumbU.mvp, identity)
	dev.Uniform1i(s.thumbU.albedo, 0)
	tx, ty := thumbPad, thumbPad
	for _, tex := range tiles {
		if tex == 0 {
			continue
		}
		if tx+thumbTile > thumbSidebar {
			break
		}
		dev.BindTexture(0, tex)
		dev.BufferData(gpu.ArrayBuffer, g.thumbVBO, float32Bytes(rectVertices(tx, ty, thumbTile, thumbTile, width, height)))
		dev.DrawArrays(gpu.Triangles, 0, 6)

		ty += thumbTile + thumbPad
		if ty+thumbTile > height-thumbPad {
			ty = thumbPad
			tx += thumbTile + thumbPad
		}
	}
}
