package pipeline

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// Full screen quad in NDC, interleaved position/uv, two triangles.
var fullscreenQuad = []float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	-1, 1, 0, 1,
	-1, 1, 0, 1,
	1, -1, 1, 0,
	1, 1, 1, 1,
}

const quadVertexStride = 16

type geometryBuffers struct {
	drawable gpu.VertexArray
	vertices gpu.Buffer
	uvs      gpu.Buffer
	deform   gpu.Buffer

	quad    gpu.VertexArray
	quadVBO gpu.Buffer

	thumb    gpu.VertexArray
	thumbVBO gpu.Buffer

	debug           gpu.VertexArray
	debugVBO        gpu.Buffer
	debugIBO        gpu.Buffer
	debugIndexCount int
}

func (g *geometryBuffers) init(dev gpu.Device) error {
	var err error
	newBuffer := func(dst *gpu.Buffer) {
		if err != nil {
			return
		}
		*dst, err = dev.CreateBuffer()
	}
	newVAO := func(dst *gpu.VertexArray) {
		if err != nil {
			return
		}
		*dst, err = dev.CreateVertexArray()
	}
	newVAO(&g.drawable)
	newBuffer(&g.vertices)
	newBuffer(&g.uvs)
	newBuffer(&g.deform)
	newVAO(&g.quad)
	newBuffer(&g.quadVBO)
	newVAO(&g.thumb)
	newBuffer(&g.thumbVBO)
	newVAO(&g.debug)
	newBuffer(&g.debugVBO)
	newBuffer(&g.debugIBO)
	if err != nil {
		return fmt.Errorf("%w: shared geometry: %v", core.ErrResourceCreation, err)
	}

	dev.BufferData(gpu.ArrayBuffer, g.quadVBO, float32Bytes(fullscreenQuad))
	dev.BindVertexArray(g.quad)
	dev.VertexAttribPointer(gpu.AttribQuadPosition, g.quadVBO, 2, quadVertexStride, 0)
	dev.VertexAttribPointer(gpu.AttribQuadUV, g.quadVBO, 2, quadVertexStride, 8)

	dev.BindVertexArray(g.thumb)
	dev.VertexAttribPointer(gpu.AttribQuadPosition, g.thumbVBO, 2, quadVertexStride, 0)
	dev.VertexAttribPointer(gpu.AttribQuadUV, g.thumbVBO, 2, quadVertexStride, 8)

	dev.BindVertexArray(g.debug)
	dev.VertexAttribPointer(gpu.AttribQuadPosition, g.debugVBO, 2, 8, 0)
	dev.BindElementBuffer(g.debugIBO)

	dev.BindVertexArray(0)
	return nil
}

func (g *geometryBuffers) release(dev gpu.Device) {
	for _, vao := range []*gpu.VertexArray{&g.drawable, &g.quad, &g.thumb, &g.debug} {
		if *vao != 0 {
			dev.DeleteVertexArray(*vao)
			*vao = 0
		}
	}
	for _, buf := range []*gpu.Buffer{&g.vertices, &g.uvs, &g.deform, &g.quadVBO, &g.thumbVBO, &g.debugVBO, &g.debugIBO} {
		if *buf != 0 {
			dev.DeleteBuffer(*buf)
			*buf = 0
		}
	}
	g.debugIndexCount = 0
}

// UploadFrameGeometry replaces the three shared SoA atlases every draw of the frame reads from.
func (b *Backend) UploadFrameGeometry(vertices, uvs, deform []float32) {
	b.dev.BufferData(gpu.ArrayBuffer, b.geometry.vertices, float32Bytes(vertices))
	b.dev.BufferData(gpu.ArrayBuffer, b.geometry.uvs, float32Bytes(uvs))
	b.dev.BufferData(gpu.ArrayBuffer, b.geometry.deform, float32Bytes(deform))
}

// lanes returns the byte offsets of the X and Y lanes of one atlas.
func lanes(offset, stride uint32) (int, int) {
	x := int(offset) * 4
	return x, int(stride)*4 + x
}

func (b *Backend) bindPartSoA(p *metadata.DrawPacket) {
	g := &b.geometry
	b.dev.BindVertexArray(g.drawable)
	vx, vy := lanes(p.VertexOffset, p.VertexAtlasStride)
	ux, uy := lanes(p.UVOffset, p.UVAtlasStride)
	dx, dy := lanes(p.DeformOffset, p.DeformAtlasStride)
	b.dev.VertexAttribPointer(gpu.AttribVertexX, g.vertices, 1, 0, vx)
	b.dev.VertexAttribPointer(gpu.AttribVertexY, g.vertices, 1, 0, vy)
	b.dev.VertexAttribPointer(gpu.AttribUVX, g.uvs, 1, 0, ux)
	b.dev.VertexAttribPointer(gpu.AttribUVY, g.uvs, 1, 0, uy)
	b.dev.VertexAttribPointer(gpu.AttribDeformX, g.deform, 1, 0, dx)
	b.dev.VertexAttribPointer(gpu.AttribDeformY, g.deform, 1, 0, dy)
}

func (b *Backend) bindMaskSoA(p *metadata.MaskPacket) {
	g := &b.geometry
	b.dev.BindVertexArray(g.drawable)
	vx, vy := lanes(p.VertexOffset, p.VertexAtlasStride)
	dx, dy := lanes(p.DeformOffset, p.DeformAtlasStride)
	b.dev.VertexAttribPointer(gpu.AttribMaskVertexX, g.vertices, 1, 0, vx)
	b.dev.VertexAttribPointer(gpu.AttribMaskVertexY, g.vertices, 1, 0, vy)
	b.dev.VertexAttribPointer(gpu.AttribMaskDeformX, g.deform, 1, 0, dx)
	b.dev.VertexAttribPointer(gpu.AttribMaskDeformY, g.deform, 1, 0, dy)
	b.dev.DisableVertexAttrib(4)
	b.dev.DisableVertexAttrib(5)
}

// drawIndexed issues an indexed triangle draw from buf on the drawable vertex array.
func (b *Backend) drawIndexed(buf gpu.Buffer, count uint32) {
	b.dev.BindElementBuffer(buf)
	b.dev.DrawElements(gpu.Triangles, int(count), 0)
}

func (b *Backend) drawQuad() {
	b.dev.BindVertexArray(b.geometry.quad)
	b.dev.DrawArrays(gpu.Triangles, 0, 6)
}

func float32Bytes(v []float32) []byte {
	out := make([]byte, 0, len(v)*4)
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, stdmath.Float32bits(f))
	}
	return out
}

func uint16Bytes(v []uint16) []byte {
	out := make([]byte, 0, len(v)*2)
	for _, i := range v {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}
