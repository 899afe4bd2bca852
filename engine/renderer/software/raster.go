package software

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

type shadedVertex struct {
	x, y float32
	vary Varyings
	ok   bool
}

// drawContext is everything a fragment needs, resolved once per draw call.
type drawContext struct {
	kernel   *Kernel
	uniforms *Uniforms
	textures Textures
	target   drawTarget
	// clip rectangle in window coordinates, exclusive upper bound
	x0, y0, x1, y1 int
}

func (d *Device) DrawElements(mode gpu.Primitive, count, offset int) {
	vao := d.vertexArrays[d.vao]
	data := d.buffers[vao.element]
	indices := make([]int, 0, count)
	for k := 0; k < count; k++ {
		o := offset + 2*k
		if o < 0 || o+2 > len(data) {
			break
		}
		indices = append(indices, int(binary.LittleEndian.Uint16(data[o:])))
	}
	d.draw(mode, indices)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int) {
	indices := make([]int, count)
	for k := range indices {
		indices[k] = first + k
	}
	d.draw(mode, indices)
}

func (d *Device) draw(mode gpu.Primitive, indices []int) {
	prog := d.programs[d.current]
	if prog == nil || len(indices) == 0 {
		return
	}
	ctx := &drawContext{
		kernel:   prog.kernel,
		uniforms: &Uniforms{p: prog},
		textures: sampler{d: d},
		target:   d.resolveDrawTarget(),
	}
	if ctx.target.width == 0 || ctx.target.height == 0 {
		return
	}
	ctx.x0, ctx.y0, ctx.x1, ctx.y1 = d.clipRect(ctx.target.width, ctx.target.height)
	ctx.x0 = max(ctx.x0, d.viewport[0])
	ctx.y0 = max(ctx.y0, d.viewport[1])
	ctx.x1 = min(ctx.x1, d.viewport[0]+d.viewport[2])
	ctx.y1 = min(ctx.y1, d.viewport[1]+d.viewport[3])

	d.stats.DrawCalls++
	if d.blendEnabled[0] && d.blend.eqRGB.Advanced() {
		d.stats.AdvancedDraws++
		if !d.caps.AdvancedBlendCoherent {
			if d.pendingBarrier {
				d.stats.UnsyncedAdvancedDraws++
			}
			d.pendingBarrier = true
		}
	}

	cache := make(map[int]shadedVertex, len(indices))
	shade := func(i int) shadedVertex {
		if v, ok := cache[i]; ok {
			return v
		}
		v := d.shadeVertex(ctx, i)
		cache[i] = v
		return v
	}

	switch mode {
	case gpu.Triangles:
		for k := 0; k+2 < len(indices); k += 3 {
			d.rasterTriangle(ctx, shade(indices[k]), shade(indices[k+1]), shade(indices[k+2]))
		}
	case gpu.Lines:
		for k := 0; k+1 < len(indices); k += 2 {
			d.rasterLine(ctx, shade(indices[k]), shade(indices[k+1]))
		}
	case gpu.Points:
		for _, i := range indices {
			d.rasterPoint(ctx, shade(i))
		}
	}
}

func (d *Device) fetchVertex(i int) *VertexIn {
	var in VertexIn
	vao := d.vertexArrays[d.vao]
	for loc := range in {
		in[loc] = [4]float32{0, 0, 0, 1}
		a := vao.attribs[loc]
		if !a.enabled {
			continue
		}
		data := d.buffers[a.buffer]
		stride := a.stride
		if stride == 0 {
			stride = a.size * 4
		}
		base := a.offset + i*stride
		for c := 0; c < a.size && c < 4; c++ {
			o := base + c*4
			if o < 0 || o+4 > len(data) {
				break
			}
			in[loc][c] = math.Float32frombits(binary.LittleEndian.Uint32(data[o:]))
		}
	}
	return &in
}

func (d *Device) shadeVertex(ctx *drawContext, i int) shadedVertex {
	pos, vary := ctx.kernel.Vertex(d.fetchVertex(i), ctx.uniforms)
	if pos[3] <= 0 {
		return shadedVertex{}
	}
	nx, ny := pos[0]/pos[3], pos[1]/pos[3]
	return shadedVertex{
		x:    float32(d.viewport[0]) + (nx+1)*0.5*float32(d.viewport[2]),
		y:    float32(d.viewport[1]) + (ny+1)*0.5*float32(d.viewport[3]),
		vary: vary,
		ok:   true,
	}
}

func edge(a, b shadedVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a→b is a top or left edge of a counter-clockwise triangle
// in y-up window coordinates. Pixels exactly on such edges are covered.
func topLeft(a, b shadedVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx < 0)
}

func covers(w float32, a, b shadedVertex) bool {
	return w > 0 || (w == 0 && topLeft(a, b))
}

func (d *Device) rasterTriangle(ctx *drawContext, a, b, c shadedVertex) {
	if !a.ok || !b.ok || !c.ok {
		return
	}
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(ctx.x0, int(math32.Floor(math32.Min(a.x, math32.Min(b.x, c.x)))))
	minY := max(ctx.y0, int(math32.Floor(math32.Min(a.y, math32.Min(b.y, c.y)))))
	maxX := min(ctx.x1-1, int(math32.Ceil(math32.Max(a.x, math32.Max(b.x, c.x)))))
	maxY := min(ctx.y1-1, int(math32.Ceil(math32.Max(a.y, math32.Max(b.y, c.y)))))

	for py := minY; py <= maxY; py++ {
		cy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float32(px) + 0.5
			w0 := edge(b, c, cx, cy)
			w1 := edge(c, a, cx, cy)
			w2 := edge(a, b, cx, cy)
			if !covers(w0, b, c) || !covers(w1, c, a) || !covers(w2, a, b) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area
			var vary Varyings
			for k := range vary {
				vary[k] = a.vary[k]*l0 + b.vary[k]*l1 + c.vary[k]*l2
			}
			d.shadeFragment(ctx, px, py, vary)
		}
	}
}

func (d *Device) rasterLine(ctx *drawContext, a, b shadedVertex) {
	if !a.ok || !b.ok {
		return
	}
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(math32.Ceil(math32.Max(math32.Abs(dx), math32.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float32(s) / float32(steps)
		px := int(math32.Floor(a.x + dx*t))
		py := int(math32.Floor(a.y + dy*t))
		if px < ctx.x0 || py < ctx.y0 || px >= ctx.x1 || py >= ctx.y1 {
			continue
		}
		var vary Varyings
		for k := range vary {
			vary[k] = a.vary[k] + (b.vary[k]-a.vary[k])*t
		}
		d.shadeFragment(ctx, px, py, vary)
	}
}

func (d *Device) rasterPoint(ctx *drawContext, p shadedVertex) {
	if !p.ok {
		return
	}
	half := math32.Max(d.pointSize, 1) / 2
	x0 := max(ctx.x0, int(math32.Floor(p.x-half+0.5)))
	y0 := max(ctx.y0, int(math32.Floor(p.y-half+0.5)))
	x1 := min(ctx.x1, int(math32.Floor(p.x+half+0.5)))
	y1 := min(ctx.y1, int(math32.Floor(p.y+half+0.5)))
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.shadeFragment(ctx, px, py, p.vary)
		}
	}
}

func (d *Device) shadeFragment(ctx *drawContext, x, y int, vary Varyings) {
	out := ctx.kernel.Fragment(vary, ctx.uniforms, ctx.textures)
	if out.Discard {
		return
	}
	if d.enabled[gpu.StencilTest] && ctx.target.stencil != nil {
		if !d.stencilTest(ctx.target.stencil, x, y) {
			return
		}
	}
	for i, dst := range ctx.target.outputs {
		if dst == nil || out.Written&(1<<i) == 0 {
			continue
		}
		src := out.Color[i]
		if d.blendEnabled[i] {
			src = d.blend.blend(src, dst.texel(x, y))
		}
		dst.store(x, y, src, d.colorMask)
	}
}

// stencilTest runs the comparison and applies the matching operation. Depth testing is
// never enabled by the pipeline, so a passing fragment always takes the depth-pass op.
func (d *Device) stencilTest(t *texture, x, y int) bool {
	st := d.stencil
	s := t.stencilAt(x, y)
	ref := uint32(st.ref) & 0xFF
	pass := compare(st.fn, ref&st.mask, uint32(s)&st.mask)
	op := st.sfail
	if pass {
		op = st.pass
	}
	next := applyStencilOp(op, s, uint8(ref))
	w := uint8(st.writeMask)
	t.setStencil(x, y, s&^w|next&w)
	return pass
}

func compare(fn gpu.CompareFunc, ref, value uint32) bool {
	switch fn {
	case gpu.Never:
		return false
	case gpu.Less:
		return ref < value
	case gpu.Equal:
		return ref == value
	case gpu.LessEqual:
		return ref <= value
	case gpu.Greater:
		return ref > value
	case gpu.NotEqual:
		return ref != value
	case gpu.GreaterEqual:
		return ref >= value
	}
	return true
}

func applyStencilOp(op gpu.StencilOp, s, ref uint8) uint8 {
	switch op {
	case gpu.Zero:
		return 0
	case gpu.Replace:
		return ref
	case gpu.Incr:
		if s == 0xFF {
			return s
		}
		return s + 1
	case gpu.Decr:
		if s == 0 {
			return s
		}
		return s - 1
	case gpu.Invert:
		return ^s
	}
	return s
}
