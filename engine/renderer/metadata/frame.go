package metadata

import "github.com/spaghettifunk/marionette/engine/math"

/**
 * @brief The input of one rendered frame: the three SoA geometry atlases and the ordered
 * command stream addressing them. Each atlas stores every X value first and every Y value
 * one lane stride later.
 */
type Frame struct {
	Vertices []float32
	UVs      []float32
	Deform   []float32
	Commands []Command
}

// FrameBuilder packs meshes into SoA atlases. All meshes must be added before the lane
// stride is read, since adding a mesh widens every lane.
type FrameBuilder struct {
	xs, ys   []float32
	us, vs   []float32
	dxs, dys []float32
	commands []Command
}

func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{}
}

// AddMesh appends a mesh and returns its offset in all three atlases. Missing uvs or
// deformation are zero filled.
func (fb *FrameBuilder) AddMesh(positions, uvs, deform []math.Vec2) uint32 {
	offset := uint32(len(fb.xs))
	for i, p := range positions {
		fb.xs = append(fb.xs, p.X)
		fb.ys = append(fb.ys, p.Y)
		var uv, d math.Vec2
		if i < len(uvs) {
			uv = uvs[i]
		}
		if i < len(deform) {
			d = deform[i]
		}
		fb.us = append(fb.us, uv.X)
		fb.vs = append(fb.vs, uv.Y)
		fb.dxs = append(fb.dxs, d.X)
		fb.dys = append(fb.dys, d.Y)
	}
	return offset
}

// Stride is the lane length shared by the three atlases.
func (fb *FrameBuilder) Stride() uint32 {
	return uint32(len(fb.xs))
}

func (fb *FrameBuilder) Push(cmds ...Command) {
	fb.commands = append(fb.commands, cmds...)
}

func (fb *FrameBuilder) Build() *Frame {
	lanes := func(a, b []float32) []float32 {
		out := make([]float32, 0, len(a)+len(b))
		out = append(out, a...)
		return append(out, b...)
	}
	return &Frame{
		Vertices: lanes(fb.xs, fb.ys),
		UVs:      lanes(fb.us, fb.vs),
		Deform:   lanes(fb.dxs, fb.dys),
		Commands: append([]Command(nil), fb.commands...),
	}
}
