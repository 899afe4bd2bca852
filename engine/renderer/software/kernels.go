package software

import (
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

// VertexIn holds the attribute values of one vertex by location. Components an
// attribute does not source default to (0, 0, 0, 1).
type VertexIn [gpu.MaxVertexAttribs][4]float32

// Varyings are interpolated across a primitive.
type Varyings [4]float32

// Textures resolves sampler units.
type Textures interface {
	Sample(unit int, u, v float32) [4]float32
}

// FragmentOut holds one color per output location. Written has bit i set for each
// location the kernel produced.
type FragmentOut struct {
	Color   [gpu.MaxColorAttachments][4]float32
	Written uint8
	Discard bool
}

func (f *FragmentOut) set(location int, c [4]float32) {
	f.Color[location] = c
	f.Written |= 1 << location
}

// Kernel is the Go rendition of a shader program.
type Kernel struct {
	Uniforms []string
	Vertex   func(in *VertexIn, u *Uniforms) ([4]float32, Varyings)
	Fragment func(v Varyings, u *Uniforms, tex Textures) FragmentOut
}

// Uniforms exposes the values of the program being drawn with.
type Uniforms struct {
	p *program
}

func (u *Uniforms) get(name string, n int) []float32 {
	out := make([]float32, n)
	if u == nil || u.p == nil {
		return out
	}
	loc, ok := u.p.locations[name]
	if !ok {
		return out
	}
	copy(out, u.p.values[loc])
	return out
}

func (u *Uniforms) Float(name string) float32 {
	return u.get(name, 1)[0]
}

func (u *Uniforms) Int(name string) int {
	return int(u.get(name, 1)[0])
}

func (u *Uniforms) Vec2(name string) [2]float32 {
	v := u.get(name, 2)
	return [2]float32{v[0], v[1]}
}

func (u *Uniforms) Vec3(name string) [3]float32 {
	v := u.get(name, 3)
	return [3]float32{v[0], v[1], v[2]}
}

func (u *Uniforms) Vec4(name string) [4]float32 {
	v := u.get(name, 4)
	return [4]float32{v[0], v[1], v[2], v[3]}
}

// Transform multiplies v by the column-major mat4 uniform name.
func (u *Uniforms) Transform(name string, v [4]float32) [4]float32 {
	m := u.get(name, 16)
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

var partUniforms = []string{"mvp", "offset", "opacity", "multColor", "screenColor", "emissionStrength", "albedo", "emissive", "bumpmap"}

func partVertex(in *VertexIn, u *Uniforms) ([4]float32, Varyings) {
	off := u.Vec2("offset")
	pos := u.Transform("mvp", [4]float32{
		in[gpu.AttribVertexX][0] - off[0] + in[gpu.AttribDeformX][0],
		in[gpu.AttribVertexY][0] - off[1] + in[gpu.AttribDeformY][0],
		0, 1,
	})
	return pos, Varyings{in[gpu.AttribUVX][0], in[gpu.AttribUVY][0]}
}

// screenTint applies the screen color weighted by alpha: 1 - (1-c)(1-screen·a).
func screenTint(c [4]float32, screen [3]float32, a float32) [4]float32 {
	var out [4]float32
	for i := 0; i < 3; i++ {
		out[i] = 1 - (1-c[i])*(1-screen[i]*a)
	}
	out[3] = a
	return out
}

func scale4(c [4]float32, rgb [3]float32, s float32) [4]float32 {
	return [4]float32{c[0] * rgb[0] * s, c[1] * rgb[1] * s, c[2] * rgb[2] * s, c[3] * s}
}

func partStage1(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	t := tex.Sample(u.Int("albedo"), v[0], v[1])
	out.set(0, scale4(screenTint(t, u.Vec3("screenColor"), t[3]), u.Vec3("multColor"), u.Float("opacity")))
	return out
}

func partStage2(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	t := tex.Sample(u.Int("albedo"), v[0], v[1])
	e := tex.Sample(u.Int("emissive"), v[0], v[1])
	b := tex.Sample(u.Int("bumpmap"), v[0], v[1])
	emission := scale4(screenTint(e, u.Vec3("screenColor"), t[3]), u.Vec3("multColor"), u.Float("emissionStrength"))
	out.set(1, scale4(emission, [3]float32{1, 1, 1}, t[3]))
	out.set(2, scale4(b, [3]float32{1, 1, 1}, t[3]))
	return out
}

func partStage3(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	t := tex.Sample(u.Int("albedo"), v[0], v[1])
	e := tex.Sample(u.Int("emissive"), v[0], v[1])
	b := tex.Sample(u.Int("bumpmap"), v[0], v[1])
	screen, mult := u.Vec3("screenColor"), u.Vec3("multColor")
	albedo := scale4(screenTint(t, screen, t[3]), mult, u.Float("opacity"))
	emission := scale4(screenTint(e, screen, t[3]), mult, u.Float("emissionStrength"))
	out.set(0, albedo)
	out.set(1, scale4(emission, [3]float32{1, 1, 1}, albedo[3]))
	out.set(2, scale4(b, [3]float32{1, 1, 1}, albedo[3]))
	return out
}

func partMask(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	t := tex.Sample(u.Int("tex"), v[0], v[1])
	if t[3] <= u.Float("threshold") {
		out.Discard = true
		return out
	}
	out.set(0, [4]float32{1, 1, 1, 1})
	return out
}

func maskVertex(in *VertexIn, u *Uniforms) ([4]float32, Varyings) {
	off := u.Vec2("offset")
	pos := u.Transform("mvp", [4]float32{
		in[gpu.AttribMaskVertexX][0] - off[0] + in[gpu.AttribMaskDeformX][0],
		in[gpu.AttribMaskVertexY][0] - off[1] + in[gpu.AttribMaskDeformY][0],
		0, 1,
	})
	return pos, Varyings{}
}

func maskFragment(Varyings, *Uniforms, Textures) FragmentOut {
	var out FragmentOut
	out.set(0, [4]float32{0, 0, 0, 1})
	return out
}

func quadVertex(in *VertexIn, _ *Uniforms) ([4]float32, Varyings) {
	p, uv := in[gpu.AttribQuadPosition], in[gpu.AttribQuadUV]
	return [4]float32{p[0], p[1], 0, 1}, Varyings{uv[0], uv[1]}
}

func transformedQuadVertex(in *VertexIn, u *Uniforms) ([4]float32, Varyings) {
	p, uv := in[gpu.AttribQuadPosition], in[gpu.AttribQuadUV]
	return u.Transform("mvp", [4]float32{p[0], p[1], 0, 1}), Varyings{uv[0], uv[1]}
}

func postDefault(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	a := tex.Sample(u.Int("albedo"), v[0], v[1])
	e := tex.Sample(u.Int("emissive"), v[0], v[1])
	out.set(0, [4]float32{a[0] + e[0], a[1] + e[1], a[2] + e[2], a[3]})
	return out
}

func debugVertex(in *VertexIn, u *Uniforms) ([4]float32, Varyings) {
	p := in[gpu.AttribQuadPosition]
	return u.Transform("mvp", [4]float32{p[0], p[1], 0, 1}), Varyings{}
}

func debugFragment(_ Varyings, u *Uniforms, _ Textures) FragmentOut {
	var out FragmentOut
	out.set(0, u.Vec4("inColor"))
	return out
}

func present(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	c := tex.Sample(u.Int("srcTex"), v[0], v[1])
	if u.Int("useColorKey") == 0 {
		out.set(0, c)
		return out
	}
	if c[3] <= 0.001 {
		out.set(0, [4]float32{1, 0, 1, 1})
		return out
	}
	a := max(c[3], 0.0001)
	out.set(0, [4]float32{clamp01(c[0] / a), clamp01(c[1] / a), clamp01(c[2] / a), 1})
	return out
}

func thumb(v Varyings, u *Uniforms, tex Textures) FragmentOut {
	var out FragmentOut
	out.set(0, tex.Sample(u.Int("albedo"), v[0], v[1]))
	return out
}

func builtinKernels() map[string]*Kernel {
	return map[string]*Kernel{
		gpu.ProgramPartStage1: {Uniforms: partUniforms, Vertex: partVertex, Fragment: partStage1},
		gpu.ProgramPartStage2: {Uniforms: partUniforms, Vertex: partVertex, Fragment: partStage2},
		gpu.ProgramPartStage3: {Uniforms: partUniforms, Vertex: partVertex, Fragment: partStage3},
		gpu.ProgramPartMask: {
			Uniforms: []string{"mvp", "offset", "tex", "threshold"},
			Vertex:   partVertex,
			Fragment: partMask,
		},
		gpu.ProgramMask: {Uniforms: []string{"mvp", "offset"}, Vertex: maskVertex, Fragment: maskFragment},
		gpu.ProgramPost: {
			Uniforms: []string{"albedo", "emissive", "bumpmap"},
			Vertex:   quadVertex,
			Fragment: postDefault,
		},
		gpu.ProgramDebug:   {Uniforms: []string{"mvp", "inColor"}, Vertex: debugVertex, Fragment: debugFragment},
		gpu.ProgramPresent: {Uniforms: []string{"srcTex", "useColorKey"}, Vertex: quadVertex, Fragment: present},
		gpu.ProgramThumb:   {Uniforms: []string{"mvp", "albedo"}, Vertex: transformedQuadVertex, Fragment: thumb},
	}
}

// QuadVertex is the vertex stage of full screen programs: position at location 0, uv at location 1.
func QuadVertex(in *VertexIn, u *Uniforms) ([4]float32, Varyings) {
	return quadVertex(in, u)
}
