// Package software implements gpu.Device on the CPU. It follows OpenGL semantics closely
// enough for the pipeline to render identical frames without a GPU, and it counts the
// allocations and barriers it sees so callers can assert on them.
package software

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

const textureUnits = 16

// Stats counts device activity since creation.
type Stats struct {
	TexturesCreated     int
	TexturesDeleted     int
	FramebuffersCreated int
	FramebuffersDeleted int
	ProgramsCreated     int
	DrawCalls           int
	BlendBarriers       int
	AdvancedDraws       int
	// UnsyncedAdvancedDraws counts advanced blends issued on non-coherent hardware
	// without a barrier after the previous advanced blend.
	UnsyncedAdvancedDraws int
}

type stencilState struct {
	fn                  gpu.CompareFunc
	ref                 int
	mask                uint32
	sfail, dpfail, pass gpu.StencilOp
	writeMask           uint32
}

type attrib struct {
	enabled bool
	buffer  gpu.Buffer
	size    int
	stride  int
	offset  int
}

type vertexArray struct {
	attribs [gpu.MaxVertexAttribs]attrib
	element gpu.Buffer
}

type program struct {
	kernel    *Kernel
	locations map[string]int
	values    [][]float32
}

type Option func(*Device)

// WithAdvancedBlend advertises the KHR advanced blend equations.
func WithAdvancedBlend(coherent bool) Option {
	return func(d *Device) {
		d.caps.AdvancedBlend = true
		d.caps.AdvancedBlendCoherent = coherent
		d.caps.BlendBarrier = !coherent
	}
}

// WithKernel registers a program kernel under name, replacing any built-in of that name.
func WithKernel(name string, k *Kernel) Option {
	return func(d *Device) {
		d.kernels[name] = k
	}
}

type Device struct {
	caps gpu.Caps

	surface   *texture
	surfaceDS *texture

	kernels      map[string]*Kernel
	textures     map[gpu.Texture]*texture
	framebuffers map[gpu.Framebuffer]*framebuffer
	buffers      map[gpu.Buffer][]byte
	vertexArrays map[gpu.VertexArray]*vertexArray
	programs     map[gpu.Program]*program

	nextTexture     uint32
	nextFramebuffer uint32
	nextBuffer      uint32
	nextVertexArray uint32
	nextProgram     uint32

	readFB, drawFB gpu.Framebuffer
	units          [textureUnits]gpu.Texture
	current        gpu.Program
	vao            gpu.VertexArray

	viewport     [4]int
	scissor      [4]int
	enabled      map[gpu.Capability]bool
	blendEnabled [gpu.MaxColorAttachments]bool
	clearColor   [4]float32
	clearStencil int
	colorMask    [4]bool
	stencil      stencilState
	blend        blendState
	lineWidth    float32
	pointSize    float32

	pendingBarrier bool
	stats          Stats
}

// New creates a device whose default surface is width×height RGBA8 with a depth-stencil buffer.
func New(width, height int, opts ...Option) *Device {
	d := &Device{
		caps: gpu.Caps{
			Anisotropy:    true,
			MaxAnisotropy: 16,
			BorderClamp:   true,
		},
		kernels:      builtinKernels(),
		textures:     make(map[gpu.Texture]*texture),
		framebuffers: make(map[gpu.Framebuffer]*framebuffer),
		buffers:      make(map[gpu.Buffer][]byte),
		vertexArrays: map[gpu.VertexArray]*vertexArray{0: {}},
		programs:     make(map[gpu.Program]*program),
		enabled:      make(map[gpu.Capability]bool),
		colorMask:    [4]bool{true, true, true, true},
		stencil: stencilState{
			fn: gpu.Always, mask: 0xFFFFFFFF,
			sfail: gpu.Keep, dpfail: gpu.Keep, pass: gpu.Keep,
			writeMask: 0xFFFFFFFF,
		},
		blend:     defaultBlendState(),
		lineWidth: 1,
		pointSize: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Resize(width, height)
	core.LogDebug("software device created (%dx%d, advanced blend %v)", width, height, d.caps.AdvancedBlend)
	return d
}

// Resize reallocates the default surface. Its content is cleared.
func (d *Device) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	d.surface = newTexture()
	d.surface.alloc(gpu.FormatRGBA8, width, height)
	d.surfaceDS = newTexture()
	d.surfaceDS.alloc(gpu.FormatDepth24Stencil8, width, height)
	d.viewport = [4]int{0, 0, width, height}
	d.scissor = [4]int{0, 0, width, height}
}

func (d *Device) Caps() gpu.Caps {
	return d.caps
}

func (d *Device) DrawingBufferSize() (int, int) {
	return d.surface.width, d.surface.height
}

func (d *Device) Stats() Stats {
	return d.stats
}

// LiveFramebuffers is the number of framebuffer objects currently allocated.
func (d *Device) LiveFramebuffers() int {
	return len(d.framebuffers)
}

// LiveTextures is the number of texture objects currently allocated.
func (d *Device) LiveTextures() int {
	return len(d.textures)
}

// Snapshot copies the default surface into an image with the top row first.
func (d *Device) Snapshot() *image.RGBA {
	w, h := d.surface.width, d.surface.height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := d.surface.pix[(h-1-y)*w*4 : (h-y)*w*4]
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], src)
	}
	return img
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) ViewportRect() [4]int {
	return d.viewport
}

func (d *Device) Scissor(x, y, width, height int) {
	d.scissor = [4]int{x, y, width, height}
}

func (d *Device) Enable(c gpu.Capability) {
	d.enabled[c] = true
	if c == gpu.Blend {
		for i := range d.blendEnabled {
			d.blendEnabled[i] = true
		}
	}
}

func (d *Device) Disable(c gpu.Capability) {
	d.enabled[c] = false
	if c == gpu.Blend {
		for i := range d.blendEnabled {
			d.blendEnabled[i] = false
		}
	}
}

func (d *Device) IsEnabled(c gpu.Capability) bool {
	if c == gpu.Blend {
		return d.blendEnabled[0]
	}
	return d.enabled[c]
}

func (d *Device) EnableIndexed(c gpu.Capability, index int) {
	if c == gpu.Blend && index >= 0 && index < len(d.blendEnabled) {
		d.blendEnabled[index] = true
	}
}

func (d *Device) DisableIndexed(c gpu.Capability, index int) {
	if c == gpu.Blend && index >= 0 && index < len(d.blendEnabled) {
		d.blendEnabled[index] = false
	}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Device) ClearStencil(s int) {
	d.clearStencil = s
}

func (d *Device) ColorMask(r, g, b, a bool) {
	d.colorMask = [4]bool{r, g, b, a}
}

func (d *Device) StencilFunc(fn gpu.CompareFunc, ref int, mask uint32) {
	d.stencil.fn = fn
	d.stencil.ref = ref
	d.stencil.mask = mask
}

func (d *Device) StencilOp(sfail, dpfail, dppass gpu.StencilOp) {
	d.stencil.sfail = sfail
	d.stencil.dpfail = dpfail
	d.stencil.pass = dppass
}

func (d *Device) StencilMask(mask uint32) {
	d.stencil.writeMask = mask
}

func (d *Device) BlendEquation(eq gpu.BlendEquation) {
	d.BlendEquationSeparate(eq, eq)
}

func (d *Device) BlendEquationSeparate(rgb, alpha gpu.BlendEquation) {
	if (rgb.Advanced() || alpha.Advanced()) && !d.caps.AdvancedBlend {
		core.LogWarn("software device: advanced blend equation requested without support")
		return
	}
	d.blend.eqRGB = rgb
	d.blend.eqAlpha = alpha
}

func (d *Device) BlendFunc(src, dst gpu.BlendFactor) {
	d.BlendFuncSeparate(src, dst, src, dst)
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	d.blend.srcRGB = srcRGB
	d.blend.dstRGB = dstRGB
	d.blend.srcAlpha = srcAlpha
	d.blend.dstAlpha = dstAlpha
}

func (d *Device) BlendBarrier() {
	if !d.caps.BlendBarrier {
		return
	}
	d.stats.BlendBarriers++
	d.pendingBarrier = false
}

func (d *Device) LineWidth(width float32) {
	d.lineWidth = width
}

func (d *Device) PointSize(size float32) {
	d.pointSize = size
}

func (d *Device) CreateProgram(src gpu.ProgramSource) (gpu.Program, error) {
	k, ok := d.kernels[src.Name]
	if !ok || k == nil || k.Vertex == nil || k.Fragment == nil {
		return 0, fmt.Errorf("%w: no kernel registered for program %q", core.ErrShaderBuild, src.Name)
	}
	p := &program{
		kernel:    k,
		locations: make(map[string]int, len(k.Uniforms)),
		values:    make([][]float32, len(k.Uniforms)),
	}
	for i, name := range k.Uniforms {
		p.locations[name] = i
	}
	d.nextProgram++
	name := gpu.Program(d.nextProgram)
	d.programs[name] = p
	d.stats.ProgramsCreated++
	return name, nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) UseProgram(p gpu.Program) {
	if p != 0 {
		if _, ok := d.programs[p]; !ok {
			return
		}
	}
	d.current = p
}

func (d *Device) CurrentProgram() gpu.Program {
	return d.current
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	prog := d.programs[p]
	if prog == nil {
		return gpu.NoUniform
	}
	loc, ok := prog.locations[name]
	if !ok {
		return gpu.NoUniform
	}
	return gpu.UniformLocation(loc)
}

func (d *Device) setUniform(loc gpu.UniformLocation, v ...float32) {
	prog := d.programs[d.current]
	if prog == nil || loc < 0 || int(loc) >= len(prog.values) {
		return
	}
	prog.values[loc] = append(prog.values[loc][:0], v...)
}

func (d *Device) Uniform1i(loc gpu.UniformLocation, v int) {
	d.setUniform(loc, float32(v))
}

func (d *Device) Uniform1f(loc gpu.UniformLocation, v float32) {
	d.setUniform(loc, v)
}

func (d *Device) Uniform2f(loc gpu.UniformLocation, x, y float32) {
	d.setUniform(loc, x, y)
}

func (d *Device) Uniform3f(loc gpu.UniformLocation, x, y, z float32) {
	d.setUniform(loc, x, y, z)
}

func (d *Device) Uniform4f(loc gpu.UniformLocation, x, y, z, w float32) {
	d.setUniform(loc, x, y, z, w)
}

func (d *Device) UniformMatrix4fv(loc gpu.UniformLocation, m [16]float32) {
	d.setUniform(loc, m[:]...)
}

func (d *Device) CreateBuffer() (gpu.Buffer, error) {
	d.nextBuffer++
	name := gpu.Buffer(d.nextBuffer)
	d.buffers[name] = nil
	return name, nil
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	delete(d.buffers, b)
}

func (d *Device) BufferData(_ gpu.BufferTarget, b gpu.Buffer, data []byte) {
	if _, ok := d.buffers[b]; !ok {
		return
	}
	d.buffers[b] = append([]byte(nil), data...)
}

func (d *Device) CreateVertexArray() (gpu.VertexArray, error) {
	d.nextVertexArray++
	name := gpu.VertexArray(d.nextVertexArray)
	d.vertexArrays[name] = &vertexArray{}
	return name, nil
}

func (d *Device) DeleteVertexArray(vao gpu.VertexArray) {
	if vao == 0 {
		return
	}
	delete(d.vertexArrays, vao)
	if d.vao == vao {
		d.vao = 0
	}
}

func (d *Device) BindVertexArray(vao gpu.VertexArray) {
	if _, ok := d.vertexArrays[vao]; ok {
		d.vao = vao
	}
}

func (d *Device) VertexArrayBinding() gpu.VertexArray {
	return d.vao
}

func (d *Device) VertexAttribPointer(index int, b gpu.Buffer, size, stride, offset int) {
	if index < 0 || index >= gpu.MaxVertexAttribs {
		return
	}
	d.vertexArrays[d.vao].attribs[index] = attrib{enabled: true, buffer: b, size: size, stride: stride, offset: offset}
}

func (d *Device) DisableVertexAttrib(index int) {
	if index < 0 || index >= gpu.MaxVertexAttribs {
		return
	}
	d.vertexArrays[d.vao].attribs[index].enabled = false
}

func (d *Device) BindElementBuffer(b gpu.Buffer) {
	d.vertexArrays[d.vao].element = b
}

func (d *Device) Flush() {}
