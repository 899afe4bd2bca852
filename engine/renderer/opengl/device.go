// Package opengl implements gpu.Device over an OpenGL 4.1 core context. The context must be
// current on the calling goroutine for every call, including New.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

type Device struct {
	caps gpu.Caps

	surfaceWidth  int
	surfaceHeight int

	// GL queries stall the pipeline, so the bindings the pipeline reads back are mirrored here.
	readFB, drawFB gpu.Framebuffer
	program        gpu.Program
	vao            gpu.VertexArray
	viewport       [4]int
	enabled        map[gpu.Capability]bool

	// scratchUnit is the texture unit used to edit textures without touching the sampler units
	// the pipeline binds.
	scratchUnit uint32
	units       []gpu.Texture
}

// New loads the GL entry points and probes the context's optional features. width and height
// are the size of the default framebuffer in pixels.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: gl init: %v", core.ErrDeviceLost, err)
	}
	core.LogInfo("OpenGL %s, GLSL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	var units int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)
	units = max(units, 2)

	d := &Device{
		enabled:     make(map[gpu.Capability]bool),
		scratchUnit: uint32(units - 1),
		units:       make([]gpu.Texture, units),
	}
	d.probeCaps()
	d.Resize(width, height)
	d.viewport = [4]int{0, 0, d.surfaceWidth, d.surfaceHeight}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	if d.caps.AdvancedBlendCoherent {
		gl.Enable(glBlendAdvancedCoherentKHR)
	}
	return d, nil
}

func (d *Device) probeCaps() {
	exts := make(map[string]bool)
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		exts[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))] = true
	}

	// the 4.1 bindings do not expose glBlendBarrierKHR, so only the coherent variant is usable
	if exts[extAdvancedBlend] && exts[extAdvancedBlendCoherent] {
		d.caps.AdvancedBlend = true
		d.caps.AdvancedBlendCoherent = true
	}
	if exts[extAnisotropyEXT] || exts[extAnisotropyARB] {
		var maxAniso float32
		gl.GetFloatv(glMaxTextureMaxAnisotropy, &maxAniso)
		d.caps.Anisotropy = maxAniso >= 1
		d.caps.MaxAnisotropy = maxAniso
	}
	d.caps.BorderClamp = true

	var names []string
	for _, e := range []string{extAdvancedBlend, extAdvancedBlendCoherent, extAnisotropyEXT, extAnisotropyARB} {
		if exts[e] {
			names = append(names, e)
		}
	}
	core.LogDebug("GL extensions in use: %s", strings.Join(names, ", "))
}

func (d *Device) Caps() gpu.Caps {
	return d.caps
}

// Resize records the default framebuffer size, typically from the window's
// framebuffer size callback.
func (d *Device) Resize(width, height int) {
	d.surfaceWidth, d.surfaceHeight = max(width, 1), max(height, 1)
}

func (d *Device) DrawingBufferSize() (int, int) {
	return d.surfaceWidth, d.surfaceHeight
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) ViewportRect() [4]int {
	return d.viewport
}

func (d *Device) Scissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Enable(c gpu.Capability) {
	d.enabled[c] = true
	gl.Enable(glCapability(c))
}

func (d *Device) Disable(c gpu.Capability) {
	d.enabled[c] = false
	gl.Disable(glCapability(c))
}

func (d *Device) IsEnabled(c gpu.Capability) bool {
	return d.enabled[c]
}

func (d *Device) EnableIndexed(c gpu.Capability, index int) {
	gl.Enablei(glCapability(c), uint32(index))
}

func (d *Device) DisableIndexed(c gpu.Capability, index int) {
	gl.Disablei(glCapability(c), uint32(index))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) ClearStencil(s int) {
	gl.ClearStencil(int32(s))
}

func (d *Device) Clear(mask gpu.ClearMask) {
	gl.Clear(glClearMask(mask))
}

func (d *Device) ClearBufferColor(drawBuffer int, color [4]float32) {
	gl.ClearBufferfv(gl.COLOR, int32(drawBuffer), &color[0])
}

func (d *Device) ColorMask(r, g, b, a bool) {
	gl.ColorMask(r, g, b, a)
}

func (d *Device) StencilFunc(fn gpu.CompareFunc, ref int, mask uint32) {
	gl.StencilFunc(lookup(compareFuncs[:], fn), int32(ref), mask)
}

func (d *Device) StencilOp(sfail, dpfail, dppass gpu.StencilOp) {
	gl.StencilOp(lookup(stencilOps[:], sfail), lookup(stencilOps[:], dpfail), lookup(stencilOps[:], dppass))
}

func (d *Device) StencilMask(mask uint32) {
	gl.StencilMask(mask)
}

func (d *Device) BlendEquation(eq gpu.BlendEquation) {
	if eq.Advanced() && !d.caps.AdvancedBlend {
		eq = gpu.FuncAdd
	}
	gl.BlendEquation(lookup(blendEquations[:], eq))
}

func (d *Device) BlendEquationSeparate(rgb, alpha gpu.BlendEquation) {
	gl.BlendEquationSeparate(lookup(blendEquations[:], rgb), lookup(blendEquations[:], alpha))
}

func (d *Device) BlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(lookup(blendFactors[:], src), lookup(blendFactors[:], dst))
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	gl.BlendFuncSeparate(lookup(blendFactors[:], srcRGB), lookup(blendFactors[:], dstRGB),
		lookup(blendFactors[:], srcAlpha), lookup(blendFactors[:], dstAlpha))
}

// BlendBarrier is a no-op: advanced blending is only enabled on coherent contexts.
func (d *Device) BlendBarrier() {}

func (d *Device) LineWidth(width float32) {
	gl.LineWidth(width)
}

func (d *Device) PointSize(size float32) {
	gl.PointSize(size)
}

func (d *Device) DrawElements(mode gpu.Primitive, count, offset int) {
	gl.DrawElementsWithOffset(lookup(primitives[:], mode), int32(count), gl.UNSIGNED_SHORT, uintptr(offset))
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int) {
	gl.DrawArrays(lookup(primitives[:], mode), int32(first), int32(count))
}

func (d *Device) Flush() {
	gl.Flush()
}
