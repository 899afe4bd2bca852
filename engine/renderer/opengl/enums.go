package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

// Extension tokens the 4.1 core bindings do not export.
const (
	glMultiplyKHR   = 0x9294
	glScreenKHR     = 0x9295
	glOverlayKHR    = 0x9296
	glDarkenKHR     = 0x9297
	glLightenKHR    = 0x9298
	glColorDodgeKHR = 0x9299
	glColorBurnKHR  = 0x929A
	glHardLightKHR  = 0x929B
	glSoftLightKHR  = 0x929C
	glDifferenceKHR = 0x929E
	glExclusionKHR  = 0x92A0

	glBlendAdvancedCoherentKHR = 0x9285

	glTextureMaxAnisotropy    = 0x84FE
	glMaxTextureMaxAnisotropy = 0x84FF

	glTextureBorderColor = 0x1004
)

const (
	extAdvancedBlend         = "GL_KHR_blend_equation_advanced"
	extAdvancedBlendCoherent = "GL_KHR_blend_equation_advanced_coherent"
	extAnisotropyEXT         = "GL_EXT_texture_filter_anisotropic"
	extAnisotropyARB         = "GL_ARB_texture_filter_anisotropic"
)

// pixelFormat is the internal format, transfer format and transfer type of a gpu.Format.
type pixelFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func glPixelFormat(f gpu.Format) pixelFormat {
	switch f {
	case gpu.FormatR8:
		return pixelFormat{gl.R8, gl.RED, gl.UNSIGNED_BYTE}
	case gpu.FormatRG8:
		return pixelFormat{gl.RG8, gl.RG, gl.UNSIGNED_BYTE}
	case gpu.FormatRGB8:
		return pixelFormat{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE}
	case gpu.FormatDepth24Stencil8:
		return pixelFormat{gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8}
	}
	return pixelFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}
}

func glFramebufferTarget(t gpu.FramebufferTarget) uint32 {
	switch t {
	case gpu.FramebufferRead:
		return gl.READ_FRAMEBUFFER
	case gpu.FramebufferDraw:
		return gl.DRAW_FRAMEBUFFER
	}
	return gl.FRAMEBUFFER
}

func glAttachment(a gpu.Attachment) uint32 {
	switch {
	case a.IsColor():
		return gl.COLOR_ATTACHMENT0 + uint32(a-gpu.ColorAttachment0)
	case a == gpu.DepthStencilAttachment:
		return gl.DEPTH_STENCIL_ATTACHMENT
	case a == gpu.StencilAttachment:
		return gl.STENCIL_ATTACHMENT
	}
	return gl.NONE
}

func framebufferStatus(status uint32) gpu.FramebufferStatus {
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return gpu.FramebufferComplete
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return gpu.FramebufferIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return gpu.FramebufferIncompleteMissingAttachment
	}
	return gpu.FramebufferUnsupported
}

func glCapability(c gpu.Capability) uint32 {
	switch c {
	case gpu.DepthTest:
		return gl.DEPTH_TEST
	case gpu.CullFace:
		return gl.CULL_FACE
	case gpu.StencilTest:
		return gl.STENCIL_TEST
	case gpu.ScissorTest:
		return gl.SCISSOR_TEST
	}
	return gl.BLEND
}

func glClearMask(m gpu.ClearMask) uint32 {
	var out uint32
	if m&gpu.ColorBufferBit != 0 {
		out |= gl.COLOR_BUFFER_BIT
	}
	if m&gpu.DepthBufferBit != 0 {
		out |= gl.DEPTH_BUFFER_BIT
	}
	if m&gpu.StencilBufferBit != 0 {
		out |= gl.STENCIL_BUFFER_BIT
	}
	return out
}

var compareFuncs = [...]uint32{
	gpu.Never:        gl.NEVER,
	gpu.Less:         gl.LESS,
	gpu.Equal:        gl.EQUAL,
	gpu.LessEqual:    gl.LEQUAL,
	gpu.Greater:      gl.GREATER,
	gpu.NotEqual:     gl.NOTEQUAL,
	gpu.GreaterEqual: gl.GEQUAL,
	gpu.Always:       gl.ALWAYS,
}

var stencilOps = [...]uint32{
	gpu.Keep:    gl.KEEP,
	gpu.Zero:    gl.ZERO,
	gpu.Replace: gl.REPLACE,
	gpu.Incr:    gl.INCR,
	gpu.Decr:    gl.DECR,
	gpu.Invert:  gl.INVERT,
}

var blendEquations = [...]uint32{
	gpu.FuncAdd:             gl.FUNC_ADD,
	gpu.FuncSubtract:        gl.FUNC_SUBTRACT,
	gpu.FuncReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
	gpu.Min:                 gl.MIN,
	gpu.Max:                 gl.MAX,
	gpu.MultiplyKHR:         glMultiplyKHR,
	gpu.ScreenKHR:           glScreenKHR,
	gpu.OverlayKHR:          glOverlayKHR,
	gpu.DarkenKHR:           glDarkenKHR,
	gpu.LightenKHR:          glLightenKHR,
	gpu.ColorDodgeKHR:       glColorDodgeKHR,
	gpu.ColorBurnKHR:        glColorBurnKHR,
	gpu.HardLightKHR:        glHardLightKHR,
	gpu.SoftLightKHR:        glSoftLightKHR,
	gpu.DifferenceKHR:       glDifferenceKHR,
	gpu.ExclusionKHR:        glExclusionKHR,
}

var blendFactors = [...]uint32{
	gpu.FactorZero:             gl.ZERO,
	gpu.FactorOne:              gl.ONE,
	gpu.FactorSrcColor:         gl.SRC_COLOR,
	gpu.FactorOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	gpu.FactorDstColor:         gl.DST_COLOR,
	gpu.FactorOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	gpu.FactorSrcAlpha:         gl.SRC_ALPHA,
	gpu.FactorOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	gpu.FactorDstAlpha:         gl.DST_ALPHA,
	gpu.FactorOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
}

var filters = [...]int32{
	gpu.Nearest:              gl.NEAREST,
	gpu.Linear:               gl.LINEAR,
	gpu.NearestMipmapNearest: gl.NEAREST_MIPMAP_NEAREST,
	gpu.LinearMipmapLinear:   gl.LINEAR_MIPMAP_LINEAR,
}

var wraps = [...]int32{
	gpu.ClampToEdge:    gl.CLAMP_TO_EDGE,
	gpu.Repeat:         gl.REPEAT,
	gpu.MirroredRepeat: gl.MIRRORED_REPEAT,
	gpu.ClampToBorder:  gl.CLAMP_TO_BORDER,
}

var primitives = [...]uint32{
	gpu.Triangles: gl.TRIANGLES,
	gpu.Lines:     gl.LINES,
	gpu.Points:    gl.POINTS,
}

// lookup indexes a translation table, falling back to its first entry for values it does not cover.
func lookup[T any, K ~uint8](table []T, k K) T {
	if int(k) < len(table) {
		return table[k]
	}
	return table[0]
}
