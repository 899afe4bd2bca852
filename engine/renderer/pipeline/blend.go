package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// blendState is the fixed-function state a legacy blend mode resolves to.
type blendState struct {
	eqRGB, eqAlpha     gpu.BlendEquation
	srcRGB, dstRGB     gpu.BlendFactor
	srcAlpha, dstAlpha gpu.BlendFactor
}

func blendFunc(eq gpu.BlendEquation, src, dst gpu.BlendFactor) blendState {
	return blendState{eqRGB: eq, eqAlpha: eq, srcRGB: src, dstRGB: dst, srcAlpha: src, dstAlpha: dst}
}

func blendFuncSeparate(eq gpu.BlendEquation, srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) blendState {
	return blendState{eqRGB: eq, eqAlpha: eq, srcRGB: srcRGB, dstRGB: dstRGB, srcAlpha: srcAlpha, dstAlpha: dstAlpha}
}

// premultipliedOver is the state every pass starts from.
var premultipliedOver = blendFunc(gpu.FuncAdd, gpu.FactorOne, gpu.FactorOneMinusSrcAlpha)

// legacyBlend maps a blend mode to fixed-function state. Modes without a fixed-function
// approximation draw as Normal.
func legacyBlend(mode metadata.BlendMode) blendState {
	switch mode {
	case metadata.BlendModeMultiply:
		return blendFunc(gpu.FuncAdd, gpu.FactorDstColor, gpu.FactorOneMinusSrcAlpha)
	case metadata.BlendModeScreen:
		return blendFunc(gpu.FuncAdd, gpu.FactorOne, gpu.FactorOneMinusSrcColor)
	case metadata.BlendModeLighten:
		return blendFunc(gpu.Max, gpu.FactorOne, gpu.FactorOne)
	case metadata.BlendModeColorDodge:
		return blendFunc(gpu.FuncAdd, gpu.FactorDstColor, gpu.FactorOne)
	case metadata.BlendModeLinearDodge:
		return blendFuncSeparate(gpu.FuncAdd, gpu.FactorOne, gpu.FactorOneMinusSrcColor, gpu.FactorOne, gpu.FactorOneMinusSrcAlpha)
	case metadata.BlendModeAddGlow:
		return blendFuncSeparate(gpu.FuncAdd, gpu.FactorOne, gpu.FactorOne, gpu.FactorOne, gpu.FactorOneMinusSrcAlpha)
	case metadata.BlendModeSubtract:
		s := blendFunc(gpu.FuncReverseSubtract, gpu.FactorOneMinusDstColor, gpu.FactorOne)
		s.eqAlpha = gpu.FuncAdd
		return s
	case metadata.BlendModeExclusion:
		return blendFuncSeparate(gpu.FuncAdd, gpu.FactorOneMinusDstColor, gpu.FactorOneMinusSrcColor, gpu.FactorOne, gpu.FactorOne)
	case metadata.BlendModeInverse:
		return blendFunc(gpu.FuncAdd, gpu.FactorOneMinusDstColor, gpu.FactorOneMinusSrcAlpha)
	case metadata.BlendModeDestinationIn:
		return blendFunc(gpu.FuncAdd, gpu.FactorZero, gpu.FactorSrcAlpha)
	case metadata.BlendModeClipToLower:
		return blendFunc(gpu.FuncAdd, gpu.FactorDstAlpha, gpu.FactorOneMinusSrcAlpha)
	case metadata.BlendModeSliceFromLower:
		return blendFunc(gpu.FuncAdd, gpu.FactorZero, gpu.FactorOneMinusSrcAlpha)
	}
	return premultipliedOver
}

// advancedEquation returns the KHR equation of a mode, if it has one.
func advancedEquation(mode metadata.BlendMode) (gpu.BlendEquation, bool) {
	switch mode {
	case metadata.BlendModeMultiply:
		return gpu.MultiplyKHR, true
	case metadata.BlendModeScreen:
		return gpu.ScreenKHR, true
	case metadata.BlendModeOverlay:
		return gpu.OverlayKHR, true
	case metadata.BlendModeDarken:
		return gpu.DarkenKHR, true
	case metadata.BlendModeLighten:
		return gpu.LightenKHR, true
	case metadata.BlendModeColorDodge:
		return gpu.ColorDodgeKHR, true
	case metadata.BlendModeColorBurn:
		return gpu.ColorBurnKHR, true
	case metadata.BlendModeHardLight:
		return gpu.HardLightKHR, true
	case metadata.BlendModeSoftLight:
		return gpu.SoftLightKHR, true
	case metadata.BlendModeDifference:
		return gpu.DifferenceKHR, true
	case metadata.BlendModeExclusion:
		return gpu.ExclusionKHR, true
	}
	return 0, false
}

func (b *Backend) advancedBlending() bool {
	return b.caps.AdvancedBlend && !b.legacyOnly
}

// appliedBlend is the blend state last set through the backend: either fixed-function state or
// an advanced equation.
type appliedBlend struct {
	state    blendState
	advanced bool
	eq       gpu.BlendEquation
}

func (b *Backend) setBlendState(s blendState) {
	b.dev.BlendEquationSeparate(s.eqRGB, s.eqAlpha)
	b.dev.BlendFuncSeparate(s.srcRGB, s.dstRGB, s.srcAlpha, s.dstAlpha)
	b.blend = appliedBlend{state: s}
}

func (b *Backend) setAdvancedEquation(eq gpu.BlendEquation) {
	b.dev.BlendEquation(eq)
	b.blend = appliedBlend{advanced: true, eq: eq}
}

func (b *Backend) restoreBlend(a appliedBlend) {
	if a.advanced {
		b.setAdvancedEquation(a.eq)
		return
	}
	b.setBlendState(a.state)
}

// applyBlendMode sets the blend state of mode. Advanced equations are only used when the device
// supports them, the backend is not forced to legacy, and the caller allows it.
func (b *Backend) applyBlendMode(mode metadata.BlendMode, legacyOnly bool) {
	if !legacyOnly && b.advancedBlending() {
		if eq, ok := advancedEquation(mode); ok {
			b.setAdvancedEquation(eq)
			return
		}
	}
	b.setBlendState(legacyBlend(mode))
}

// blendModeBarrier orders the draw that just used an advanced equation before the next one on
// devices where advanced blending is not coherent.
func (b *Backend) blendModeBarrier(mode metadata.BlendMode) {
	if !b.advancedBlending() || b.caps.AdvancedBlendCoherent {
		return
	}
	if _, ok := advancedEquation(mode); !ok {
		return
	}
	if b.caps.BlendBarrier {
		b.dev.BlendBarrier()
		b.stats.BlendBarriers++
	}
}
