package software

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

type blendState struct {
	eqRGB, eqAlpha     gpu.BlendEquation
	srcRGB, dstRGB     gpu.BlendFactor
	srcAlpha, dstAlpha gpu.BlendFactor
}

func defaultBlendState() blendState {
	return blendState{
		eqRGB: gpu.FuncAdd, eqAlpha: gpu.FuncAdd,
		srcRGB: gpu.FactorOne, dstRGB: gpu.FactorZero,
		srcAlpha: gpu.FactorOne, dstAlpha: gpu.FactorZero,
	}
}

// blend combines a fragment with the stored color. Colors are premultiplied.
func (b blendState) blend(src, dst [4]float32) [4]float32 {
	if b.eqRGB.Advanced() {
		return advancedBlend(b.eqRGB, src, dst)
	}
	var out [4]float32
	for i := 0; i < 3; i++ {
		out[i] = combine(b.eqRGB, src[i]*factor(b.srcRGB, i, src, dst), dst[i]*factor(b.dstRGB, i, src, dst), src[i], dst[i])
	}
	out[3] = combine(b.eqAlpha, src[3]*factor(b.srcAlpha, 3, src, dst), dst[3]*factor(b.dstAlpha, 3, src, dst), src[3], dst[3])
	return out
}

func combine(eq gpu.BlendEquation, s, d, rawS, rawD float32) float32 {
	switch eq {
	case gpu.FuncSubtract:
		return s - d
	case gpu.FuncReverseSubtract:
		return d - s
	case gpu.Min:
		return math32.Min(rawS, rawD)
	case gpu.Max:
		return math32.Max(rawS, rawD)
	}
	return s + d
}

func factor(f gpu.BlendFactor, ch int, src, dst [4]float32) float32 {
	switch f {
	case gpu.FactorZero:
		return 0
	case gpu.FactorOne:
		return 1
	case gpu.FactorSrcColor:
		return src[ch]
	case gpu.FactorOneMinusSrcColor:
		return 1 - src[ch]
	case gpu.FactorDstColor:
		return dst[ch]
	case gpu.FactorOneMinusDstColor:
		return 1 - dst[ch]
	case gpu.FactorSrcAlpha:
		return src[3]
	case gpu.FactorOneMinusSrcAlpha:
		return 1 - src[3]
	case gpu.FactorDstAlpha:
		return dst[3]
	case gpu.FactorOneMinusDstAlpha:
		return 1 - dst[3]
	}
	return 0
}

// advancedBlend evaluates the KHR advanced equations:
// rgb = f(Cs,Cd)·As·Ad + Cs·As·(1-Ad) + Cd·Ad·(1-As), a = As + Ad·(1-As),
// with Cs and Cd unpremultiplied.
func advancedBlend(eq gpu.BlendEquation, src, dst [4]float32) [4]float32 {
	sa, da := clamp01(src[3]), clamp01(dst[3])
	var out [4]float32
	out[3] = sa + da*(1-sa)
	for i := 0; i < 3; i++ {
		var cs, cd float32
		if sa > 0 {
			cs = clamp01(src[i] / sa)
		}
		if da > 0 {
			cd = clamp01(dst[i] / da)
		}
		out[i] = separable(eq, cs, cd)*sa*da + cs*sa*(1-da) + cd*da*(1-sa)
	}
	return out
}

func separable(eq gpu.BlendEquation, s, d float32) float32 {
	switch eq {
	case gpu.MultiplyKHR:
		return s * d
	case gpu.ScreenKHR:
		return s + d - s*d
	case gpu.OverlayKHR:
		return hardLight(d, s)
	case gpu.DarkenKHR:
		return math32.Min(s, d)
	case gpu.LightenKHR:
		return math32.Max(s, d)
	case gpu.ColorDodgeKHR:
		if d <= 0 {
			return 0
		}
		if s >= 1 {
			return 1
		}
		return math32.Min(1, d/(1-s))
	case gpu.ColorBurnKHR:
		if d >= 1 {
			return 1
		}
		if s <= 0 {
			return 0
		}
		return 1 - math32.Min(1, (1-d)/s)
	case gpu.HardLightKHR:
		return hardLight(s, d)
	case gpu.SoftLightKHR:
		if s <= 0.5 {
			return d - (1-2*s)*d*(1-d)
		}
		if d <= 0.25 {
			return d + (2*s-1)*d*((16*d-12)*d+3)
		}
		return d + (2*s-1)*(math32.Sqrt(d)-d)
	case gpu.DifferenceKHR:
		return math32.Abs(d - s)
	case gpu.ExclusionKHR:
		return s + d - 2*s*d
	}
	return s
}

func hardLight(s, d float32) float32 {
	if s <= 0.5 {
		return 2 * s * d
	}
	return 1 - 2*(1-s)*(1-d)
}
