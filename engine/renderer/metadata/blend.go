package metadata

import "fmt"

/** @brief Logical blend modes a part can be drawn with. */
type BlendMode int

const (
	BlendModeNormal BlendMode = iota
	BlendModeMultiply
	BlendModeScreen
	BlendModeOverlay
	BlendModeDarken
	BlendModeLighten
	BlendModeColorDodge
	BlendModeLinearDodge
	BlendModeAddGlow
	BlendModeColorBurn
	BlendModeHardLight
	BlendModeSoftLight
	BlendModeDifference
	BlendModeExclusion
	BlendModeSubtract
	BlendModeInverse
	BlendModeDestinationIn
	BlendModeClipToLower
	BlendModeSliceFromLower

	/** @brief The number of blend modes. Not a valid mode. */
	BlendModeCount
)

var blendModeNames = [BlendModeCount]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten", "ColorDodge",
	"LinearDodge", "AddGlow", "ColorBurn", "HardLight", "SoftLight", "Difference",
	"Exclusion", "Subtract", "Inverse", "DestinationIn", "ClipToLower", "SliceFromLower",
}

func (b BlendMode) String() string {
	if b < 0 || b >= BlendModeCount {
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
	return blendModeNames[b]
}

// AllBlendModes lists every valid mode in declaration order.
func AllBlendModes() []BlendMode {
	modes := make([]BlendMode, 0, BlendModeCount)
	for b := BlendModeNormal; b < BlendModeCount; b++ {
		modes = append(modes, b)
	}
	return modes
}
