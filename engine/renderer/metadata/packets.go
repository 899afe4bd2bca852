package metadata

import "github.com/spaghettifunk/marionette/engine/math"

/** @brief The maximum number of textures a part or a composite surface can carry. */
const MaxPartTextures = 3

/**
 * @brief Everything needed to draw one puppet part. Geometry lives in the three
 * per-frame SoA buffers and is addressed by offset and lane stride.
 */
type DrawPacket struct {
	/** @brief Parts that are not renderable are skipped. */
	Renderable bool
	/** @brief Draw with the alpha-threshold mask shader instead of the part shaders. */
	IsMask bool
	/** @brief Split albedo and emissive/bump into two passes. */
	UseMultistageBlend bool
	/** @brief The part carries emission or bump data, which enables the second stage. */
	HasEmissionOrBumpmap bool

	/** @brief Model transform of the part, row-major. */
	ModelMatrix math.Mat4
	/** @brief View/projection of the puppet, row-major. */
	RenderMatrix math.Mat4
	/** @brief Subtracted from every vertex position before the transform. */
	Origin math.Vec2

	/** @brief Multiplicative tint, already clamped to [0,1]. */
	ClampedTint math.Vec3
	/** @brief Screen color, already clamped to [0,1]. */
	ClampedScreen    math.Vec3
	Opacity          float32
	EmissionStrength float32
	/**
	 * @brief Alpha at or below which the mask shader discards. The zero value keeps every
	 * covered texel; NewDrawPacket starts from DefaultMaskThreshold.
	 */
	MaskThreshold float32
	BlendMode     BlendMode

	VertexOffset      uint32
	VertexAtlasStride uint32
	UVOffset          uint32
	UVAtlasStride     uint32
	DeformOffset      uint32
	DeformAtlasStride uint32

	VertexCount uint32
	IndexCount  uint32
	IndexBuffer IndexBufferHandle
	/** @brief Optional index data uploaded to IndexBuffer before drawing. */
	Indices []uint16

	/** @brief Albedo, emissive and bump textures in that order. */
	Textures     [MaxPartTextures]TextureHandle
	TextureCount int
}

/** @brief The mask threshold of packets built by NewDrawPacket. */
const DefaultMaskThreshold float32 = 0.5

// NewDrawPacket returns a renderable Normal-blended packet with identity transforms, a white
// tint, full opacity and the default mask threshold. Geometry and textures are left for the caller.
func NewDrawPacket() DrawPacket {
	return DrawPacket{
		Renderable:    true,
		ModelMatrix:   math.NewMat4Identity(),
		RenderMatrix:  math.NewMat4Identity(),
		ClampedTint:   math.NewVec3One(),
		Opacity:       1,
		MaskThreshold: DefaultMaskThreshold,
		BlendMode:     BlendModeNormal,
	}
}

/** @brief Geometry-only packet used to stamp the stencil buffer. */
type MaskPacket struct {
	ModelMatrix math.Mat4
	/** @brief Complete transform. When unset, ModelMatrix is used alone. */
	MVP    math.Mat4
	Origin math.Vec2

	VertexOffset      uint32
	VertexAtlasStride uint32
	DeformOffset      uint32
	DeformAtlasStride uint32

	VertexCount uint32
	IndexCount  uint32
	IndexBuffer IndexBufferHandle
	Indices     []uint16
}

/** @brief Which variant a MaskApplyPacket carries. */
type MaskDrawableKind int

const (
	MaskDrawablePart MaskDrawableKind = 0
	MaskDrawableMask MaskDrawableKind = 1
)

/** @brief A mask source: either a full part or a geometry-only mask. */
type MaskApplyPacket struct {
	Kind MaskDrawableKind
	/** @brief Used when Kind is MaskDrawablePart. */
	Part DrawPacket
	/** @brief Used when Kind is MaskDrawableMask. */
	Mask MaskPacket
	/** @brief Dodge masks write stencil 0 (cut out) instead of 1. */
	IsDodge bool
}

/** @brief Describes the off-screen surface of a dynamic composite. */
type DynamicCompositeSpec struct {
	Textures     [MaxPartTextures]TextureHandle
	TextureCount int
	Stencil      TextureHandle
	/** @brief Informational transform hints, not applied by the pipeline. */
	Scale      math.Vec2
	RotationZ  float32
	AutoScaled bool
}
