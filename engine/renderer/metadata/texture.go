package metadata

/** @brief Opaque handle of a texture owned by the pipeline's resource table. Zero is never allocated. */
type TextureHandle uint32

/** @brief Identifier of an index buffer supplied by the scene evaluator. */
type IndexBufferHandle uint32

/** @brief Opaque handle of a user shader program. */
type ShaderHandle uint32

/** @brief Represents supported texture filtering modes. */
type Filtering int

const (
	/** @brief Linear (i.e. bilinear) filtering, trilinear when mipmaps exist. */
	FilteringLinear Filtering = 0
	/** @brief Nearest-neighbor filtering. */
	FilteringPoint Filtering = 1
)

/** @brief Represents supported texture wrapping modes. */
type Wrapping int

const (
	/** @brief Clamp to a transparent border when the device supports it, otherwise to the edge. */
	WrappingClamp Wrapping = 0
	WrappingRepeat Wrapping = 1
	WrappingMirror Wrapping = 2
)
