package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix stored row-major: element (row, col) lives at Data[row*4+col],
 * so a translation occupies Data[3], Data[7] and Data[11].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the 2D transform of a puppet part. Transforms can have a parent
 * whose own transform is then taken into account.
 */
type Transform struct {
	/** @brief The position in the puppet space. */
	Position Vec2
	/** @brief The rotation around Z, in radians. */
	Rotation float32
	/** @brief The scale. */
	Scale Vec2
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
