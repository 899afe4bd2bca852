package gpu

// Names of the built-in programs. Every device must be able to build these.
const (
	ProgramPartStage1 = "part.stage1"
	ProgramPartStage2 = "part.stage2"
	ProgramPartStage3 = "part.stage3"
	ProgramPartMask   = "part.mask"
	ProgramMask       = "mask"
	ProgramPost       = "post.default"
	ProgramDebug      = "debug"
	ProgramPresent    = "present"
	ProgramThumb      = "debug.thumb"
)

// Attribute locations of the part programs. Each attribute is a single float lane of a SoA atlas.
const (
	AttribVertexX = 0
	AttribVertexY = 1
	AttribUVX     = 2
	AttribUVY     = 3
	AttribDeformX = 4
	AttribDeformY = 5
)

// Attribute locations of the mask program.
const (
	AttribMaskVertexX = 0
	AttribMaskVertexY = 1
	AttribMaskDeformX = 2
	AttribMaskDeformY = 3
)

// Attribute locations of the full screen and debug programs.
const (
	AttribQuadPosition = 0
	AttribQuadUV       = 1
)

// MaxVertexAttribs is the number of attribute slots a vertex array exposes.
const MaxVertexAttribs = 8
