package gpu

// Object names. Zero is "none", and for framebuffers it is the default surface.
type (
	Texture         uint32
	Framebuffer     uint32
	Buffer          uint32
	VertexArray     uint32
	Program         uint32
	UniformLocation int32
)

// NoUniform is returned for names a program does not declare. Setting it is a no-op.
const NoUniform UniformLocation = -1

type Format uint8

const (
	FormatNone Format = iota
	FormatR8
	FormatRG8
	FormatRGB8
	FormatRGBA8
	FormatDepth24Stencil8
)

// FormatForChannels maps a channel count 1..4 to the matching color format.
func FormatForChannels(channels int) Format {
	switch channels {
	case 1:
		return FormatR8
	case 2:
		return FormatRG8
	case 3:
		return FormatRGB8
	default:
		return FormatRGBA8
	}
}

// Channels is the number of bytes per pixel of a CPU side transfer in this format.
func (f Format) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRG8:
		return 2
	case FormatRGB8:
		return 3
	case FormatRGBA8, FormatDepth24Stencil8:
		return 4
	}
	return 0
}

func (f Format) IsColor() bool {
	return f >= FormatR8 && f <= FormatRGBA8
}

type FramebufferTarget uint8

const (
	FramebufferBoth FramebufferTarget = iota
	FramebufferRead
	FramebufferDraw
)

type Attachment int8

const (
	AttachmentNone Attachment = -1

	ColorAttachment0 Attachment = 0
	ColorAttachment1 Attachment = 1
	ColorAttachment2 Attachment = 2
	ColorAttachment3 Attachment = 3

	DepthStencilAttachment Attachment = 16
	StencilAttachment      Attachment = 17
)

// MaxColorAttachments is the number of color slots a framebuffer exposes.
const MaxColorAttachments = 4

func ColorAttachment(i int) Attachment {
	return ColorAttachment0 + Attachment(i)
}

func (a Attachment) IsColor() bool {
	return a >= ColorAttachment0 && a < ColorAttachment0+MaxColorAttachments
}

type FramebufferStatus uint8

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferIncompleteMissingAttachment
	FramebufferUnsupported
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	}
	return "unsupported"
}

type Capability uint8

const (
	Blend Capability = iota
	DepthTest
	CullFace
	StencilTest
	ScissorTest
)

type ClearMask uint8

const (
	ColorBufferBit   ClearMask = 1 << 0
	DepthBufferBit   ClearMask = 1 << 1
	StencilBufferBit ClearMask = 1 << 2
)

type CompareFunc uint8

const (
	Never CompareFunc = iota
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

type StencilOp uint8

const (
	Keep StencilOp = iota
	Zero
	Replace
	Incr
	Decr
	Invert
)

type BlendEquation uint8

const (
	FuncAdd BlendEquation = iota
	FuncSubtract
	FuncReverseSubtract
	Min
	Max

	// advanced equations, KHR_blend_equation_advanced
	MultiplyKHR
	ScreenKHR
	OverlayKHR
	DarkenKHR
	LightenKHR
	ColorDodgeKHR
	ColorBurnKHR
	HardLightKHR
	SoftLightKHR
	DifferenceKHR
	ExclusionKHR
)

func (e BlendEquation) Advanced() bool {
	return e >= MultiplyKHR && e <= ExclusionKHR
}

type BlendFactor uint8

const (
	FactorZero BlendFactor = iota
	FactorOne
	FactorSrcColor
	FactorOneMinusSrcColor
	FactorDstColor
	FactorOneMinusDstColor
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstAlpha
	FactorOneMinusDstAlpha
)

type Filter uint8

const (
	Nearest Filter = iota
	Linear
	NearestMipmapNearest
	LinearMipmapLinear
)

type Wrap uint8

const (
	ClampToEdge Wrap = iota
	Repeat
	MirroredRepeat
	ClampToBorder
)

type Primitive uint8

const (
	Triangles Primitive = iota
	Lines
	Points
)

type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Caps describes optional features of a device.
type Caps struct {
	// AdvancedBlend reports support for the KHR advanced blend equations.
	AdvancedBlend bool
	// AdvancedBlendCoherent means no barrier is needed between overlapping advanced blends.
	AdvancedBlendCoherent bool
	// BlendBarrier reports that BlendBarrier is a real operation on this device.
	BlendBarrier  bool
	Anisotropy    bool
	MaxAnisotropy float32
	BorderClamp   bool
}

// ProgramSource names a program and carries its GLSL. Devices that do not compile GLSL
// resolve the program by Name.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}
