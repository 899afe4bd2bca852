package gpu

// Device is the GL style state machine the pipeline drives. Every call acts on the
// current binding state exactly like its OpenGL namesake: attachment and draw buffer
// calls act on the bound draw framebuffer, uniform setters on the program in use,
// attribute pointers and the element buffer on the bound vertex array.
//
// Texture image and parameter calls name their texture explicitly and leave the
// sampler units untouched.
type Device interface {
	Caps() Caps
	// DrawingBufferSize is the size of the default surface in pixels.
	DrawingBufferSize() (int, int)

	CreateTexture() (Texture, error)
	DeleteTexture(tex Texture)
	// TexImage2D (re)allocates tex as width×height of format, uploading data when it is non-nil.
	// data holds format.Channels() bytes per pixel, bottom row first.
	TexImage2D(tex Texture, format Format, width, height int, data []byte)
	TexFilter(tex Texture, min, mag Filter)
	TexWrap(tex Texture, s, t Wrap)
	TexBorderColor(tex Texture, color [4]float32)
	TexAnisotropy(tex Texture, value float32)
	GenerateMipmap(tex Texture)
	// CopyTexImage2D copies a region of the read framebuffer's first color attachment into tex.
	CopyTexImage2D(tex Texture, format Format, x, y, width, height int)
	BindTexture(unit int, tex Texture)
	TextureBinding(unit int) Texture

	CreateFramebuffer() (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target FramebufferTarget, fb Framebuffer)
	FramebufferBinding(target FramebufferTarget) Framebuffer
	FramebufferTexture2D(target FramebufferTarget, att Attachment, tex Texture)
	FramebufferAttachment(target FramebufferTarget, att Attachment) Texture
	CheckFramebufferStatus(target FramebufferTarget) FramebufferStatus
	DrawBuffers(bufs []Attachment)
	// BlitFramebuffer copies color from the read framebuffer's first attachment into every draw buffer.
	BlitFramebuffer(src, dst [4]int, linear bool)
	// ReadPixels reads from the read framebuffer. FormatDepth24Stencil8 reads the depth-stencil
	// attachment as packed little-endian uint32 (depth<<8 | stencil).
	ReadPixels(x, y, width, height int, format Format, dst []byte)

	Viewport(x, y, width, height int)
	ViewportRect() [4]int
	Scissor(x, y, width, height int)
	Enable(c Capability)
	Disable(c Capability)
	IsEnabled(c Capability) bool
	EnableIndexed(c Capability, index int)
	DisableIndexed(c Capability, index int)

	ClearColor(r, g, b, a float32)
	ClearStencil(s int)
	Clear(mask ClearMask)
	// ClearBufferColor clears one draw buffer of the bound draw framebuffer.
	ClearBufferColor(drawBuffer int, color [4]float32)
	ColorMask(r, g, b, a bool)
	StencilFunc(fn CompareFunc, ref int, mask uint32)
	StencilOp(sfail, dpfail, dppass StencilOp)
	StencilMask(mask uint32)

	BlendEquation(eq BlendEquation)
	BlendEquationSeparate(rgb, alpha BlendEquation)
	BlendFunc(src, dst BlendFactor)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	BlendBarrier()

	LineWidth(width float32)
	PointSize(size float32)

	CreateProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	CurrentProgram() Program
	UniformLocation(p Program, name string) UniformLocation
	Uniform1i(loc UniformLocation, v int)
	Uniform1f(loc UniformLocation, v float32)
	Uniform2f(loc UniformLocation, x, y float32)
	Uniform3f(loc UniformLocation, x, y, z float32)
	Uniform4f(loc UniformLocation, x, y, z, w float32)
	// UniformMatrix4fv uploads m column-major, without transposition.
	UniformMatrix4fv(loc UniformLocation, m [16]float32)

	CreateBuffer() (Buffer, error)
	DeleteBuffer(b Buffer)
	BufferData(target BufferTarget, b Buffer, data []byte)

	CreateVertexArray() (VertexArray, error)
	DeleteVertexArray(vao VertexArray)
	BindVertexArray(vao VertexArray)
	VertexArrayBinding() VertexArray
	// VertexAttribPointer enables attribute index and sources size float32 components from b.
	VertexAttribPointer(index int, b Buffer, size, stride, offset int)
	DisableVertexAttrib(index int)
	BindElementBuffer(b Buffer)

	// DrawElements draws count uint16 indices of the bound element buffer starting at byte offset.
	DrawElements(mode Primitive, count, offset int)
	DrawArrays(mode Primitive, first, count int)
	Flush()
}
