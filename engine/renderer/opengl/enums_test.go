package opengl

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
)

func TestBlendEquationTableCoversAdvancedModes(t *testing.T) {
	for eq := gpu.FuncAdd; eq <= gpu.ExclusionKHR; eq++ {
		v := lookup(blendEquations[:], eq)
		assert.NotZero(t, v, "equation %d", eq)
		if eq.Advanced() {
			assert.GreaterOrEqual(t, v, uint32(glMultiplyKHR))
			assert.LessOrEqual(t, v, uint32(glExclusionKHR))
		}
	}
}

func TestLookupFallsBackToFirstEntry(t *testing.T) {
	assert.Equal(t, uint32(gl.TRIANGLES), lookup(primitives[:], gpu.Primitive(200)))
	assert.Equal(t, uint32(gl.NEVER), lookup(compareFuncs[:], gpu.CompareFunc(99)))
	assert.Equal(t, uint32(gl.ALWAYS), lookup(compareFuncs[:], gpu.Always))
}

func TestAttachments(t *testing.T) {
	for i := 0; i < gpu.MaxColorAttachments; i++ {
		assert.Equal(t, uint32(gl.COLOR_ATTACHMENT0+i), glAttachment(gpu.ColorAttachment(i)))
	}
	assert.Equal(t, uint32(gl.DEPTH_STENCIL_ATTACHMENT), glAttachment(gpu.DepthStencilAttachment))
	assert.Equal(t, uint32(gl.STENCIL_ATTACHMENT), glAttachment(gpu.StencilAttachment))
	assert.Equal(t, uint32(gl.NONE), glAttachment(gpu.AttachmentNone))
}

func TestDrawBufferList(t *testing.T) {
	assert.Equal(t, []uint32{gl.BACK_LEFT}, drawBufferList(true, []gpu.Attachment{gpu.ColorAttachment0}))
	assert.Equal(t, []uint32{gl.NONE, gl.NONE}, drawBufferList(true, []gpu.Attachment{gpu.AttachmentNone, gpu.ColorAttachment1}))
	assert.Equal(t, []uint32{gl.NONE, gl.COLOR_ATTACHMENT1, gl.COLOR_ATTACHMENT2},
		drawBufferList(false, []gpu.Attachment{gpu.AttachmentNone, gpu.ColorAttachment1, gpu.ColorAttachment2}))
	assert.Equal(t, []uint32{gl.NONE}, drawBufferList(false, nil))
}

func TestClearMask(t *testing.T) {
	assert.Equal(t, uint32(gl.COLOR_BUFFER_BIT|gl.STENCIL_BUFFER_BIT),
		glClearMask(gpu.ColorBufferBit|gpu.StencilBufferBit))
	assert.Zero(t, glClearMask(0))
}

func TestFramebufferStatus(t *testing.T) {
	assert.Equal(t, gpu.FramebufferComplete, framebufferStatus(gl.FRAMEBUFFER_COMPLETE))
	assert.Equal(t, gpu.FramebufferIncompleteMissingAttachment,
		framebufferStatus(gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT))
	assert.Equal(t, gpu.FramebufferUnsupported, framebufferStatus(gl.FRAMEBUFFER_UNSUPPORTED))
}

func TestPixelFormats(t *testing.T) {
	assert.Equal(t, pixelFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}, glPixelFormat(gpu.FormatRGBA8))
	assert.Equal(t, uint32(gl.RED), glPixelFormat(gpu.FormatR8).format)
	assert.Equal(t, uint32(gl.UNSIGNED_INT_24_8), glPixelFormat(gpu.FormatDepth24Stencil8).xtype)
}

func TestCString(t *testing.T) {
	assert.Equal(t, "mvp\x00", cString("mvp"))
	assert.Equal(t, "mvp\x00", cString("mvp\x00"))
}
