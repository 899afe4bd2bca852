package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

func (d *Device) CreateFramebuffer() (gpu.Framebuffer, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	if fb == 0 {
		return 0, errNoName("framebuffer")
	}
	return gpu.Framebuffer(fb), nil
}

func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	if fb == 0 {
		return
	}
	name := uint32(fb)
	gl.DeleteFramebuffers(1, &name)
	// GL reverts deleted bindings to the default framebuffer
	if d.readFB == fb {
		d.readFB = 0
	}
	if d.drawFB == fb {
		d.drawFB = 0
	}
}

func (d *Device) BindFramebuffer(target gpu.FramebufferTarget, fb gpu.Framebuffer) {
	switch target {
	case gpu.FramebufferRead:
		d.readFB = fb
	case gpu.FramebufferDraw:
		d.drawFB = fb
	default:
		d.readFB, d.drawFB = fb, fb
	}
	gl.BindFramebuffer(glFramebufferTarget(target), uint32(fb))
}

func (d *Device) FramebufferBinding(target gpu.FramebufferTarget) gpu.Framebuffer {
	if target == gpu.FramebufferRead {
		return d.readFB
	}
	return d.drawFB
}

func (d *Device) FramebufferTexture2D(target gpu.FramebufferTarget, att gpu.Attachment, tex gpu.Texture) {
	if att == gpu.AttachmentNone {
		return
	}
	gl.FramebufferTexture2D(glFramebufferTarget(target), glAttachment(att), gl.TEXTURE_2D, uint32(tex), 0)
}

func (d *Device) FramebufferAttachment(target gpu.FramebufferTarget, att gpu.Attachment) gpu.Texture {
	if d.FramebufferBinding(target) == 0 || att == gpu.AttachmentNone {
		return 0
	}
	var kind, name int32
	t := glFramebufferTarget(target)
	gl.GetFramebufferAttachmentParameteriv(t, glAttachment(att), gl.FRAMEBUFFER_ATTACHMENT_OBJECT_TYPE, &kind)
	if kind != gl.TEXTURE {
		return 0
	}
	gl.GetFramebufferAttachmentParameteriv(t, glAttachment(att), gl.FRAMEBUFFER_ATTACHMENT_OBJECT_NAME, &name)
	return gpu.Texture(name)
}

func (d *Device) CheckFramebufferStatus(target gpu.FramebufferTarget) gpu.FramebufferStatus {
	return framebufferStatus(gl.CheckFramebufferStatus(glFramebufferTarget(target)))
}

func (d *Device) DrawBuffers(bufs []gpu.Attachment) {
	out := drawBufferList(d.drawFB == 0, bufs)
	gl.DrawBuffers(int32(len(out)), &out[0])
}

// drawBufferList translates bufs for glDrawBuffers. The default surface of a core profile
// context only accepts BACK_LEFT and NONE. The result is never empty.
func drawBufferList(defaultSurface bool, bufs []gpu.Attachment) []uint32 {
	out := make([]uint32, len(bufs), max(len(bufs), 1))
	for i, b := range bufs {
		switch {
		case defaultSurface && b == gpu.ColorAttachment0:
			out[i] = gl.BACK_LEFT
		case !defaultSurface && b.IsColor():
			out[i] = glAttachment(b)
		default:
			out[i] = gl.NONE
		}
	}
	if len(out) == 0 {
		out = append(out, gl.NONE)
	}
	return out
}

func (d *Device) BlitFramebuffer(src, dst [4]int, linear bool) {
	filter := uint32(gl.NEAREST)
	if linear {
		filter = gl.LINEAR
	}
	gl.ReadBuffer(d.colorReadBuffer())
	gl.BlitFramebuffer(int32(src[0]), int32(src[1]), int32(src[2]), int32(src[3]),
		int32(dst[0]), int32(dst[1]), int32(dst[2]), int32(dst[3]), gl.COLOR_BUFFER_BIT, filter)
}

func (d *Device) colorReadBuffer() uint32 {
	if d.readFB == 0 {
		return gl.BACK
	}
	return gl.COLOR_ATTACHMENT0
}

func (d *Device) ReadPixels(x, y, width, height int, format gpu.Format, dst []byte) {
	if len(dst) < width*height*format.Channels() || len(dst) == 0 {
		return
	}
	if format.IsColor() {
		gl.ReadBuffer(d.colorReadBuffer())
	}
	pf := glPixelFormat(format)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), pf.format, pf.xtype, gl.Ptr(dst))
}
