package software

import (
	"encoding/binary"
	"image"

	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"golang.org/x/image/draw"
)

type framebuffer struct {
	colors      [gpu.MaxColorAttachments]gpu.Texture
	depth       gpu.Texture
	stencil     gpu.Texture
	drawBuffers [gpu.MaxColorAttachments]gpu.Attachment
}

func newFramebuffer() *framebuffer {
	fb := &framebuffer{}
	fb.drawBuffers = [gpu.MaxColorAttachments]gpu.Attachment{gpu.ColorAttachment0, gpu.AttachmentNone, gpu.AttachmentNone, gpu.AttachmentNone}
	return fb
}

func (fb *framebuffer) detach(tex gpu.Texture) {
	for i := range fb.colors {
		if fb.colors[i] == tex {
			fb.colors[i] = 0
		}
	}
	if fb.depth == tex {
		fb.depth = 0
	}
	if fb.stencil == tex {
		fb.stencil = 0
	}
}

// drawTarget is the resolved write state of the bound draw framebuffer for one operation.
type drawTarget struct {
	outputs       [gpu.MaxColorAttachments]*texture
	stencil       *texture
	width, height int
}

func (d *Device) CreateFramebuffer() (gpu.Framebuffer, error) {
	d.nextFramebuffer++
	name := gpu.Framebuffer(d.nextFramebuffer)
	d.framebuffers[name] = newFramebuffer()
	d.stats.FramebuffersCreated++
	return name, nil
}

func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	if fb == 0 {
		return
	}
	if _, ok := d.framebuffers[fb]; !ok {
		return
	}
	delete(d.framebuffers, fb)
	d.stats.FramebuffersDeleted++
	if d.readFB == fb {
		d.readFB = 0
	}
	if d.drawFB == fb {
		d.drawFB = 0
	}
}

func (d *Device) BindFramebuffer(target gpu.FramebufferTarget, fb gpu.Framebuffer) {
	if fb != 0 {
		if _, ok := d.framebuffers[fb]; !ok {
			return
		}
	}
	switch target {
	case gpu.FramebufferRead:
		d.readFB = fb
	case gpu.FramebufferDraw:
		d.drawFB = fb
	default:
		d.readFB = fb
		d.drawFB = fb
	}
}

func (d *Device) FramebufferBinding(target gpu.FramebufferTarget) gpu.Framebuffer {
	if target == gpu.FramebufferRead {
		return d.readFB
	}
	return d.drawFB
}

func (d *Device) boundFramebuffer(target gpu.FramebufferTarget) *framebuffer {
	return d.framebuffers[d.FramebufferBinding(target)]
}

func (d *Device) FramebufferTexture2D(target gpu.FramebufferTarget, att gpu.Attachment, tex gpu.Texture) {
	fb := d.boundFramebuffer(target)
	if fb == nil {
		return
	}
	switch {
	case att.IsColor():
		fb.colors[att] = tex
	case att == gpu.DepthStencilAttachment:
		fb.depth = tex
		fb.stencil = tex
	case att == gpu.StencilAttachment:
		fb.stencil = tex
	}
}

func (d *Device) FramebufferAttachment(target gpu.FramebufferTarget, att gpu.Attachment) gpu.Texture {
	fb := d.boundFramebuffer(target)
	if fb == nil {
		return 0
	}
	var tex gpu.Texture
	switch {
	case att.IsColor():
		tex = fb.colors[att]
	case att == gpu.DepthStencilAttachment:
		tex = fb.depth
	case att == gpu.StencilAttachment:
		tex = fb.stencil
	}
	if _, ok := d.textures[tex]; !ok {
		return 0
	}
	return tex
}

func (d *Device) CheckFramebufferStatus(target gpu.FramebufferTarget) gpu.FramebufferStatus {
	fb := d.boundFramebuffer(target)
	if fb == nil {
		return gpu.FramebufferComplete
	}
	attached := 0
	for _, name := range fb.colors {
		if name == 0 {
			continue
		}
		t := d.textures[name]
		if t == nil || !t.format.IsColor() || t.width == 0 || t.height == 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		attached++
	}
	for _, name := range []gpu.Texture{fb.depth, fb.stencil} {
		if name == 0 {
			continue
		}
		t := d.textures[name]
		if t == nil || t.format != gpu.FormatDepth24Stencil8 || t.width == 0 || t.height == 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		attached++
	}
	if attached == 0 {
		return gpu.FramebufferIncompleteMissingAttachment
	}
	return gpu.FramebufferComplete
}

func (d *Device) DrawBuffers(bufs []gpu.Attachment) {
	fb := d.boundFramebuffer(gpu.FramebufferDraw)
	if fb == nil {
		return
	}
	for i := range fb.drawBuffers {
		fb.drawBuffers[i] = gpu.AttachmentNone
		if i < len(bufs) && bufs[i].IsColor() {
			fb.drawBuffers[i] = bufs[i]
		}
	}
}

// colorAttachment resolves a color slot of fb; framebuffer 0 is the default surface.
func (d *Device) colorAttachment(fb gpu.Framebuffer, att gpu.Attachment) *texture {
	if fb == 0 {
		if att == gpu.ColorAttachment0 {
			return d.surface
		}
		return nil
	}
	f := d.framebuffers[fb]
	if f == nil || !att.IsColor() {
		return nil
	}
	t := d.textures[f.colors[att]]
	if t == nil || !t.format.IsColor() {
		return nil
	}
	return t
}

func (d *Device) stencilAttachment(fb gpu.Framebuffer) *texture {
	if fb == 0 {
		return d.surfaceDS
	}
	f := d.framebuffers[fb]
	if f == nil {
		return nil
	}
	t := d.textures[f.stencil]
	if t == nil || t.format != gpu.FormatDepth24Stencil8 {
		return nil
	}
	return t
}

func (d *Device) resolveDrawTarget() drawTarget {
	var dt drawTarget
	dt.stencil = d.stencilAttachment(d.drawFB)
	if d.drawFB == 0 {
		dt.outputs[0] = d.surface
	} else if f := d.framebuffers[d.drawFB]; f != nil {
		for i, att := range f.drawBuffers {
			if att.IsColor() {
				dt.outputs[i] = d.colorAttachment(d.drawFB, att)
			}
		}
	}

	// the drawable area is the intersection of every attachment
	first := true
	consider := func(t *texture) {
		if t == nil {
			return
		}
		if first {
			dt.width, dt.height = t.width, t.height
			first = false
			return
		}
		dt.width = min(dt.width, t.width)
		dt.height = min(dt.height, t.height)
	}
	for _, t := range dt.outputs {
		consider(t)
	}
	consider(dt.stencil)
	return dt
}

// clipRect intersects the target with the scissor box when scissoring is on.
func (d *Device) clipRect(width, height int) (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = 0, 0, width, height
	if d.enabled[gpu.ScissorTest] {
		x0 = max(x0, d.scissor[0])
		y0 = max(y0, d.scissor[1])
		x1 = min(x1, d.scissor[0]+d.scissor[2])
		y1 = min(y1, d.scissor[1]+d.scissor[3])
	}
	return
}

func (d *Device) Clear(mask gpu.ClearMask) {
	dt := d.resolveDrawTarget()
	x0, y0, x1, y1 := d.clipRect(dt.width, dt.height)
	if mask&gpu.ColorBufferBit != 0 {
		for _, t := range dt.outputs {
			if t != nil {
				fillColor(t, x0, y0, x1, y1, d.clearColor, d.colorMask)
			}
		}
	}
	if dt.stencil == nil {
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if mask&gpu.StencilBufferBit != 0 {
				s := dt.stencil.stencilAt(x, y)
				w := uint8(d.stencil.writeMask)
				dt.stencil.setStencil(x, y, s&^w|uint8(d.clearStencil)&w)
			}
			if mask&gpu.DepthBufferBit != 0 {
				dt.stencil.setDepth(x, y, maxDepth)
			}
		}
	}
}

func (d *Device) ClearBufferColor(drawBuffer int, color [4]float32) {
	if drawBuffer < 0 || drawBuffer >= gpu.MaxColorAttachments {
		return
	}
	dt := d.resolveDrawTarget()
	t := dt.outputs[drawBuffer]
	if t == nil {
		return
	}
	x0, y0, x1, y1 := d.clipRect(dt.width, dt.height)
	fillColor(t, x0, y0, x1, y1, color, d.colorMask)
}

func fillColor(t *texture, x0, y0, x1, y1 int, c [4]float32, mask [4]bool) {
	x1 = min(x1, t.width)
	y1 = min(y1, t.height)
	for y := max(y0, 0); y < y1; y++ {
		for x := max(x0, 0); x < x1; x++ {
			t.store(x, y, c, mask)
		}
	}
}

// rgbaView shares the texel memory of a color texture with an image.RGBA. Rows keep the
// bottom-up order of the texture, which is irrelevant for axis aligned scaling.
func rgbaView(t *texture) *image.RGBA {
	return &image.RGBA{Pix: t.pix, Stride: t.width * 4, Rect: image.Rect(0, 0, t.width, t.height)}
}

func normRect(r [4]int) image.Rectangle {
	return image.Rect(min(r[0], r[2]), min(r[1], r[3]), max(r[0], r[2]), max(r[1], r[3]))
}

func (d *Device) BlitFramebuffer(src, dst [4]int, linear bool) {
	from := d.colorAttachment(d.readFB, gpu.ColorAttachment0)
	if from == nil {
		return
	}
	srcRect := normRect(src).Intersect(image.Rect(0, 0, from.width, from.height))
	if srcRect.Empty() {
		return
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if linear {
		scaler = draw.BiLinear
	}

	// copy the source first so a blit between overlapping attachments stays well defined
	snapshot := image.NewRGBA(srcRect)
	draw.Draw(snapshot, srcRect, rgbaView(from), srcRect.Min, draw.Src)

	dt := d.resolveDrawTarget()
	for _, to := range dt.outputs {
		if to == nil {
			continue
		}
		dstRect := normRect(dst)
		if dstRect.Empty() {
			continue
		}
		scaler.Scale(rgbaView(to), dstRect, snapshot, srcRect, draw.Src, nil)
	}
}

func (d *Device) ReadPixels(x, y, width, height int, format gpu.Format, dst []byte) {
	ch := format.Channels()
	if ch == 0 || len(dst) < width*height*ch {
		return
	}
	if format == gpu.FormatDepth24Stencil8 {
		src := d.stencilAttachment(d.readFB)
		if src == nil {
			return
		}
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				sx, sy := x+col, y+row
				if !src.inBounds(sx, sy) {
					continue
				}
				binary.LittleEndian.PutUint32(dst[(row*width+col)*4:], src.ds[sy*src.width+sx])
			}
		}
		return
	}

	src := d.colorAttachment(d.readFB, gpu.ColorAttachment0)
	if src == nil {
		return
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sx, sy := x+col, y+row
			if !src.inBounds(sx, sy) {
				continue
			}
			c := src.texel(sx, sy)
			o := (row*width + col) * ch
			for i := 0; i < ch; i++ {
				dst[o+i] = unorm8(c[i])
			}
		}
	}
}
