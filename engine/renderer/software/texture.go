package software

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

const maxDepth = 0xFFFFFF

// texture stores color texels as 4 unorm bytes regardless of format; the format decides
// which channels are meaningful when the texel is read back. Depth-stencil textures keep
// one packed uint32 (depth<<8 | stencil) per texel.
type texture struct {
	format        gpu.Format
	width, height int
	pix           []uint8
	ds            []uint32

	minFilter, magFilter gpu.Filter
	wrapS, wrapT         gpu.Wrap
	border               [4]float32
	anisotropy           float32
	mipmapped            bool
}

func newTexture() *texture {
	return &texture{
		minFilter:  gpu.NearestMipmapNearest,
		magFilter:  gpu.Linear,
		wrapS:      gpu.Repeat,
		wrapT:      gpu.Repeat,
		anisotropy: 1,
	}
}

func (t *texture) alloc(format gpu.Format, width, height int) {
	t.format = format
	t.width = max(width, 0)
	t.height = max(height, 0)
	t.pix = nil
	t.ds = nil
	t.mipmapped = false
	n := t.width * t.height
	if format == gpu.FormatDepth24Stencil8 {
		t.ds = make([]uint32, n)
		return
	}
	t.pix = make([]uint8, n*4)
}

// load copies tightly packed bottom-up rows of the texture's format.
func (t *texture) load(data []byte) {
	ch := t.format.Channels()
	n := t.width * t.height
	if len(data) < n*ch {
		return
	}
	if t.format == gpu.FormatDepth24Stencil8 {
		for i := 0; i < n; i++ {
			o := i * 4
			t.ds[i] = uint32(data[o]) | uint32(data[o+1])<<8 | uint32(data[o+2])<<16 | uint32(data[o+3])<<24
		}
		return
	}
	for i := 0; i < n; i++ {
		copy(t.pix[i*4:i*4+ch], data[i*ch:i*ch+ch])
	}
}

func (t *texture) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.width && y < t.height
}

func (t *texture) texel(x, y int) [4]float32 {
	if !t.format.IsColor() {
		return [4]float32{0, 0, 0, 1}
	}
	o := (y*t.width + x) * 4
	c := [4]float32{0, 0, 0, 1}
	for i := 0; i < t.format.Channels(); i++ {
		c[i] = float32(t.pix[o+i]) / 255
	}
	return c
}

func (t *texture) store(x, y int, c [4]float32, mask [4]bool) {
	o := (y*t.width + x) * 4
	for i := 0; i < 4; i++ {
		if mask[i] {
			t.pix[o+i] = unorm8(c[i])
		}
	}
}

func (t *texture) stencilAt(x, y int) uint8 {
	return uint8(t.ds[y*t.width+x])
}

func (t *texture) setStencil(x, y int, s uint8) {
	i := y*t.width + x
	t.ds[i] = t.ds[i]&^0xFF | uint32(s)
}

func (t *texture) setDepth(x, y int, depth uint32) {
	i := y*t.width + x
	t.ds[i] = depth<<8 | t.ds[i]&0xFF
}

// sample reads the base level with the magnification filter.
func (t *texture) sample(u, v float32) [4]float32 {
	if t.width == 0 || t.height == 0 || !t.format.IsColor() {
		return [4]float32{0, 0, 0, 1}
	}
	fw, fh := float32(t.width), float32(t.height)
	if t.magFilter == gpu.Nearest || t.magFilter == gpu.NearestMipmapNearest {
		return t.fetch(int(math32.Floor(u*fw)), int(math32.Floor(v*fh)))
	}

	fx := u*fw - 0.5
	fy := v*fh - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	ax := fx - float32(x0)
	ay := fy - float32(y0)

	c00 := t.fetch(x0, y0)
	c10 := t.fetch(x0+1, y0)
	c01 := t.fetch(x0, y0+1)
	c11 := t.fetch(x0+1, y0+1)
	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i] + (c10[i]-c00[i])*ax
		bottom := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bottom-top)*ay
	}
	return out
}

func (t *texture) fetch(x, y int) [4]float32 {
	x, okx := wrapCoord(x, t.width, t.wrapS)
	y, oky := wrapCoord(y, t.height, t.wrapT)
	if !okx || !oky {
		return t.border
	}
	return t.texel(x, y)
}

func wrapCoord(i, n int, w gpu.Wrap) (int, bool) {
	switch w {
	case gpu.Repeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i, true
	case gpu.MirroredRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	case gpu.ClampToBorder:
		return i, i >= 0 && i < n
	}
	return min(max(i, 0), n-1), true
}

func unorm8(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math32.Floor(v*255 + 0.5))
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (d *Device) CreateTexture() (gpu.Texture, error) {
	d.nextTexture++
	name := gpu.Texture(d.nextTexture)
	d.textures[name] = newTexture()
	d.stats.TexturesCreated++
	return name, nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	if _, ok := d.textures[tex]; !ok {
		return
	}
	delete(d.textures, tex)
	d.stats.TexturesDeleted++
	for i := range d.units {
		if d.units[i] == tex {
			d.units[i] = 0
		}
	}
	// deleting an attached texture detaches it from the bound framebuffers
	for _, binding := range []gpu.Framebuffer{d.readFB, d.drawFB} {
		if fb := d.framebuffers[binding]; fb != nil {
			fb.detach(tex)
		}
	}
}

func (d *Device) TexImage2D(tex gpu.Texture, format gpu.Format, width, height int, data []byte) {
	t := d.textures[tex]
	if t == nil {
		return
	}
	t.alloc(format, width, height)
	if data != nil {
		t.load(data)
	}
}

func (d *Device) TexFilter(tex gpu.Texture, minFilter, magFilter gpu.Filter) {
	if t := d.textures[tex]; t != nil {
		t.minFilter = minFilter
		t.magFilter = magFilter
	}
}

func (d *Device) TexWrap(tex gpu.Texture, s, t gpu.Wrap) {
	if tx := d.textures[tex]; tx != nil {
		tx.wrapS = s
		tx.wrapT = t
	}
}

func (d *Device) TexBorderColor(tex gpu.Texture, color [4]float32) {
	if t := d.textures[tex]; t != nil {
		t.border = color
	}
}

func (d *Device) TexAnisotropy(tex gpu.Texture, value float32) {
	if t := d.textures[tex]; t != nil {
		t.anisotropy = value
	}
}

// GenerateMipmap only marks the texture; sampling always uses the base level.
func (d *Device) GenerateMipmap(tex gpu.Texture) {
	if t := d.textures[tex]; t != nil {
		t.mipmapped = true
	}
}

func (d *Device) CopyTexImage2D(tex gpu.Texture, format gpu.Format, x, y, width, height int) {
	dst := d.textures[tex]
	if dst == nil || !format.IsColor() {
		return
	}
	src := d.colorAttachment(d.readFB, gpu.ColorAttachment0)
	dst.alloc(format, width, height)
	if src == nil {
		return
	}
	all := [4]bool{true, true, true, true}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sx, sy := x+col, y+row
			if !src.inBounds(sx, sy) {
				continue
			}
			dst.store(col, row, src.texel(sx, sy), all)
		}
	}
}

func (d *Device) BindTexture(unit int, tex gpu.Texture) {
	if unit < 0 || unit >= len(d.units) {
		return
	}
	d.units[unit] = tex
}

func (d *Device) TextureBinding(unit int) gpu.Texture {
	if unit < 0 || unit >= len(d.units) {
		return 0
	}
	return d.units[unit]
}

// TextureSize reports the allocated size of tex, for tests and tooling.
func (d *Device) TextureSize(tex gpu.Texture) (int, int, bool) {
	t := d.textures[tex]
	if t == nil {
		return 0, 0, false
	}
	return t.width, t.height, true
}

// sampler resolves sampler units against the device's texture bindings.
type sampler struct {
	d *Device
}

func (s sampler) Sample(unit int, u, v float32) [4]float32 {
	if unit < 0 || unit >= len(s.d.units) {
		return [4]float32{0, 0, 0, 1}
	}
	t := s.d.textures[s.d.units[unit]]
	if t == nil {
		return [4]float32{0, 0, 0, 1}
	}
	return t.sample(u, v)
}
