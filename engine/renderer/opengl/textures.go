package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

func (d *Device) CreateTexture() (gpu.Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, errNoName("texture")
	}
	return gpu.Texture(tex), nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	if tex == 0 {
		return
	}
	name := uint32(tex)
	gl.DeleteTextures(1, &name)
	for i := range d.units {
		if d.units[i] == tex {
			d.units[i] = 0
		}
	}
}

// editTexture binds tex on the scratch unit for the duration of fn.
func (d *Device) editTexture(tex gpu.Texture, fn func()) {
	if tex == 0 {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + d.scratchUnit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	fn()
	gl.BindTexture(gl.TEXTURE_2D, uint32(d.units[d.scratchUnit]))
}

func (d *Device) TexImage2D(tex gpu.Texture, format gpu.Format, width, height int, data []byte) {
	// the driver reads width×height texels from the pointer
	if len(data) > 0 && len(data) < width*height*format.Channels() {
		return
	}
	pf := glPixelFormat(format)
	d.editTexture(tex, func() {
		var ptr any
		if len(data) > 0 {
			ptr = data
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, pf.internal, int32(width), int32(height), 0, pf.format, pf.xtype, gl.Ptr(ptr))
	})
}

func (d *Device) TexFilter(tex gpu.Texture, minFilter, magFilter gpu.Filter) {
	// magnification has no mipmap variants
	mag := magFilter
	switch mag {
	case gpu.NearestMipmapNearest:
		mag = gpu.Nearest
	case gpu.LinearMipmapLinear:
		mag = gpu.Linear
	}
	d.editTexture(tex, func() {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, lookup(filters[:], minFilter))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, lookup(filters[:], mag))
	})
}

func (d *Device) TexWrap(tex gpu.Texture, s, t gpu.Wrap) {
	d.editTexture(tex, func() {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, lookup(wraps[:], s))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, lookup(wraps[:], t))
	})
}

func (d *Device) TexBorderColor(tex gpu.Texture, color [4]float32) {
	d.editTexture(tex, func() {
		gl.TexParameterfv(gl.TEXTURE_2D, glTextureBorderColor, &color[0])
	})
}

func (d *Device) TexAnisotropy(tex gpu.Texture, value float32) {
	if !d.caps.Anisotropy {
		return
	}
	d.editTexture(tex, func() {
		gl.TexParameterf(gl.TEXTURE_2D, glTextureMaxAnisotropy, value)
	})
}

func (d *Device) GenerateMipmap(tex gpu.Texture) {
	d.editTexture(tex, func() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	})
}

func (d *Device) CopyTexImage2D(tex gpu.Texture, format gpu.Format, x, y, width, height int) {
	if !format.IsColor() {
		return
	}
	pf := glPixelFormat(format)
	d.editTexture(tex, func() {
		gl.CopyTexImage2D(gl.TEXTURE_2D, 0, uint32(pf.internal), int32(x), int32(y), int32(width), int32(height), 0)
	})
}

func (d *Device) TextureBinding(unit int) gpu.Texture {
	if unit < 0 || unit >= len(d.units) {
		return 0
	}
	return d.units[unit]
}

func (d *Device) BindTexture(unit int, tex gpu.Texture) {
	if unit < 0 || unit >= len(d.units) || uint32(unit) == d.scratchUnit {
		return
	}
	d.units[unit] = tex
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}
