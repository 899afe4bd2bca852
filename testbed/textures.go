package testbed

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/spaghettifunk/marionette/engine/renderer/pipeline"
	"golang.org/x/image/draw"
)

// Textures are painted at a quarter of their size and upscaled, which softens their edges.
const paintScale = 4

type shader func(u, v float32) color.RGBA

func paint(size int, fn shader) *image.RGBA {
	small := image.NewRGBA(image.Rect(0, 0, size/paintScale, size/paintScale))
	b := small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			u := (float32(x)+0.5)/float32(b.Dx())*2 - 1
			v := (float32(y)+0.5)/float32(b.Dy())*2 - 1
			small.SetRGBA(x, y, fn(u, v))
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

// premultiply scales c by coverage a in [0,1].
func premultiply(c color.RGBA, a float32) color.RGBA {
	a = math32.Max(0, math32.Min(1, a))
	return color.RGBA{
		R: uint8(float32(c.R) * a),
		G: uint8(float32(c.G) * a),
		B: uint8(float32(c.B) * a),
		A: uint8(float32(c.A) * a),
	}
}

func disc(size int, c color.RGBA) *image.RGBA {
	return paint(size, func(u, v float32) color.RGBA {
		if u*u+v*v <= 1 {
			return c
		}
		return color.RGBA{}
	})
}

func roundedRect(size int, c color.RGBA) *image.RGBA {
	const r = 0.4
	return paint(size, func(u, v float32) color.RGBA {
		dx := math32.Max(math32.Abs(u)-(1-r), 0)
		dy := math32.Max(math32.Abs(v)-(1-r), 0)
		if dx*dx+dy*dy <= r*r {
			return c
		}
		return color.RGBA{}
	})
}

func radial(size int, c color.RGBA) *image.RGBA {
	return paint(size, func(u, v float32) color.RGBA {
		return premultiply(c, 1-math32.Sqrt(u*u+v*v))
	})
}

func eyes(size int) *image.RGBA {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pupil := color.RGBA{R: 20, G: 20, B: 30, A: 255}
	return paint(size, func(u, v float32) color.RGBA {
		for _, cx := range []float32{-0.5, 0.5} {
			du, dv := u-cx, v
			switch d := du*du + dv*dv*0.5; {
			case d <= 0.04:
				return pupil
			case d <= 0.16:
				return white
			}
		}
		return color.RGBA{}
	})
}

// uploadImage creates a texture from img. Rows are flipped since textures store the bottom
// row first.
func uploadImage(b *pipeline.Backend, img *image.RGBA) (metadata.TextureHandle, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tex, err := b.CreateTexture(w, h, 4, false)
	if err != nil {
		return 0, err
	}
	data := make([]byte, 0, w*h*4)
	for y := h - 1; y >= 0; y-- {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		data = append(data, row...)
	}
	b.UpdateTexture(tex, data, w, h, 4)
	return tex, nil
}
