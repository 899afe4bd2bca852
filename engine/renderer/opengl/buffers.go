package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

func (d *Device) CreateBuffer() (gpu.Buffer, error) {
	var b uint32
	gl.GenBuffers(1, &b)
	if b == 0 {
		return 0, errNoName("buffer")
	}
	return gpu.Buffer(b), nil
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	if b == 0 {
		return
	}
	name := uint32(b)
	gl.DeleteBuffers(1, &name)
}

// BufferData uploads through the copy-write binding point so that neither the array buffer
// binding nor the bound vertex array's element buffer changes.
func (d *Device) BufferData(_ gpu.BufferTarget, b gpu.Buffer, data []byte) {
	if b == 0 {
		return
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(b))
	if len(data) == 0 {
		gl.BufferData(gl.COPY_WRITE_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.COPY_WRITE_BUFFER, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

func (d *Device) CreateVertexArray() (gpu.VertexArray, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, errNoName("vertex array")
	}
	return gpu.VertexArray(vao), nil
}

func (d *Device) DeleteVertexArray(vao gpu.VertexArray) {
	if vao == 0 {
		return
	}
	name := uint32(vao)
	gl.DeleteVertexArrays(1, &name)
	if d.vao == vao {
		d.vao = 0
	}
}

func (d *Device) BindVertexArray(vao gpu.VertexArray) {
	d.vao = vao
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) VertexArrayBinding() gpu.VertexArray {
	return d.vao
}

func (d *Device) VertexAttribPointer(index int, b gpu.Buffer, size, stride, offset int) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.EnableVertexAttribArray(uint32(index))
	gl.VertexAttribPointerWithOffset(uint32(index), int32(size), gl.FLOAT, false, int32(stride), uintptr(offset))
}

func (d *Device) DisableVertexAttrib(index int) {
	gl.DisableVertexAttribArray(uint32(index))
}

func (d *Device) BindElementBuffer(b gpu.Buffer) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(b))
}
