package opengl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

func errNoName(kind string) error {
	return fmt.Errorf("%w: glGen returned no %s name", core.ErrResourceCreation, kind)
}

func cString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func compileShader(kind uint32, src string) (uint32, error) {
	handle := gl.CreateShader(kind)
	csources, free := gl.Strs(cString(src))
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteShader(handle)
		return 0, errors.New(strings.TrimRight(msg, "\x00"))
	}
	return handle, nil
}

// CreateProgram compiles and links src. Failures are wrapped in core.ErrShaderBuild with the
// driver's info log.
func (d *Device) CreateProgram(src gpu.ProgramSource) (gpu.Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return 0, fmt.Errorf("%w: %s vertex stage: %v", core.ErrShaderBuild, src.Name, err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		return 0, fmt.Errorf("%w: %s fragment stage: %v", core.ErrShaderBuild, src.Name, err)
	}
	defer gl.DeleteShader(fs)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return 0, fmt.Errorf("%w: %s link: %s", core.ErrShaderBuild, src.Name, strings.TrimRight(msg, "\x00"))
	}
	gl.DetachShader(handle, vs)
	gl.DetachShader(handle, fs)
	core.LogDebug("program %q linked (%d)", src.Name, handle)
	return gpu.Program(handle), nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	if p == 0 {
		return
	}
	gl.DeleteProgram(uint32(p))
	if d.program == p {
		d.program = 0
	}
}

func (d *Device) UseProgram(p gpu.Program) {
	d.program = p
	gl.UseProgram(uint32(p))
}

func (d *Device) CurrentProgram() gpu.Program {
	return d.program
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if p == 0 {
		return gpu.NoUniform
	}
	loc := gl.GetUniformLocation(uint32(p), gl.Str(cString(name)))
	if loc < 0 {
		return gpu.NoUniform
	}
	return gpu.UniformLocation(loc)
}

func (d *Device) Uniform1i(loc gpu.UniformLocation, v int) {
	gl.Uniform1i(int32(loc), int32(v))
}

func (d *Device) Uniform1f(loc gpu.UniformLocation, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform2f(loc gpu.UniformLocation, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}

func (d *Device) Uniform3f(loc gpu.UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

func (d *Device) Uniform4f(loc gpu.UniformLocation, x, y, z, w float32) {
	gl.Uniform4f(int32(loc), x, y, z, w)
}

func (d *Device) UniformMatrix4fv(loc gpu.UniformLocation, m [16]float32) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}
