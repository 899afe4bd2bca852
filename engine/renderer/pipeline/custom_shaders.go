package pipeline

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// CreateShader builds a user program. Full screen post programs should read position from
// location 0 and uv from location 1, and may declare the mvp, ambientLight and fbSize uniforms
// and the albedo, emissive and bumpmap samplers.
func (b *Backend) CreateShader(name, vertex, fragment string) (metadata.ShaderHandle, error) {
	p, err := b.dev.CreateProgram(gpu.ProgramSource{Name: name, Vertex: vertex, Fragment: fragment})
	if err != nil {
		b.log.Error("user shader failed to build", "name", name, "err", err)
		return 0, fmt.Errorf("%w: %s: %v", core.ErrShaderBuild, name, err)
	}
	h := metadata.ShaderHandle(b.shaderIDs.AcquireUnused(func(id uint32) bool {
		_, live := b.userShaders[metadata.ShaderHandle(id)]
		return live
	}))
	b.userShaders[h] = p
	b.log.Debug("user shader created", "handle", h, "name", name)
	return h, nil
}

// DestroyShader deletes a user program and drops it from the post-process stack.
func (b *Backend) DestroyShader(h metadata.ShaderHandle) {
	p, ok := b.userShaders[h]
	if !ok {
		return
	}
	b.postStack = slices.DeleteFunc(b.postStack, func(q gpu.Program) bool { return q == p })
	b.dev.DeleteProgram(p)
	delete(b.userShaders, h)
}

func (b *Backend) ShaderUniformLocation(h metadata.ShaderHandle, name string) gpu.UniformLocation {
	p, ok := b.userShaders[h]
	if !ok {
		return gpu.NoUniform
	}
	return b.dev.UniformLocation(p, name)
}

// UseShader makes the user program current; the uniform setters act on it.
func (b *Backend) UseShader(h metadata.ShaderHandle) bool {
	p, ok := b.userShaders[h]
	if !ok {
		return false
	}
	b.dev.UseProgram(p)
	return true
}

func (b *Backend) SetShaderUniformInt(loc gpu.UniformLocation, v int) {
	b.dev.Uniform1i(loc, v)
}

func (b *Backend) SetShaderUniformFloat(loc gpu.UniformLocation, v float32) {
	b.dev.Uniform1f(loc, v)
}

func (b *Backend) SetShaderUniformVec2(loc gpu.UniformLocation, v math.Vec2) {
	b.dev.Uniform2f(loc, v.X, v.Y)
}

func (b *Backend) SetShaderUniformVec3(loc gpu.UniformLocation, v math.Vec3) {
	b.dev.Uniform3f(loc, v.X, v.Y, v.Z)
}

func (b *Backend) SetShaderUniformVec4(loc gpu.UniformLocation, v math.Vec4) {
	b.dev.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
}

// SetShaderUniformMat4 uploads a row-major matrix.
func (b *Backend) SetShaderUniformMat4(loc gpu.UniformLocation, m math.Mat4) {
	b.dev.UniformMatrix4fv(loc, math.NewMat4Transposed(m).Data)
}

// PushPostProcessShader appends a user program to the post-process chain.
func (b *Backend) PushPostProcessShader(h metadata.ShaderHandle) bool {
	p, ok := b.userShaders[h]
	if !ok {
		return false
	}
	b.postStack = append(b.postStack, p)
	return true
}

func (b *Backend) ClearPostProcessShaders() {
	b.postStack = b.postStack[:0]
}
