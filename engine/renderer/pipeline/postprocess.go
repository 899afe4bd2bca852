package pipeline

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

// postChain is the list of programs the post-process pass runs, in order.
func (b *Backend) postChain() []gpu.Program {
	chain := make([]gpu.Program, 0, len(b.postStack)+1)
	if b.defaultPost {
		chain = append(chain, b.shaders.post)
	}
	return append(chain, b.postStack...)
}

// postProcess runs every post program over the scene, ping-ponging between the scene targets,
// and leaves the result in A. It is a no-op when the chain is empty.
func (b *Backend) postProcess() {
	chain := b.postChain()
	if len(chain) == 0 || !b.scene.ready() {
		return
	}
	dev := b.dev
	w, h := b.scene.width, b.scene.height

	dev.GenerateMipmap(b.scene.a.emissive)
	dev.BindFramebuffer(gpu.FramebufferBoth, b.scene.b.fb)
	b.setDrawBuffers(0, sceneColorTargets)
	c := b.clearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])
	dev.Clear(gpu.ColorBufferBit)

	src, dst := &b.scene.a, &b.scene.b
	identity := math.NewMat4Identity().Data
	for _, prog := range chain {
		dev.BindFramebuffer(gpu.FramebufferBoth, dst.fb)
		dev.Viewport(0, 0, w, h)
		dev.Disable(gpu.DepthTest)
		dev.Disable(gpu.CullFace)
		dev.Enable(gpu.Blend)
		b.setBlendState(premultipliedOver)

		dev.UseProgram(prog)
		dev.UniformMatrix4fv(dev.UniformLocation(prog, "mvp"), identity)
		a := b.ambientLight
		dev.Uniform4f(dev.UniformLocation(prog, "ambientLight"), a[0], a[1], a[2], a[3])
		dev.Uniform2f(dev.UniformLocation(prog, "fbSize"), float32(w), float32(h))
		dev.Uniform1i(dev.UniformLocation(prog, "albedo"), 0)
		dev.Uniform1i(dev.UniformLocation(prog, "emissive"), 1)
		dev.Uniform1i(dev.UniformLocation(prog, "bumpmap"), 2)
		for i, tex := range src.colors() {
			dev.BindTexture(i, tex)
		}
		b.drawQuad()
		src, dst = dst, src
	}
	b.boundAlbedo = 0

	// after the swap src holds the last written target
	if src == &b.scene.b {
		dev.BindFramebuffer(gpu.FramebufferRead, b.scene.b.fb)
		dev.BindFramebuffer(gpu.FramebufferDraw, b.scene.a.fb)
		b.setDrawBuffers(0, 1)
		dev.BlitFramebuffer([4]int{0, 0, w, h}, [4]int{0, 0, w, h}, true)
		b.setDrawBuffers(0, sceneColorTargets)
	}
	dev.BindFramebuffer(gpu.FramebufferBoth, 0)
}
