// Package testbed is a small animated puppet used to exercise the renderer: a body with a
// swaying head, eyes clipped to the head by a stencil mask, a multiply-blended shadow built in
// a dynamic composite and an emissive glow drawn with the multi-stage shaders.
package testbed

import (
	"errors"
	"image"
	"image/color"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/marionette/engine"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
	"github.com/spaghettifunk/marionette/engine/renderer/pipeline"
)

const compositeSize = 128

var quadIndices = []uint16{0, 1, 2, 2, 1, 3}

// index buffer handles, one per drawable
const (
	iboBody metadata.IndexBufferHandle = iota + 1
	iboHead
	iboHeadMask
	iboEyes
	iboShadowA
	iboShadowB
	iboShadow
	iboGlow
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	backend *pipeline.Backend
	time    float64
	width   int
	height  int

	body   *math.Transform
	head   *math.Transform
	eyes   *math.Transform
	shadow *math.Transform
	glow   *math.Transform

	bodyTex     metadata.TextureHandle
	headTex     metadata.TextureHandle
	eyesTex     metadata.TextureHandle
	blobTex     metadata.TextureHandle
	glowTex     metadata.TextureHandle
	emissiveTex metadata.TextureHandle

	shadowTex     metadata.TextureHandle
	shadowStencil metadata.TextureHandle
}

func NewTestGame(ac *engine.ApplicationConfig) *TestGame {
	body := math.TransformFromPosition(math.NewVec2(0, -0.35))
	body.SetScale(math.NewVec2(0.7, 0.9))
	head := math.TransformFromPosition(math.NewVec2(0, 0.75))
	head.SetScale(math.NewVec2(0.9, 0.7))
	head.Parent = body
	eyes := math.TransformFromPosition(math.NewVec2(0, 0.05))
	eyes.SetScale(math.NewVec2(0.8, 0.35))
	eyes.Parent = head
	shadow := math.TransformFromPosition(math.NewVec2(0.08, -0.75))
	shadow.SetScale(math.NewVec2(1.1, 0.3))
	glow := math.TransformFromPosition(math.NewVec2(0, 0.1))
	glow.SetScale(math.NewVec2(0.5, 0.5))
	glow.Parent = body

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: ac,
			State: &gameState{
				body:   body,
				head:   head,
				eyes:   eyes,
				shadow: shadow,
				glow:   glow,
			},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(r *renderer.Renderer) error {
	core.LogInfo("initializing testbed puppet...")
	st := g.state()
	st.backend = r.Backend()

	paints := []struct {
		dst   *metadata.TextureHandle
		paint func() *image.RGBA
	}{
		{&st.bodyTex, func() *image.RGBA { return roundedRect(64, color.RGBA{R: 70, G: 120, B: 200, A: 255}) }},
		{&st.headTex, func() *image.RGBA { return disc(64, color.RGBA{R: 240, G: 200, B: 160, A: 255}) }},
		{&st.eyesTex, func() *image.RGBA { return eyes(64) }},
		{&st.blobTex, func() *image.RGBA { return disc(32, color.RGBA{R: 90, G: 80, B: 110, A: 255}) }},
		{&st.glowTex, func() *image.RGBA { return radial(32, color.RGBA{R: 255, G: 220, B: 90, A: 255}) }},
		{&st.emissiveTex, func() *image.RGBA { return radial(32, color.RGBA{R: 255, G: 160, B: 40, A: 255}) }},
	}

	// textures are painted on workers and uploaded here, on the goroutine owning the device
	jobs, err := core.NewJobSystem(runtime.NumCPU(), len(paints))
	if err != nil {
		return err
	}
	defer jobs.Shutdown()
	var uploadErr error
	for _, p := range paints {
		err := jobs.Submit(core.JobTask{
			Name: "paint texture",
			Run:  func() (any, error) { return p.paint(), nil },
			OnComplete: func(result any) {
				h, err := uploadImage(st.backend, result.(*image.RGBA))
				if err != nil {
					uploadErr = errors.Join(uploadErr, err)
					return
				}
				*p.dst = h
			},
		})
		if err != nil {
			return err
		}
	}
	jobs.Wait()
	if uploadErr != nil {
		return uploadErr
	}

	if st.shadowTex, err = st.backend.CreateTexture(compositeSize, compositeSize, 4, false); err != nil {
		return err
	}
	if st.shadowStencil, err = st.backend.CreateTexture(compositeSize, compositeSize, 4, true); err != nil {
		return err
	}
	for _, h := range []metadata.TextureHandle{st.bodyTex, st.headTex, st.eyesTex} {
		st.backend.ApplyTextureWrapping(h, metadata.WrappingClamp)
		st.backend.GenerateTextureMipmap(h)
		st.backend.ApplyTextureFiltering(h, metadata.FilteringLinear)
	}
	core.LogDebug("testbed uploaded %d textures", len(st.backend.Textures()))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	st := g.state()
	st.time += deltaTime
	t := float32(st.time)
	st.head.SetRotation(0.25 * math32.Sin(t*1.5))
	st.eyes.SetPosition(math.NewVec2(0.35*math32.Sin(t*0.8), 0.05))
	st.body.SetPosition(math.NewVec2(0.05*math32.Sin(t), -0.35+0.02*math32.Sin(t*3)))
	return nil
}

func (g *TestGame) OnResize(width, height int) error {
	st := g.state()
	st.width, st.height = width, height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shut down after %.1fs", g.state().time)
	return nil
}

// projection keeps the puppet's unit box square whatever the surface aspect ratio.
func (st *gameState) projection() math.Mat4 {
	aspect := float32(1)
	if st.height > 0 {
		aspect = float32(st.width) / float32(st.height)
	}
	if aspect >= 1 {
		return math.NewMat4Orthographic(-aspect, aspect, -1, 1, -1, 1)
	}
	return math.NewMat4Orthographic(-1, 1, -1/aspect, 1/aspect, -1, 1)
}

func (g *TestGame) Render(deltaTime float64) (*metadata.Frame, error) {
	st := g.state()
	if st.backend == nil {
		return nil, errors.New("testbed rendered before initialization")
	}
	fb := metadata.NewFrameBuilder()
	quad := fb.AddMesh(
		[]math.Vec2{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: -0.5, Y: 0.5}, {X: 0.5, Y: 0.5}},
		[]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		nil,
	)
	stride := fb.Stride()
	proj := st.projection()

	part := func(model math.Mat4, tex metadata.TextureHandle, ibo metadata.IndexBufferHandle) metadata.DrawPacket {
		p := metadata.NewDrawPacket()
		p.ModelMatrix, p.RenderMatrix = model, proj
		p.VertexOffset, p.VertexAtlasStride = quad, stride
		p.UVOffset, p.UVAtlasStride = quad, stride
		p.DeformOffset, p.DeformAtlasStride = quad, stride
		p.VertexCount = 4
		p.IndexCount = uint32(len(quadIndices))
		p.IndexBuffer = ibo
		p.Indices = quadIndices
		p.Textures[0] = tex
		p.TextureCount = 1
		return p
	}

	// shadow: two blobs rendered into an off-screen surface, then multiplied onto the scene
	shadowSpec := metadata.DynamicCompositeSpec{
		Textures:     [metadata.MaxPartTextures]metadata.TextureHandle{st.shadowTex},
		TextureCount: 1,
		Stencil:      st.shadowStencil,
		Scale:        math.NewVec2One(),
	}
	blobA := part(math.NewMat4Translation(math.NewVec3(-0.3, 0, 0)).Mul(math.NewMat4Scale(math.NewVec3(1.2, 1.6, 1))), st.blobTex, iboShadowA)
	blobA.RenderMatrix = math.NewMat4Identity()
	blobB := part(math.NewMat4Translation(math.NewVec3(0.3, 0, 0)).Mul(math.NewMat4Scale(math.NewVec3(1.2, 1.6, 1))), st.blobTex, iboShadowB)
	blobB.RenderMatrix = math.NewMat4Identity()
	shadow := part(st.shadow.GetWorld(), st.shadowTex, iboShadow)
	shadow.BlendMode = metadata.BlendModeMultiply
	shadow.Opacity = 0.6

	head := part(st.head.GetWorld(), st.headTex, iboHead)
	headMask := head
	headMask.IsMask = true
	headMask.IndexBuffer = iboHeadMask

	eyePart := part(st.eyes.GetWorld(), st.eyesTex, iboEyes)

	glow := part(st.glow.GetWorld(), st.glowTex, iboGlow)
	glow.BlendMode = metadata.BlendModeScreen
	glow.UseMultistageBlend = true
	glow.HasEmissionOrBumpmap = true
	glow.EmissionStrength = 0.5 + 0.5*math32.Sin(float32(st.time)*2)
	glow.Textures[1] = st.emissiveTex
	glow.TextureCount = 2

	fb.Push(
		metadata.BeginDynamicComposite{Pass: shadowSpec},
		metadata.DrawPart{Packet: blobA},
		metadata.DrawPart{Packet: blobB},
		metadata.EndDynamicComposite{Pass: shadowSpec},
		metadata.DrawPart{Packet: shadow},
		metadata.DrawPart{Packet: part(st.body.GetWorld(), st.bodyTex, iboBody)},
		metadata.DrawPart{Packet: glow},
		metadata.DrawPart{Packet: head},
		metadata.BeginMask{UsesStencil: true},
		metadata.ApplyMask{Packet: metadata.MaskApplyPacket{Kind: metadata.MaskDrawablePart, Part: headMask}},
		metadata.BeginMaskContent{},
		metadata.DrawPart{Packet: eyePart},
		metadata.EndMask{},
	)
	return fb.Build(), nil
}
