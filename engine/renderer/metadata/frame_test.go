package metadata

import (
	"testing"

	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBuilderLanes(t *testing.T) {
	fb := NewFrameBuilder()
	a := fb.AddMesh([]math.Vec2{{X: 1, Y: 2}, {X: 3, Y: 4}}, []math.Vec2{{X: 0.5, Y: 0.25}}, nil)
	b := fb.AddMesh([]math.Vec2{{X: 5, Y: 6}}, nil, []math.Vec2{{X: -1, Y: -2}})
	fb.Push(DrawPart{}, EndMask{})

	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(2), b)
	require.Equal(t, uint32(3), fb.Stride())

	f := fb.Build()
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 6}, f.Vertices)
	assert.Equal(t, []float32{0.5, 0, 0, 0.25, 0, 0}, f.UVs)
	assert.Equal(t, []float32{0, 0, -1, 0, 0, -2}, f.Deform)
	require.Len(t, f.Commands, 2)
	assert.Equal(t, CommandDrawPart, f.Commands[0].Kind())
	assert.Equal(t, CommandEndMask, f.Commands[1].Kind())
}

func TestBlendModeNames(t *testing.T) {
	modes := AllBlendModes()
	require.Len(t, modes, 19)
	assert.Equal(t, "Normal", modes[0].String())
	assert.Equal(t, "SliceFromLower", modes[18].String())
	assert.Equal(t, "BlendMode(42)", BlendMode(42).String())
	assert.Equal(t, "ApplyMask", CommandApplyMask.String())
}

func TestNewDrawPacketDefaults(t *testing.T) {
	p := NewDrawPacket()
	assert.True(t, p.Renderable)
	assert.Equal(t, DefaultMaskThreshold, p.MaskThreshold)
	assert.Equal(t, float32(0.5), p.MaskThreshold)
	assert.Equal(t, float32(1), p.Opacity)
	assert.Equal(t, math.NewMat4Identity(), p.ModelMatrix)
	assert.Equal(t, math.NewVec3One(), p.ClampedTint)
	assert.Equal(t, BlendModeNormal, p.BlendMode)
	assert.Zero(t, p.TextureCount)
}
