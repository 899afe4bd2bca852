package renderer

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTime advances 20ms each time it is read.
type fakeTime struct {
	now time.Time
}

func (f *fakeTime) read() time.Time {
	f.now = f.now.Add(20 * time.Millisecond)
	return f.now
}

func newTestRenderer(t *testing.T, width, height int) (*Renderer, *software.Device) {
	t.Helper()
	dev := software.New(width, height)
	ft := &fakeTime{now: time.Unix(0, 0)}
	r, err := NewWithClock(dev, core.DefaultConfig().Renderer, core.NewClockWithSource(ft.read))
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)
	return r, dev
}

func TestNewRejectsNilDevice(t *testing.T) {
	_, err := New(nil, core.DefaultConfig().Renderer)
	assert.True(t, errors.Is(err, core.ErrDeviceLost))
}

func TestDrawFrameRecordsMetrics(t *testing.T) {
	r, _ := newTestRenderer(t, 8, 8)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.DrawFrame(nil))
	}
	m := r.Metrics()
	assert.Equal(t, uint64(3), m.TotalFrames)
	assert.InDelta(t, 20.0, m.MStimes[0], 1e-6)
	assert.Equal(t, core.FrameCounters{}, m.Total)
}

func TestApplyConfigTakesEffectNextFrame(t *testing.T) {
	r, dev := newTestRenderer(t, 4, 4)
	cfg := r.Config()
	cfg.ClearColor = [4]float32{0, 0, 1, 1}
	r.ApplyConfig(cfg)
	require.NoError(t, r.DrawFrame(nil))

	assert.Equal(t, color.RGBA{B: 255, A: 255}, dev.Snapshot().RGBAAt(2, 2))
	assert.Equal(t, cfg, r.Config())
}

func TestOnResize(t *testing.T) {
	r, dev := newTestRenderer(t, 8, 8)
	require.NoError(t, r.OnResize(16, 4))
	require.NoError(t, r.DrawFrame(nil))

	assert.Equal(t, 16, dev.Snapshot().Bounds().Dx())
	w, h := r.Backend().SceneSize()
	assert.Equal(t, [2]int{16, 4}, [2]int{w, h})

	err := r.OnResize(0, 4)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestDrawFrameAfterShutdownFails(t *testing.T) {
	dev := software.New(4, 4)
	r, err := New(dev, core.DefaultConfig().Renderer)
	require.NoError(t, err)
	r.Shutdown()
	assert.True(t, errors.Is(r.DrawFrame(nil), core.ErrDeviceLost))
}

func TestRendererTypes(t *testing.T) {
	rt, err := ParseRendererType("software")
	require.NoError(t, err)
	assert.Equal(t, Software, rt)
	assert.Equal(t, "software", rt.String())

	rt, err = ParseRendererType("")
	require.NoError(t, err)
	assert.Equal(t, OpenGL, rt)

	_, err = ParseRendererType("vulkan")
	assert.Error(t, err)

	dev, err := NewDevice(Software, 4, 2)
	require.NoError(t, err)
	w, h := dev.DrawingBufferSize()
	assert.Equal(t, [2]int{4, 2}, [2]int{w, h})
}
