package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockWithFakeSource(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClockWithSource(func() time.Time { return now })

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestMetricsAverageAndTotals(t *testing.T) {
	m := NewMetrics()
	frame := FrameCounters{Draws: 3, Masks: 1, BlendBarriers: 2}
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.010, frame)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)
	assert.Equal(t, uint64(AVG_COUNT), m.TotalFrames)
	assert.Equal(t, frame, m.Last)
	assert.Equal(t, uint32(3*int(AVG_COUNT)), m.Total.Draws)
	assert.Equal(t, uint32(2*int(AVG_COUNT)), m.Total.BlendBarriers)

	// 30 frames of 10ms never pass a full second
	fps, _ := m.Frame()
	assert.Zero(t, fps)
	for i := 0; i < 80; i++ {
		m.Update(0.010, FrameCounters{})
	}
	fps, _ = m.Frame()
	assert.InDelta(t, 100, fps, 1)
}

func TestHandleAllocatorNeverReturnsZero(t *testing.T) {
	h := NewHandleAllocator()
	assert.Equal(t, uint32(1), h.Peek())
	assert.Equal(t, uint32(1), h.Acquire())
	assert.Equal(t, uint32(2), h.Acquire())

	h.next = ^uint32(0)
	assert.Equal(t, ^uint32(0), h.Acquire())
	assert.Equal(t, uint32(1), h.Peek())
	assert.Equal(t, uint32(1), h.Acquire())
}

func TestAcquireUnusedSkipsLiveIDs(t *testing.T) {
	h := NewHandleAllocator()
	h.next = ^uint32(0)
	live := map[uint32]bool{1: true, 2: true}
	inUse := func(id uint32) bool { return live[id] }

	assert.Equal(t, ^uint32(0), h.AcquireUnused(inUse))
	assert.Equal(t, uint32(3), h.AcquireUnused(inUse))
	assert.Equal(t, uint32(4), h.Peek())
}
