package core

const AVG_COUNT uint8 = 30

// FrameCounters are the per-frame statistics reported by the pipeline.
type FrameCounters struct {
	Draws                uint32
	SkippedDraws         uint32
	Masks                uint32
	Composites           uint32
	SurfacelessComposite uint32
	UnbalancedCloses     uint32
	BlendBarriers        uint32
}

func (fc *FrameCounters) Add(other FrameCounters) {
	fc.Draws += other.Draws
	fc.SkippedDraws += other.SkippedDraws
	fc.Masks += other.Masks
	fc.Composites += other.Composites
	fc.SurfacelessComposite += other.SurfacelessComposite
	fc.UnbalancedCloses += other.UnbalancedCloses
	fc.BlendBarriers += other.BlendBarriers
}

// Metrics keeps a rolling frame-time average, frames per second and cumulative pipeline counters.
type Metrics struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	TotalFrames uint64
	Last        FrameCounters
	Total       FrameCounters
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records one frame. elapsed is in seconds.
func (m *Metrics) Update(elapsed float64, counters FrameCounters) {
	// Calculate frame ms average
	frameMS := elapsed * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		m.MSavg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.MSavg += m.MStimes[i]
		}
		m.MSavg /= float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
	m.TotalFrames++
	m.Last = counters
	m.Total.Add(counters)
}

func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
