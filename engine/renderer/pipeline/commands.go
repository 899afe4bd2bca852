package pipeline

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/metadata"
)

// RenderFrame uploads the frame's geometry, runs its command stream into the scene targets,
// post-processes and presents the result on the default surface. Invalid commands are skipped;
// only a failure to allocate the scene targets is returned.
func (b *Backend) RenderFrame(frame *metadata.Frame) error {
	if b.disposed {
		return fmt.Errorf("render frame: %w", core.ErrDeviceLost)
	}
	b.stats = core.FrameCounters{}
	if frame == nil {
		frame = &metadata.Frame{}
	}

	b.rebindActiveTargets()
	b.UploadFrameGeometry(frame.Vertices, frame.UVs, frame.Deform)
	if err := b.beginScene(); err != nil {
		b.log.Error("scene targets unavailable", "err", err)
		b.endScene()
		return err
	}

	for _, cmd := range frame.Commands {
		b.execute(cmd)
	}

	// leave no composite or mask open past the end of the stream
	for !b.passes.IsEmpty() {
		b.log.Debug("closing composite left open by the stream")
		b.EndDynamicComposite()
	}
	if b.mask.phase != maskIdle {
		b.log.Debug("ending mask left open by the stream")
		b.EndMask()
	}

	b.postProcess()
	b.Present(b.dev.DrawingBufferSize())
	if b.thumbnailGrid {
		b.RenderThumbnailGrid()
	}

	b.dev.UseProgram(0)
	b.dev.BindVertexArray(0)
	b.dev.Flush()
	b.endScene()
	return nil
}

func (b *Backend) execute(cmd metadata.Command) {
	switch c := cmd.(type) {
	case metadata.DrawPart:
		if b.suppressed() {
			b.stats.SkippedDraws++
			return
		}
		b.drawPart(&c.Packet)
	case metadata.BeginDynamicComposite:
		b.BeginDynamicComposite(b.CreateDynamicCompositePass(c.Pass))
	case metadata.EndDynamicComposite:
		if b.passes.IsEmpty() {
			// resolving keeps the cache warm for the pass the stream meant to close
			b.CreateDynamicCompositePass(c.Pass)
		}
		b.EndDynamicComposite()
	case metadata.BeginMask:
		if b.suppressed() {
			return
		}
		b.BeginMask(c.UsesStencil)
	case metadata.ApplyMask:
		if b.suppressed() {
			b.stats.SkippedDraws++
			return
		}
		b.ApplyMask(&c.Packet)
	case metadata.BeginMaskContent:
		if b.suppressed() {
			return
		}
		b.BeginMaskContent()
	case metadata.EndMask:
		if b.suppressed() {
			return
		}
		b.EndMask()
	default:
		b.log.Debug("unknown command skipped", "command", fmt.Sprintf("%T", cmd))
	}
}

