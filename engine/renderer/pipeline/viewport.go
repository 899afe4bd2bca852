package pipeline

type viewportSize struct {
	width, height int
}

// PushViewport makes width×height the current viewport until the matching PopViewport.
func (b *Backend) PushViewport(width, height int) {
	b.viewports.Push(viewportSize{width: max(1, width), height: max(1, height)})
}

// PopViewport restores the previous viewport. Popping an empty stack is a no-op.
func (b *Backend) PopViewport() {
	if _, err := b.viewports.Pop(); err != nil {
		b.log.Debug("viewport stack already empty")
	}
}

// Viewport is the size on top of the viewport stack, or the drawing buffer size when the stack
// is empty.
func (b *Backend) Viewport() (int, int) {
	if top, err := b.viewports.Peek(); err == nil {
		return top.width, top.height
	}
	return b.dev.DrawingBufferSize()
}

// SetViewport replaces the top of the viewport stack, pushing it if the stack is empty.
func (b *Backend) SetViewport(width, height int) {
	_, _ = b.viewports.Pop()
	b.PushViewport(width, height)
}

// ResizeViewportTargets sets the viewport and reallocates the scene targets to match.
func (b *Backend) ResizeViewportTargets(width, height int) error {
	b.SetViewport(width, height)
	return b.ensureSceneTargets(width, height)
}
