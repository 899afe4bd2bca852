package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	assert.Equal(t, core.KEY_ESCAPE, translateKey(glfw.KeyEscape))
	assert.Equal(t, core.KEY_SPACE, translateKey(glfw.KeySpace))
	assert.Equal(t, core.KEY_T, translateKey(glfw.KeyT))
	assert.Equal(t, core.KEY_P, translateKey(glfw.KeyP))
	assert.Zero(t, translateKey(glfw.KeyF1))
}

func TestCallbacksFireEvents(t *testing.T) {
	bus := core.NewEventBus()
	p := New(bus)
	var got []core.EventContext
	record := func(_ core.SystemEventCode, _, _ any, ctx core.EventContext) bool {
		got = append(got, ctx)
		return true
	}
	bus.Register(core.EVENT_CODE_KEY_PRESSED, nil, record)
	bus.Register(core.EVENT_CODE_RESIZED, nil, record)

	p.keyCallback(nil, glfw.KeyC, 0, glfw.Press, 0)
	p.keyCallback(nil, glfw.KeyF1, 0, glfw.Press, 0)
	p.framebufferSizeCallback(nil, 640, 480)

	assert.Equal(t, []core.EventContext{{Key: core.KEY_C}, {Width: 640, Height: 480}}, got)
	w, h := p.FramebufferSize()
	assert.Zero(t, w+h)
}
