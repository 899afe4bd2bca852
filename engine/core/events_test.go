package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDispatchOrder(t *testing.T) {
	eb := NewEventBus()
	var calls []string
	first := func(code SystemEventCode, sender, listener any, ctx EventContext) bool {
		calls = append(calls, listener.(string))
		return false
	}
	stop := func(code SystemEventCode, sender, listener any, ctx EventContext) bool {
		calls = append(calls, listener.(string))
		return ctx.Key == KEY_ESCAPE
	}

	assert.True(t, eb.Register(EVENT_CODE_KEY_PRESSED, "a", first))
	assert.True(t, eb.Register(EVENT_CODE_KEY_PRESSED, "b", stop))
	assert.True(t, eb.Register(EVENT_CODE_KEY_PRESSED, "c", first))
	assert.False(t, eb.Register(EVENT_CODE_KEY_PRESSED, "a", first))
	assert.False(t, eb.Register(EVENT_CODE_KEY_PRESSED, "d", nil))

	assert.True(t, eb.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{Key: KEY_ESCAPE}))
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	assert.False(t, eb.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{Key: KEY_T}))
	assert.Equal(t, []string{"a", "b", "c"}, calls)

	assert.False(t, eb.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
}

func TestEventBusUnregister(t *testing.T) {
	eb := NewEventBus()
	count := 0
	cb := func(SystemEventCode, any, any, EventContext) bool {
		count++
		return true
	}
	eb.Register(EVENT_CODE_RESIZED, eb, cb)

	assert.False(t, eb.Unregister(EVENT_CODE_RESIZED, "other", cb))
	assert.True(t, eb.Unregister(EVENT_CODE_RESIZED, eb, cb))
	assert.False(t, eb.Fire(EVENT_CODE_RESIZED, nil, EventContext{Width: 4, Height: 4}))
	assert.Zero(t, count)

	eb.Register(EVENT_CODE_RESIZED, eb, cb)
	eb.Clear()
	assert.False(t, eb.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
}
