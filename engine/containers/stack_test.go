package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackLIFO(t *testing.T) {
	s := NewStack[int](2)
	for i := 1; i <= 5; i++ {
		s.Push(i)
	}
	require.Equal(t, 5, s.Len())

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, 5, top)

	for want := 5; want >= 1; want-- {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, s.IsEmpty())
}

func TestStackEmpty(t *testing.T) {
	s := NewStack[string](0)
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
	_, err = s.Peek()
	assert.ErrorIs(t, err, ErrStackEmpty)

	s.Push("a")
	s.Clear()
	assert.Equal(t, 0, s.Len())
}
