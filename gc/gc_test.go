package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/gc"
	"orus/value"
)

func TestCollectSweepsUnreachableObjects(t *testing.T) {
	h := gc.New()
	reachable := h.Alloc(value.NewString("kept"))
	dropped := h.InternString("dropped")

	h.Collect([]value.Value{value.FromObject(reachable)})

	assert.False(t, reachable.Marked, "Collect should clear the mark bit after sweeping")
	assert.NotSame(t, dropped, h.InternString("dropped"), "an unreachable interned string should be swept and re-allocated")
}

func TestCollectTracesArrayElements(t *testing.T) {
	h := gc.New()
	inner := h.InternString("inner")
	arr := h.Alloc(value.NewArray("string", []value.Value{value.FromObject(inner)}))

	h.Collect([]value.Value{value.FromObject(arr)})

	require.NotNil(t, arr)
	assert.Equal(t, "inner", inner.Str.Data)
	assert.Same(t, inner, h.InternString("inner"), "an element reachable only through the array should survive the sweep")
}

func TestInternStringDeduplicatesShortStrings(t *testing.T) {
	h := gc.New()
	a := h.InternString("hi")
	b := h.InternString("hi")
	assert.Same(t, a, b)
}

func TestPauseSuppressesShouldCollect(t *testing.T) {
	h := gc.New()
	h.Pause()
	for i := 0; i < 1000; i++ {
		h.Alloc(value.NewArray("i32", make([]value.Value, 1000)))
	}
	assert.False(t, h.ShouldCollect(), "a paused heap should never request a collection")
	h.Resume()
}
