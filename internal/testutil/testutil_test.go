package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/backlash/internal/ir"
)

func TestFixedSessionGenerator(t *testing.T) {
	assert.Equal(t, "s-1", NewFixedSessionGenerator("s-1").Generate())
	assert.Equal(t, "s-1", NewFixedSessionGenerator("s-1").Generate())
	assert.Equal(t, DefaultSession, NewFixedSessionGenerator("").Generate())
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder[int]()

	_, ok := rec.Last()
	assert.False(t, ok)

	rec.Observe(1)
	rec.Observe(2)

	assert.Equal(t, []int{1, 2}, rec.States())
	assert.Equal(t, 2, rec.Len())
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last)

	states := rec.States()
	states[0] = 99
	assert.Equal(t, []int{1, 2}, rec.States(), "States must return a copy")
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	require.NoError(t, j.WriteSession(ctx, ir.Session{ID: "s"}))
	require.NoError(t, j.WriteDispatch(ctx, ir.DispatchRecord{ID: "d1", Action: "@init"}))
	require.NoError(t, j.WriteDispatch(ctx, ir.DispatchRecord{ID: "d2", Action: "enterFullScreen"}))
	require.NoError(t, j.WriteEffect(ctx, ir.EffectRecord{DispatchID: "d2", Outcome: ir.EffectOK}))

	assert.Len(t, j.Sessions(), 1)
	assert.Equal(t, []string{"@init", "enterFullScreen"}, j.Actions())
	assert.Len(t, j.Dispatches(), 2)
	assert.Equal(t, "d2", j.Effects()[0].DispatchID)

	j.Err = errors.New("disk full")
	assert.EqualError(t, j.WriteEffect(ctx, ir.EffectRecord{}), "disk full")
	assert.Len(t, j.Effects(), 2, "failed writes are still recorded")
}
