package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/backlash/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: EventDispatch, Seq: 1, Action: ir.InitAction, Changed: true},
		{Type: EventDispatch, Seq: 2, Action: "takePhotoFromCamera", HasEffect: true},
		{Type: EventDispatch, Seq: 3, Action: "updatePhoto", Args: ir.Args(ir.IRObject{"uri": ir.IRString("file:///a.jpg")}), Changed: true, Depth: 1, ParentSeq: 2},
		{Type: EventEffect, Seq: 3, Action: "takePhotoFromCamera", DispatchSeq: 2, Outcome: ir.EffectOK},
		{Type: EventDispatch, Seq: 4, Action: "pickPhotoFromLibrary", HasEffect: true},
		{Type: EventEffect, Seq: 4, Action: "pickPhotoFromLibrary", DispatchSeq: 4, Outcome: ir.EffectError, Error: "effect of pickPhotoFromLibrary failed: library: denied"},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "updatePhoto"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{
		Action: "updatePhoto",
		Args:   []any{map[string]any{"uri": "file:///a.jpg"}},
	}))

	err := assertTraceContains(trace, Assertion{
		Action: "updatePhoto",
		Args:   []any{map[string]any{"uri": "file:///b.jpg"}},
	})
	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, AssertTraceContains, assertErr.Type)
	assert.Contains(t, err.Error(), `with args [{"uri":"file:///b.jpg"}]`)
	assert.Contains(t, err.Error(), "Full trace:")

	assert.Error(t, assertTraceContains(trace, Assertion{Action: "leaveFullScreen"}))
}

func TestAssertTraceContains_EffectsAreNotDispatches(t *testing.T) {
	trace := []TraceEvent{{Type: EventEffect, Seq: 1, Action: "takePhoto", Outcome: ir.EffectOK}}
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "takePhoto"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name    string
		actions []string
		wantErr string
	}{
		{"consecutive", []string{"takePhotoFromCamera", "updatePhoto"}, ""},
		{"gaps allowed", []string{ir.InitAction, "pickPhotoFromLibrary"}, ""},
		{"reversed", []string{"updatePhoto", "takePhotoFromCamera"}, "no takePhotoFromCamera after [updatePhoto]"},
		{"missing", []string{"enterFullScreen"}, "no enterFullScreen after []"},
		{"repeat needs two", []string{"updatePhoto", "updatePhoto"}, "no updatePhoto after [updatePhoto]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceOrder(trace, Assertion{Actions: tt.actions})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "takePhotoFromCamera", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "enterFullScreen", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "updatePhoto", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func TestAssertFinalState(t *testing.T) {
	state := ir.IRObject{
		"selectedResizeMode": ir.IRString("cover"),
		"isFullScreen":       ir.IRBool(false),
		"image":              ir.IRObject{"uri": ir.IRString("file:///a.jpg")},
		"filters": ir.IRArray{
			ir.IRObject{"id": ir.IRString("0"), "name": ir.IRString("blur"), "amount": ir.IRInt(30)},
		},
	}

	tests := []struct {
		name    string
		path    string
		equals  any
		wantErr string
	}{
		{"string", "selectedResizeMode", "cover", ""},
		{"bool", "isFullScreen", false, ""},
		{"object key order ignored", "image", map[string]any{"uri": "file:///a.jpg"}, ""},
		{"array element field", "filters.0.amount", 30, ""},
		{"wrong value", "selectedResizeMode", "center", `selectedResizeMode = "cover"`},
		{"type matters", "filters.0.id", 0, `filters.0.id = "0"`},
		{"missing path", "nextId", 1, "nextId not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(state, Assertion{Path: tt.path, Equals: tt.equals})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssertEffectErrors(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertEffectErrors(trace, Assertion{Count: 1}))
	assert.NoError(t, assertEffectErrors(trace, Assertion{Count: 1, Contains: "denied"}))

	err := assertEffectErrors(trace, Assertion{Count: 1, Contains: "timeout"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `an effect error containing "timeout"`)

	err = assertEffectErrors(trace, Assertion{Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failed effects")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.State = ir.IRObject{"isFullScreen": ir.IRBool(true)}
	result.Notifications = 1

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Action: "updatePhoto"},
		{Type: AssertNotificationCount, Count: 1},
		{Type: AssertFinalState, Path: "isFullScreen", Equals: true},
		{Type: AssertNotificationCount, Count: 3},
		{Type: "bogus"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "3 notifications")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}
