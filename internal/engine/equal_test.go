package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/backlash/internal/ir"
)

type listState struct {
	items []string
}

func TestSameState(t *testing.T) {
	p := &listState{}
	m := map[string]int{"a": 1}
	s := []int{1, 2, 3}

	assert.True(t, sameState(1, 1))
	assert.False(t, sameState(1, 2))
	assert.True(t, sameState("cover", "cover"))
	assert.True(t, sameState(counterState{N: 1}, counterState{N: 1}))

	assert.True(t, sameState(p, p))
	assert.False(t, sameState(p, &listState{}), "pointers compare by identity")

	assert.True(t, sameState(m, m))
	assert.False(t, sameState(m, map[string]int{"a": 1}))

	assert.True(t, sameState(s, s))
	assert.False(t, sameState(s, s[:2]))
	assert.False(t, sameState(s, []int{1, 2, 3}))

	items := []string{"a"}
	assert.True(t, sameState(listState{}, listState{}))
	assert.True(t, sameState(listState{items: items}, listState{items: items}), "structs compare field by field")
	assert.False(t, sameState(listState{items: items}, listState{items: []string{"a"}}))
	assert.True(t, sameState([2][]int{s, s}, [2][]int{s, s}), "arrays compare element by element")
	assert.False(t, sameState([2][]int{s, s}, [2][]int{s, nil}))
	assert.False(t, sameState(struct{ f func() }{func() {}}, struct{ f func() }{func() {}}))

	var a, b any = p, p
	assert.True(t, sameState(a, b))
	assert.False(t, sameState[any](p, "x"))
	assert.True(t, sameState[any](nil, nil))
	assert.False(t, sameState[any](nil, p))

	var f func()
	assert.True(t, sameState(f, f))
	assert.False(t, sameState(func() {}, func() {}))
}

type appendItem struct{}

func (appendItem) ActionName() string     { return "appendItem" }
func (appendItem) ActionArgs() ir.IRArray { return ir.Args() }

func TestEngine_ValueStateNoOpSkipsNotification(t *testing.T) {
	update := func(s listState, a Action) Command[listState, struct{}] {
		switch a.(type) {
		case appendItem:
			return Pure[listState, struct{}](listState{items: append(slices.Clone(s.items), "x")})
		default:
			return Pure[listState, struct{}](s)
		}
	}
	e := New(Pure[listState, struct{}](listState{}), update, struct{}{}, WithLogger(discardLogger()))
	t.Cleanup(e.Close)

	notified := 0
	e.Subscribe(func(listState) { notified++ })

	e.Dispatch(appendItem{})
	e.Dispatch(incr{})
	e.Dispatch(incr{})

	assert.Equal(t, 1, notified, "returning the same value state is a no-op")
	assert.Equal(t, []string{"x"}, e.State().items)
}
