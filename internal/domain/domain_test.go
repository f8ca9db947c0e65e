package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/backlash/internal/ir"
)

func TestParseResizeMode(t *testing.T) {
	for _, m := range ResizeModes() {
		got, err := ParseResizeMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseResizeMode("fill")
	assert.EqualError(t, err, `unknown resize mode "fill" (want one of center, contain, cover, stretch, repeat)`)
	assert.False(t, ResizeMode("").Valid())
}

func TestImage(t *testing.T) {
	static := StaticImage(3)
	photo := PhotoImage("file:///x.jpg")

	assert.False(t, static.IsPhoto())
	asset, ok := static.Static()
	assert.True(t, ok)
	assert.Equal(t, int64(3), asset)

	uri, ok := photo.URI()
	assert.True(t, ok)
	assert.Equal(t, "file:///x.jpg", uri)

	assert.Equal(t, ir.IRObject{"static": ir.IRInt(3)}, static.IR())
	assert.Equal(t, ir.IRObject{"uri": ir.IRString("file:///x.jpg")}, photo.IR())

	assert.True(t, PhotoImage("a") == PhotoImage("a"))
	assert.False(t, StaticImage(0) == PhotoImage(""))
	assert.Equal(t, "static:3", static.String())
}

func TestParseImage(t *testing.T) {
	tests := []struct {
		name    string
		input   ir.IRObject
		want    Image
		wantErr string
	}{
		{"static", ir.IRObject{"static": ir.IRInt(1)}, StaticImage(1), ""},
		{"uri", ir.IRObject{"uri": ir.IRString("x")}, PhotoImage("x"), ""},
		{"both", ir.IRObject{"uri": ir.IRString("x"), "static": ir.IRInt(1)}, Image{}, "exactly one"},
		{"empty", ir.IRObject{}, Image{}, "exactly one"},
		{"empty uri", ir.IRObject{"uri": ir.IRString("")}, Image{}, "empty uri"},
		{"wrong type", ir.IRObject{"static": ir.IRString("1")}, Image{}, "expected int"},
		{"unknown key", ir.IRObject{"path": ir.IRString("x")}, Image{}, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImage(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePhoto(ir.IRObject{"static": ir.IRInt(1)})
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(ir.IRObject{"name": ir.IRString("blur"), "amount": ir.IRInt(40)})
	require.NoError(t, err)
	assert.Equal(t, Filter{Name: "blur", Amount: 40}, f)

	_, err = ParseFilter(ir.IRObject{"name": ir.IRString("blur"), "amount": ir.IRInt(140)})
	assert.EqualError(t, err, "filter blur: amount 140 outside 0..100")

	_, err = ParseFilter(ir.IRObject{"name": ir.IRString(""), "amount": ir.IRInt(1)})
	assert.EqualError(t, err, "filter: empty name")

	_, err = ParseFilter(ir.IRObject{"name": ir.IRString("a"), "amount": ir.IRInt(1), "x": ir.IRInt(1)})
	assert.Error(t, err)
}

func TestFilterIDs(t *testing.T) {
	assert.Equal(t, FilterID("12"), NewFilterID(12))

	id, err := ParseFilterID("7")
	require.NoError(t, err)
	assert.Equal(t, FilterID("7"), id)

	_, err = ParseFilterID("seven")
	assert.Error(t, err)

	k := KeyedFilter{Filter: Filter{Name: "sepia", Amount: 10}, ID: "2"}
	assert.Equal(t, ir.IRObject{
		"id":     ir.IRString("2"),
		"name":   ir.IRString("sepia"),
		"amount": ir.IRInt(10),
	}, k.IR())
}

func TestSwap(t *testing.T) {
	s := []string{"0", "1", "2"}

	swapped := Swap(s, 0, 1)
	assert.Equal(t, []string{"1", "0", "2"}, swapped)
	assert.Equal(t, []string{"0", "1", "2"}, s, "input untouched")
	assert.False(t, Same(s, swapped))

	for _, idx := range [][2]int{{-1, 0}, {2, 3}, {0, 5}} {
		out := Swap(s, idx[0], idx[1])
		assert.True(t, Same(s, out), "out of range %v must return the same slice", idx)
	}
}

func TestSame(t *testing.T) {
	s := []int{1, 2}
	assert.True(t, Same(s, s))
	assert.False(t, Same(s, s[:1]))
	assert.False(t, Same(s, []int{1, 2}))
	assert.True(t, Same([]int(nil), []int{}))
}

func TestIndexOf(t *testing.T) {
	filters := []KeyedFilter{{ID: "0"}, {ID: "4"}}
	assert.Equal(t, 1, IndexOf(filters, "4"))
	assert.Equal(t, -1, IndexOf(filters, "9"))
}
