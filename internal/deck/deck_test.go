package deck

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/macrat/mydeck/internal/icon"
)

func TestKeySetOperations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  KeySet
		want []int
	}{
		{"union", Keys(0, 1).Union(Keys(1, 2)), []int{0, 1, 2}},
		{"diff", Keys(0, 1, 2).Diff(Keys(1)), []int{0, 2}},
		{"diff disjoint", Keys(3).Diff(Keys(4)), []int{3}},
		{"empty diff", Keys().Diff(Keys(1)), []int{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := test.got.Sorted(); !reflect.DeepEqual(got, test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestSetImageBroadcastsToSet(t *testing.T) {
	t.Parallel()

	emu := NewEmulator(3, 5)
	d := New(emu, nil)

	d.SetImage(Keys(0, 3, 7), &icon.Color{BG: color.RGBA{255, 0, 0, 255}})

	for _, key := range []int{0, 3, 7} {
		if emu.PushCount(key) != 1 {
			t.Errorf("key %d: got %d pushes, want 1", key, emu.PushCount(key))
		}
	}
	if emu.PushCount(1) != 0 {
		t.Errorf("key 1: got %d pushes, want 0", emu.PushCount(1))
	}
}

func TestSetImageIgnoresOutOfRangeKeys(t *testing.T) {
	t.Parallel()

	emu := NewEmulator(3, 5)
	d := New(emu, nil)

	d.SetImage(Keys(-1, 2, 15, 99), &icon.Color{})

	if emu.PushCount(2) != 1 {
		t.Errorf("key 2: got %d pushes, want 1", emu.PushCount(2))
	}
	for _, key := range []int{-1, 15, 99} {
		if emu.PushCount(key) != 0 {
			t.Errorf("key %d: got %d pushes, want 0", key, emu.PushCount(key))
		}
	}
}

func TestOnKeyReceivesEdges(t *testing.T) {
	t.Parallel()

	emu := NewEmulator(3, 5)
	d := New(emu, nil)

	type edge struct {
		key     int
		pressed bool
	}
	var edges []edge
	d.OnKey(func(key int, pressed bool) {
		edges = append(edges, edge{key, pressed})
	})

	emu.Press(4)
	emu.Release(4)
	emu.Tap(9)

	want := []edge{{4, true}, {4, false}, {9, true}, {9, false}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("got %v, want %v", edges, want)
	}
}

func TestOnKeyReplacesPreviousCallback(t *testing.T) {
	t.Parallel()

	emu := NewEmulator(2, 3)
	d := New(emu, nil)

	first, second := 0, 0
	d.OnKey(func(int, bool) { first++ })
	d.OnKey(func(int, bool) { second++ })

	emu.Tap(0)

	if first != 0 {
		t.Errorf("replaced callback invoked %d times, want 0", first)
	}
	if second != 2 {
		t.Errorf("active callback invoked %d times, want 2", second)
	}
}

func TestKeyLayout(t *testing.T) {
	t.Parallel()

	emu := NewEmulator(3, 5)
	d := New(emu, nil)

	if rows, cols := d.KeyLayout(); rows != 3 || cols != 5 {
		t.Errorf("got %dx%d, want 3x5", rows, cols)
	}
	if got := d.KeyCount(); got != 15 {
		t.Errorf("key count: got %d, want 15", got)
	}
}
