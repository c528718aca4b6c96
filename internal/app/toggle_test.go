package app

import (
	"testing"

	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

func testIcons(n int) []icon.Icon {
	icons := make([]icon.Icon, n)
	for i := range icons {
		icons[i] = &icon.Color{}
	}
	return icons
}

func TestToggleCyclesModuloStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		states  int
		presses int
		want    int
	}{
		{"no press", 3, 0, 0},
		{"single press", 3, 1, 1},
		{"full cycle", 3, 3, 0},
		{"wraps around", 3, 7, 1},
		{"two states", 2, 5, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := newTestContext()
			toggle := NewToggle(deck.Keys(0), testIcons(test.states))

			for i := 0; i < test.presses; i++ {
				if err := toggle.OnPress(ctx, 0); err != nil {
					t.Fatalf("OnPress %d: %v", i, err)
				}
			}
			if got := toggle.State(); got != test.want {
				t.Errorf("state: got %d, want %d", got, test.want)
			}
		})
	}
}

func TestToggleNotifiesSwitchHook(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	toggle := NewToggle(deck.Keys(0), testIcons(3))

	var seen []int
	toggle.OnSwitch = func(_ *Context, _ int, state int) error {
		seen = append(seen, state)
		return nil
	}

	for i := 0; i < 4; i++ {
		if err := toggle.OnPress(ctx, 0); err != nil {
			t.Fatalf("OnPress %d: %v", i, err)
		}
	}

	want := []int{1, 2, 0, 1}
	if len(seen) != len(want) {
		t.Fatalf("hook calls: got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("hook call %d: got %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestToggleRedrawsEachState(t *testing.T) {
	t.Parallel()

	ctx, emu := newTestContext()
	toggle := NewToggle(deck.Keys(7), testIcons(2))

	if err := toggle.OnDisplay(ctx); err != nil {
		t.Fatalf("OnDisplay: %v", err)
	}
	toggle.OnPress(ctx, 7)
	toggle.OnPress(ctx, 7)

	if got := emu.PushCount(7); got != 3 {
		t.Errorf("pushes: got %d, want 3", got)
	}
}
