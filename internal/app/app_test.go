package app

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
	"github.com/macrat/mydeck/internal/task"
)

func newTestContext() (*Context, *deck.Emulator) {
	emu := deck.NewEmulator(3, 5)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := deck.New(emu, logger)
	return NewContext(d, task.NewRunner(), logger), emu
}

// flush blocks until every task queued before it has run.
func flush(ctx *Context) {
	done := make(chan struct{})
	ctx.Now(func() { close(done) })
	<-done
}

func isBlack(img image.Image) bool {
	got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	return got == color.RGBA{0, 0, 0, 255}
}

// recorder counts capability calls for composition tests.
type recorder struct {
	Base
	displays int
	hides    int
	presses  []int
	releases []int

	displayErr error
	nav        Nav
}

func newRecorder(keys ...int) *recorder {
	return &recorder{Base: NewBase(deck.Keys(keys...))}
}

func (r *recorder) OnDisplay(*Context) error {
	r.displays++
	return r.displayErr
}

func (r *recorder) OnHide(*Context) error {
	r.hides++
	return nil
}

func (r *recorder) OnPress(_ *Context, key int) error {
	r.presses = append(r.presses, key)
	return nil
}

func (r *recorder) OnRelease(_ *Context, key int) (Nav, error) {
	r.releases = append(r.releases, key)
	return r.nav, nil
}

func TestStaticDrawsIconOnDisplay(t *testing.T) {
	t.Parallel()

	ctx, emu := newTestContext()
	s := NewStatic(deck.Keys(2, 4), &icon.Color{BG: color.RGBA{255, 0, 0, 255}})

	if err := s.OnDisplay(ctx); err != nil {
		t.Fatalf("OnDisplay: %v", err)
	}
	if emu.PushCount(2) != 1 || emu.PushCount(4) != 1 {
		t.Errorf("pushes: got %d/%d, want 1/1", emu.PushCount(2), emu.PushCount(4))
	}
	if emu.PushCount(3) != 0 {
		t.Error("unowned key was painted")
	}
}

func TestGroupRoutesToOwningChild(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	left := newRecorder(0, 1)
	right := newRecorder(2, 3)
	g := NewGroup(left, right)

	if got := g.Keys().Sorted(); len(got) != 4 {
		t.Fatalf("group keys: got %v", got)
	}

	if err := g.OnPress(ctx, 2); err != nil {
		t.Fatalf("OnPress: %v", err)
	}
	if _, err := g.OnRelease(ctx, 2); err != nil {
		t.Fatalf("OnRelease: %v", err)
	}

	if len(left.presses) != 0 || len(left.releases) != 0 {
		t.Errorf("non-owning child received events: %v/%v", left.presses, left.releases)
	}
	if len(right.presses) != 1 || right.presses[0] != 2 {
		t.Errorf("owning child presses: got %v, want [2]", right.presses)
	}
	if len(right.releases) != 1 || right.releases[0] != 2 {
		t.Errorf("owning child releases: got %v, want [2]", right.releases)
	}
}

func TestGroupIgnoresUnownedKeys(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	child := newRecorder(0)
	g := NewGroup(child)

	if err := g.OnPress(ctx, 9); err != nil {
		t.Fatalf("OnPress: %v", err)
	}
	nav, err := g.OnRelease(ctx, 9)
	if err != nil {
		t.Fatalf("OnRelease: %v", err)
	}
	if _, ok := nav.SwitchTarget(); ok {
		t.Error("unowned release produced a navigation outcome")
	}
	if len(child.presses) != 0 {
		t.Errorf("child received events for unowned key: %v", child.presses)
	}
}

func TestGroupFanOutAttemptsAllChildren(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	failing := newRecorder(0)
	failing.displayErr = errors.New("boom")
	healthy := newRecorder(1)
	g := NewGroup(failing, healthy)

	err := g.OnDisplay(ctx)
	if err == nil {
		t.Error("child failure was swallowed by the fan-out")
	}
	if healthy.displays != 1 {
		t.Errorf("healthy sibling displays: got %d, want 1", healthy.displays)
	}

	if err := g.OnHide(ctx); err != nil {
		t.Fatalf("OnHide: %v", err)
	}
	if failing.hides != 1 || healthy.hides != 1 {
		t.Errorf("hides: got %d/%d, want 1/1", failing.hides, healthy.hides)
	}
}

func TestGroupPassesNavigationThrough(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	g := NewGroup(NewNavKey(deck.Keys(0), "SETTINGS", nil))

	nav, err := g.OnRelease(ctx, 0)
	if err != nil {
		t.Fatalf("OnRelease: %v", err)
	}
	if page, ok := nav.SwitchTarget(); !ok || page != "SETTINGS" {
		t.Errorf("got %q/%v, want SETTINGS/true", page, ok)
	}
}

func TestNavKeyAlwaysRequestsSwitch(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()
	n := NewNavKey(deck.Keys(3), "AC", nil)

	for i := 0; i < 3; i++ {
		nav, err := n.OnRelease(ctx, 3)
		if err != nil {
			t.Fatalf("OnRelease: %v", err)
		}
		if page, ok := nav.SwitchTarget(); !ok || page != "AC" {
			t.Fatalf("release %d: got %q/%v, want AC/true", i, page, ok)
		}
	}
}
