package remo

import (
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/task"
)

func newTestContext(t *testing.T) (*app.Context, *deck.Emulator) {
	t.Helper()

	emu := deck.NewEmulator(3, 5)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := app.NewContext(deck.New(emu, logger), task.NewRunner(), logger)
	t.Cleanup(ctx.Stop)
	return ctx, emu
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func lastSetting(f *fakeRemo) url.Values {
	posted := f.settingsPosted()
	if len(posted) == 0 {
		return nil
	}
	return posted[len(posted)-1]
}

func TestModeKeySetSwitchesMode(t *testing.T) {
	t.Parallel()

	f, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	set := NewModeKeySet(client, "ac1", map[int]string{0: "cool", 1: "warm", 2: ""})
	ctx.Execute(set)

	waitFor(t, "initial state load", func() bool {
		set.mu.Lock()
		defer set.mu.Unlock()
		return set.loaded
	})

	emu.Tap(1)
	waitFor(t, "mode change request", func() bool {
		return len(f.settingsPosted()) == 1
	})

	got := lastSetting(f)
	if got.Get("operation_mode") != "warm" {
		t.Errorf("posted mode = %q, want warm", got.Get("operation_mode"))
	}
	if got.Get("button") != "power-on" {
		t.Errorf("posted button = %q, want power-on", got.Get("button"))
	}

	emu.Tap(2)
	waitFor(t, "power off request", func() bool {
		return len(f.settingsPosted()) == 2
	})
	if got := lastSetting(f); got.Get("button") != "power-off" {
		t.Errorf("posted button = %q, want power-off", got.Get("button"))
	}
}

func TestTempKeySetStepsAndSettles(t *testing.T) {
	t.Parallel()

	f, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	set := NewTempKeySet(client, "ac1", 3, 8, 13)
	ctx.Execute(set)

	waitFor(t, "initial state load", func() bool {
		set.mu.Lock()
		defer set.mu.Unlock()
		return set.loaded && set.target == 2 // "26"
	})

	emu.Tap(3)
	waitFor(t, "temperature request", func() bool {
		return len(f.settingsPosted()) == 1
	})
	if got := lastSetting(f); got.Get("temperature") != "27" {
		t.Errorf("posted temperature = %q, want 27", got.Get("temperature"))
	}
}

func TestTempKeySetHoldRepeats(t *testing.T) {
	t.Parallel()

	f, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	set := NewTempKeySet(client, "ac1", 3, 8, 13)
	ctx.Execute(set)

	waitFor(t, "initial state load", func() bool {
		set.mu.Lock()
		defer set.mu.Unlock()
		return set.loaded && set.target == 2
	})

	// Hold the down key past the repeat delay plus one repeat interval:
	// one step on press, then repeats until the range bottoms out at "24".
	emu.Press(13)
	time.Sleep(repeatDelay + repeatInterval + 100*time.Millisecond)
	emu.Release(13)

	waitFor(t, "temperature request", func() bool {
		return len(f.settingsPosted()) == 1
	})
	if got := lastSetting(f); got.Get("temperature") != "24" {
		t.Errorf("posted temperature = %q, want 24", got.Get("temperature"))
	}
}

func TestTempKeySetQuickTapStepsOnce(t *testing.T) {
	t.Parallel()

	f, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	set := NewTempKeySet(client, "ac1", 3, 8, 13)
	ctx.Execute(set)

	waitFor(t, "initial state load", func() bool {
		set.mu.Lock()
		defer set.mu.Unlock()
		return set.loaded && set.target == 2
	})

	emu.Tap(13)
	time.Sleep(repeatDelay + 100*time.Millisecond)

	waitFor(t, "temperature request", func() bool {
		return len(f.settingsPosted()) >= 1
	})
	posted := f.settingsPosted()
	if len(posted) != 1 {
		t.Fatalf("got %d setting requests, want 1", len(posted))
	}
	if got := posted[0].Get("temperature"); got != "25" {
		t.Errorf("posted temperature = %q, want 25", got)
	}
}

func TestVolumeKeyCycles(t *testing.T) {
	t.Parallel()

	f, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	key := NewVolumeKey(client, "ac1", 12)
	ctx.Execute(key)

	waitFor(t, "initial state load", func() bool {
		key.mu.Lock()
		defer key.mu.Unlock()
		return key.loaded && key.target == 1 // "2"
	})

	emu.Tap(12)
	waitFor(t, "volume request", func() bool {
		return len(f.settingsPosted()) == 1
	})
	if got := lastSetting(f); got.Get("air_volume") != "3" {
		t.Errorf("posted volume = %q, want 3", got.Get("air_volume"))
	}
}

func TestRoomTempKeyShowsTemperature(t *testing.T) {
	t.Parallel()

	_, client := newFakeRemo(t)
	ctx, emu := newTestContext(t)

	key := NewRoomTempKey(client, "dev1", 11)
	ctx.Execute(key)

	waitFor(t, "temperature display", func() bool {
		key.mu.Lock()
		defer key.mu.Unlock()
		return key.loaded
	})
	waitFor(t, "redraw with the fetched value", func() bool {
		return emu.PushCount(11) >= 2
	})
}
