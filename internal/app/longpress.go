package app

import (
	"time"

	"github.com/macrat/mydeck/internal/deck"
)

// DefaultLongPressDelay separates a short press from a long one.
const DefaultLongPressDelay = 500 * time.Millisecond

// Hook is an optional capability handler on an interaction primitive.
type Hook func(ctx *Context, key int) error

// LongPress distinguishes short and long presses without any timer
// cancellation: each press records a timestamp and schedules a delayed
// check, and the check fires the long-press hook only when the timestamp is
// still the one it captured. A re-press or release in between makes the
// stale check a no-op.
//
// LongPress has no display capability of its own; embedders provide
// OnDisplay. All state is touched on the worker only.
type LongPress struct {
	Base

	// Delay is the long-press threshold; zero means DefaultLongPressDelay.
	Delay time.Duration

	OnShortPress   Hook
	OnLongPress    Hook
	OnShortRelease Hook
	OnLongRelease  Hook

	pressedAt time.Time
}

// NewLongPress builds the primitive for the given keys.
func NewLongPress(keys deck.KeySet) *LongPress {
	return &LongPress{Base: NewBase(keys)}
}

func (l *LongPress) delay() time.Duration {
	if l.Delay > 0 {
		return l.Delay
	}
	return DefaultLongPressDelay
}

// OnPress fires the short-press hook immediately and schedules the
// long-press check.
func (l *LongPress) OnPress(ctx *Context, key int) error {
	at := time.Now()
	l.pressedAt = at

	if l.OnShortPress != nil {
		if err := l.OnShortPress(ctx, key); err != nil {
			return err
		}
	}

	ctx.After(l.delay(), func() {
		if !l.pressedAt.Equal(at) {
			return
		}
		if l.OnLongPress == nil {
			return
		}
		if err := l.OnLongPress(ctx, key); err != nil {
			ctx.logger.Error("long press hook failed", "key", key, "error", err)
		}
	})

	return nil
}

// OnRelease picks the short or long release hook by comparing the held
// duration against the delay, and invalidates any pending long-press check.
func (l *LongPress) OnRelease(ctx *Context, key int) (Nav, error) {
	pressedAt := l.pressedAt
	l.pressedAt = time.Time{}

	var hook Hook
	if time.Since(pressedAt) >= l.delay() {
		hook = l.OnLongRelease
	} else {
		hook = l.OnShortRelease
	}
	if hook == nil {
		return Nav{}, nil
	}
	return Nav{}, hook(ctx, key)
}
