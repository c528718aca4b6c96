// Package widget provides stateful example keys built on the runtime:
// counters, clocks, a stopwatch and a kitchen timer. They exercise the
// scheduler and the composition model under concurrent ticking and double
// as reference implementations for new key behaviors.
package widget

import (
	"image/color"
	"strconv"
	"sync"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// pressedBG darkens a key while it is held down.
var pressedBG = color.RGBA{64, 64, 64, 255}

// Counter counts short presses and resets on a long press. The count is
// also readable and writable from outside the worker, so it is guarded by
// a mutex; the kitchen timer adjusts counters this way.
type Counter struct {
	*app.LongPress

	BG   color.RGBA
	FG   color.RGBA
	Size int

	mu       sync.Mutex
	count    int
	pressing bool
}

// NewCounter builds a counter bound to the given keys.
func NewCounter(keys deck.KeySet) *Counter {
	c := &Counter{
		LongPress: app.NewLongPress(keys),
		Size:      24,
	}
	c.OnShortPress = c.shortPress
	c.OnLongPress = c.longPress
	return c
}

// Count returns the current count.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// SetCount overwrites the count without redrawing.
func (c *Counter) SetCount(value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = value
}

// Draw renders the count, with a darkened background while pressed.
func (c *Counter) Draw(ctx *app.Context) {
	c.mu.Lock()
	bg := c.BG
	if c.pressing {
		bg = pressedBG
	}
	count := c.count
	c.mu.Unlock()

	ctx.SetImage(c.Keys(), &icon.Text{
		Text: strconv.Itoa(count),
		BG:   bg,
		FG:   c.FG,
		Size: c.Size,
	})
}

func (c *Counter) OnDisplay(ctx *app.Context) error {
	c.Draw(ctx)
	return nil
}

func (c *Counter) OnRelease(ctx *app.Context, key int) (app.Nav, error) {
	nav, err := c.LongPress.OnRelease(ctx, key)

	c.mu.Lock()
	c.pressing = false
	c.mu.Unlock()
	c.Draw(ctx)

	return nav, err
}

func (c *Counter) shortPress(ctx *app.Context, _ int) error {
	c.mu.Lock()
	c.pressing = true
	c.count++
	c.mu.Unlock()

	c.Draw(ctx)
	return nil
}

func (c *Counter) longPress(ctx *app.Context, _ int) error {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()

	c.Draw(ctx)
	return nil
}
