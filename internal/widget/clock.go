package widget

import (
	"sync"
	"time"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// Clock shows the current time, redrawing once a second while visible.
// The redraw loop reschedules itself and stops at the first wake after the
// showing flag is cleared by OnHide.
type Clock struct {
	app.Base

	// Format is a time layout string; empty means "15:04:05".
	Format string
	Size   int

	mu       sync.Mutex
	showing  bool
	lastText string
}

// NewClock builds a clock bound to the given keys.
func NewClock(keys deck.KeySet) *Clock {
	return &Clock{Base: app.NewBase(keys)}
}

func (c *Clock) format() string {
	if c.Format != "" {
		return c.Format
	}
	return "15:04:05"
}

// draw pushes the current time, skipping the push when the rendered text
// has not changed since the last one.
func (c *Clock) draw(ctx *app.Context, force bool) {
	text := time.Now().Format(c.format())

	c.mu.Lock()
	changed := text != c.lastText
	c.lastText = text
	c.mu.Unlock()

	if changed || force {
		size := c.Size
		if size == 0 {
			size = 16
		}
		ctx.SetImage(c.Keys(), &icon.Text{Text: text, Size: size})
	}
}

func (c *Clock) OnDisplay(ctx *app.Context) error {
	c.mu.Lock()
	c.showing = true
	c.mu.Unlock()

	c.draw(ctx, true)
	ctx.After(time.Second, func() { c.tick(ctx) })
	return nil
}

func (c *Clock) OnHide(*app.Context) error {
	c.mu.Lock()
	c.showing = false
	c.mu.Unlock()
	return nil
}

func (c *Clock) tick(ctx *app.Context) {
	c.mu.Lock()
	showing := c.showing
	c.mu.Unlock()
	if !showing {
		return
	}

	c.draw(ctx, false)
	ctx.After(time.Second, func() { c.tick(ctx) })
}
