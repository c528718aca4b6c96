package app

import (
	"log/slog"
	"time"

	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
	"github.com/macrat/mydeck/internal/task"
)

// Context is the façade application code uses to push images and schedule
// work. It bridges device key events into the runner's worker; nothing
// outside the worker ever calls application capabilities directly.
type Context struct {
	deck   *deck.Deck
	runner *task.Runner
	logger *slog.Logger
}

// NewContext wires a deck to a runner. A nil runner gets a fresh one, a nil
// logger falls back to slog.Default.
func NewContext(d *deck.Deck, runner *task.Runner, logger *slog.Logger) *Context {
	if runner == nil {
		runner = task.NewRunner()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{deck: d, runner: runner, logger: logger}
}

// SetImage renders the icon onto every key in the set.
func (c *Context) SetImage(keys deck.KeySet, ic icon.Icon) {
	c.deck.SetImage(keys, ic)
}

// SetKeyImage renders the icon onto a single key.
func (c *Context) SetKeyImage(key int, ic icon.Icon) {
	c.deck.SetKeyImage(key, ic)
}

// Deck exposes the underlying device for layout queries.
func (c *Context) Deck() *deck.Deck { return c.deck }

// Logger returns the logger applications should report failures with.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Now schedules a task for the next worker turn.
func (c *Context) Now(t task.Task) { c.runner.Now(t) }

// After schedules a task no earlier than delay from now.
func (c *Context) After(delay time.Duration, t task.Task) { c.runner.After(delay, t) }

// At schedules a task no earlier than the given wall-clock time.
func (c *Context) At(when time.Time, t task.Task) { c.runner.At(when, t) }

// Execute makes app the top of the topology: key events are enqueued onto
// the worker and dispatched to it, the first frame is drawn synchronously
// before any event can race it, then the worker starts.
//
// Errors and unhandled navigation outcomes reaching this boundary are
// logged and swallowed; one misbehaving key must not take down the loop.
func (c *Context) Execute(app Application) {
	c.deck.OnKey(func(key int, pressed bool) {
		if pressed {
			c.runner.Now(func() { c.dispatchPress(app, key) })
		} else {
			c.runner.Now(func() { c.dispatchRelease(app, key) })
		}
	})

	if err := app.OnDisplay(c); err != nil {
		c.logger.Error("initial display failed", "error", err)
	}

	c.runner.Start()
}

// Stop halts the worker. In-flight delayed tasks are abandoned.
func (c *Context) Stop() {
	c.runner.Stop()
}

func (c *Context) dispatchPress(app Application, key int) {
	defer c.recoverHandler("press", key)
	if err := app.OnPress(c, key); err != nil {
		c.logger.Error("press handler failed", "key", key, "error", err)
	}
}

func (c *Context) dispatchRelease(app Application, key int) {
	defer c.recoverHandler("release", key)
	nav, err := app.OnRelease(c, key)
	if err != nil {
		c.logger.Error("release handler failed", "key", key, "error", err)
		return
	}
	if page, ok := nav.SwitchTarget(); ok {
		c.logger.Error("navigation request reached the top level unhandled", "key", key, "page", page)
	}
}

func (c *Context) recoverHandler(kind string, key int) {
	if r := recover(); r != nil {
		c.logger.Error("handler panicked", "kind", kind, "key", key, "panic", r)
	}
}
