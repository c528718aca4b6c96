package app

import (
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// SwitchHook is notified with the new state index after a toggle advances.
type SwitchHook func(ctx *Context, key int, state int) error

// Toggle cycles through a fixed ordered list of icons, one state per press.
// State is touched on the worker only.
type Toggle struct {
	Base

	// OnSwitch, when set, runs after every press with the new state.
	OnSwitch SwitchHook

	icons []icon.Icon
	state int
}

// NewToggle builds a toggle over the given states. At least one icon is
// required.
func NewToggle(keys deck.KeySet, icons []icon.Icon) *Toggle {
	return &Toggle{Base: NewBase(keys), icons: icons}
}

// State returns the current state index.
func (t *Toggle) State() int { return t.state }

// Draw renders the current state onto the toggle's keys.
func (t *Toggle) Draw(ctx *Context) {
	ctx.SetImage(t.Keys(), t.icons[t.state])
}

func (t *Toggle) OnDisplay(ctx *Context) error {
	t.Draw(ctx)
	return nil
}

// OnPress advances the state modulo the number of icons, redraws, then
// notifies the switch hook.
func (t *Toggle) OnPress(ctx *Context, key int) error {
	t.state = (t.state + 1) % len(t.icons)
	t.Draw(ctx)

	if t.OnSwitch != nil {
		return t.OnSwitch(ctx, key, t.state)
	}
	return nil
}
