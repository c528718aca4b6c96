// Package app implements the application runtime: the Application
// capability contract, the Context façade, and the composition model that
// lets static keys, groups of keys and exclusive pages share one device.
//
// Every capability call is dispatched on the single task.Runner worker, so
// application state touched only from handlers and scheduled tasks needs no
// locking. State that is also read from other goroutines (public accessors,
// pollers, group fan-out) must be guarded by its owner.
package app

import (
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// Application is the polymorphic unit of key-bound behavior. Instances are
// constructed once at topology-build time and live for the whole process.
//
// OnDisplay is invoked when the application becomes visible; it must draw
// its keys and may start periodic work. OnHide is invoked when it becomes
// invisible and must stop that work; it is idempotent. OnPress and
// OnRelease receive a key the application owns.
type Application interface {
	Keys() deck.KeySet
	OnDisplay(ctx *Context) error
	OnHide(ctx *Context) error
	OnPress(ctx *Context, key int) error
	OnRelease(ctx *Context, key int) (Nav, error)
}

// Nav is the outcome of a release handler. The zero value means the event
// was handled locally; SwitchTo requests navigation to a named page. Any
// composite that is not the owning Pager must pass it through unchanged, so
// a leaf can request navigation without holding a pager reference.
type Nav struct {
	page string
}

// SwitchTo builds a navigation outcome targeting the named page.
func SwitchTo(page string) Nav {
	return Nav{page: page}
}

// SwitchTarget returns the requested page name, and whether a switch was
// requested at all.
func (n Nav) SwitchTarget() (string, bool) {
	return n.page, n.page != ""
}

// Base supplies the key set and no-op hide/press/release capabilities.
// Embedders provide OnDisplay themselves.
type Base struct {
	keys deck.KeySet
}

// NewBase builds a Base owning the given keys.
func NewBase(keys deck.KeySet) Base {
	return Base{keys: keys}
}

func (b Base) Keys() deck.KeySet { return b.keys }

func (Base) OnHide(*Context) error { return nil }

func (Base) OnPress(*Context, int) error { return nil }

func (Base) OnRelease(*Context, int) (Nav, error) { return Nav{}, nil }

// Static shows a fixed icon on its keys and does nothing else.
type Static struct {
	Base
	icon icon.Icon
}

// NewStatic builds a static key. A nil icon means a black key.
func NewStatic(keys deck.KeySet, ic icon.Icon) *Static {
	if ic == nil {
		ic = &icon.Color{}
	}
	return &Static{Base: NewBase(keys), icon: ic}
}

func (s *Static) OnDisplay(ctx *Context) error {
	ctx.SetImage(s.Keys(), s.icon)
	return nil
}

// NavKey is a pure navigation leaf: it draws its icon and every release
// requests a switch to its target page, regardless of any other state.
type NavKey struct {
	*Static
	page string
}

// NewNavKey builds a navigation key for the named page. A nil icon defaults
// to the page name as text.
func NewNavKey(keys deck.KeySet, page string, ic icon.Icon) *NavKey {
	if ic == nil {
		ic = &icon.Text{Text: page}
	}
	return &NavKey{Static: NewStatic(keys, ic), page: page}
}

// Page returns the navigation target.
func (n *NavKey) Page() string { return n.page }

func (n *NavKey) OnRelease(*Context, int) (Nav, error) {
	return SwitchTo(n.page), nil
}
