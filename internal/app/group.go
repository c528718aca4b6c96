package app

import (
	"golang.org/x/sync/errgroup"

	"github.com/macrat/mydeck/internal/deck"
)

// Group composes child applications side by side. It owns the union of the
// children's key sets; sibling key sets must be disjoint, since press and
// release dispatch stops at the first owning child.
type Group struct {
	apps []Application
	keys deck.KeySet
}

// NewGroup builds a group over the given children.
func NewGroup(apps ...Application) *Group {
	keys := deck.KeySet{}
	for _, a := range apps {
		keys = keys.Union(a.Keys())
	}
	return &Group{apps: apps, keys: keys}
}

func (g *Group) Keys() deck.KeySet { return g.keys }

// OnDisplay fans out to every child and joins. All children are attempted
// even when one fails; the first failure is returned.
func (g *Group) OnDisplay(ctx *Context) error {
	return g.fanOut(func(a Application) error { return a.OnDisplay(ctx) })
}

// OnHide fans out to every child and joins, like OnDisplay.
func (g *Group) OnHide(ctx *Context) error {
	return g.fanOut(func(a Application) error { return a.OnHide(ctx) })
}

func (g *Group) fanOut(call func(Application) error) error {
	var eg errgroup.Group
	for _, a := range g.apps {
		a := a
		eg.Go(func() error { return call(a) })
	}
	return eg.Wait()
}

// OnPress routes to the single child owning the key; unowned keys are a
// no-op.
func (g *Group) OnPress(ctx *Context, key int) error {
	if a := g.owner(key); a != nil {
		return a.OnPress(ctx, key)
	}
	return nil
}

// OnRelease routes like OnPress and passes the child's navigation outcome
// through untouched.
func (g *Group) OnRelease(ctx *Context, key int) (Nav, error) {
	if a := g.owner(key); a != nil {
		return a.OnRelease(ctx, key)
	}
	return Nav{}, nil
}

func (g *Group) owner(key int) Application {
	for _, a := range g.apps {
		if a.Keys().Has(key) {
			return a
		}
	}
	return nil
}
