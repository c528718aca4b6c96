package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

var (
	// ErrDuplicatePage is returned when registering a page name that
	// already exists. This is a topology-build-time programmer error.
	ErrDuplicatePage = errors.New("page is already registered")

	// ErrUnknownPage is returned when a pager is built around or switched
	// to a page name that was never registered.
	ErrUnknownPage = errors.New("no such page")
)

// Pager composes named pages, exactly one of which is current at any time.
// Display, hide and press delegate to the current page; a release may carry
// a navigation outcome, and the pager performs the switch when it knows the
// target page, or passes the outcome outward when it does not.
type Pager struct {
	pages       map[string]Application
	defaultPage string
	keys        deck.KeySet

	// mu serializes switches so a racing release can never observe a
	// half-updated current pointer.
	mu      sync.Mutex
	current string
}

// NewPager builds a pager over the named pages, starting on defaultPage.
func NewPager(pages map[string]Application, defaultPage string) (*Pager, error) {
	if _, ok := pages[defaultPage]; !ok {
		return nil, fmt.Errorf("%w: default page %q", ErrUnknownPage, defaultPage)
	}

	keys := deck.KeySet{}
	registered := make(map[string]Application, len(pages))
	for name, a := range pages {
		registered[name] = a
		keys = keys.Union(a.Keys())
	}

	return &Pager{
		pages:       registered,
		defaultPage: defaultPage,
		current:     defaultPage,
		keys:        keys,
	}, nil
}

// AddPage registers another page. Registering an existing name fails with
// ErrDuplicatePage.
func (p *Pager) AddPage(name string, a Application) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pages[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePage, name)
	}
	p.pages[name] = a
	p.keys = p.keys.Union(a.Keys())
	return nil
}

// Current returns the name of the current page.
func (p *Pager) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// DefaultPage returns the page the pager starts on.
func (p *Pager) DefaultPage() string { return p.defaultPage }

// Pages returns the registered page names.
func (p *Pager) Pages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.pages))
	for name := range p.pages {
		names = append(names, name)
	}
	return names
}

func (p *Pager) Keys() deck.KeySet { return p.keys }

func (p *Pager) currentApp() Application {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages[p.current]
}

func (p *Pager) OnDisplay(ctx *Context) error {
	return p.currentApp().OnDisplay(ctx)
}

func (p *Pager) OnHide(ctx *Context) error {
	return p.currentApp().OnHide(ctx)
}

func (p *Pager) OnPress(ctx *Context, key int) error {
	return p.currentApp().OnPress(ctx, key)
}

// OnRelease delegates to the current page. A navigation outcome naming a
// registered page triggers the switch here; an unknown name propagates to
// the caller unchanged.
func (p *Pager) OnRelease(ctx *Context, key int) (Nav, error) {
	nav, err := p.currentApp().OnRelease(ctx, key)
	if err != nil {
		return Nav{}, err
	}

	page, ok := nav.SwitchTarget()
	if !ok {
		return Nav{}, nil
	}

	p.mu.Lock()
	_, known := p.pages[page]
	p.mu.Unlock()
	if !known {
		return nav, nil
	}
	return Nav{}, p.SwitchTo(ctx, page)
}

// SwitchTo makes the named page current: hide the old page, reassign,
// display the new page, then blank every key the old page owned but the
// new one does not, so no stale icon lingers. The whole protocol runs under
// the pager's switch lock.
func (p *Pager) SwitchTo(ctx *Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}
	old := p.pages[p.current]

	// Even a failing hide must not leave the pager stuck between pages;
	// the switch completes and errors are reported together.
	hideErr := old.OnHide(ctx)
	p.current = name
	displayErr := next.OnDisplay(ctx)

	if stale := old.Keys().Diff(next.Keys()); len(stale) > 0 {
		ctx.SetImage(stale, &icon.Color{})
	}

	return errors.Join(hideErr, displayErr)
}
