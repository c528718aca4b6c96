package hue

import (
	"context"
	_ "embed"
	"image/color"
	"sync"
	"time"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

//go:embed icons/bulb.svg
var bulbSVG string

const lightPollInterval = 15 * time.Second

// LightKey toggles a light or grouped light. The bulb glyph is lit amber
// while the light is on and grey while it is off; a press flips the state
// optimistically and reverts on failure.
type LightKey struct {
	app.Base

	client *Client
	id     string
	key    int

	get func(ctx context.Context, id string, force bool) (Light, error)
	set func(ctx context.Context, id string, on bool) error

	onIcon  icon.Icon
	offIcon icon.Icon

	mu      sync.Mutex
	on      bool
	loaded  bool
	showing bool
}

// NewLightKey builds a toggle key for a single light.
func NewLightKey(client *Client, id string, key int) *LightKey {
	return newLightKey(client, id, key, client.Light, client.SetLightOn)
}

// NewGroupedLightKey builds a toggle key for a grouped light, such as a
// room or zone.
func NewGroupedLightKey(client *Client, id string, key int) *LightKey {
	return newLightKey(client, id, key, client.GroupedLight, client.SetGroupedLightOn)
}

func newLightKey(
	client *Client,
	id string,
	key int,
	get func(ctx context.Context, id string, force bool) (Light, error),
	set func(ctx context.Context, id string, on bool) error,
) *LightKey {
	return &LightKey{
		Base:   app.NewBase(deck.Keys(key)),
		client: client,
		id:     id,
		key:    key,
		get:    get,
		set:    set,
		onIcon: &icon.SVG{
			Tint:   color.RGBA{R: 255, G: 180, B: 0, A: 255},
			Source: bulbSVG,
		},
		offIcon: &icon.SVG{
			Tint:   color.RGBA{R: 80, G: 80, B: 80, A: 255},
			Source: bulbSVG,
		},
	}
}

func (l *LightKey) OnDisplay(ctx *app.Context) error {
	l.mu.Lock()
	l.showing = true
	l.mu.Unlock()

	l.draw(ctx)
	l.tick(ctx)
	return nil
}

func (l *LightKey) OnHide(ctx *app.Context) error {
	l.mu.Lock()
	l.showing = false
	l.mu.Unlock()
	return nil
}

func (l *LightKey) OnPress(ctx *app.Context, key int) error {
	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return nil
	}
	l.on = !l.on
	on := l.on
	l.mu.Unlock()

	l.draw(ctx)
	go func() {
		if err := l.set(context.Background(), l.id, on); err != nil {
			ctx.Now(func() {
				ctx.Logger().Warn("failed to switch light", "light", l.id, "error", err)
			})
			l.refresh(ctx, true)
		}
	}()
	return nil
}

func (l *LightKey) tick(ctx *app.Context) {
	l.mu.Lock()
	showing := l.showing
	l.mu.Unlock()
	if !showing {
		return
	}

	l.refresh(ctx, false)
	ctx.After(lightPollInterval, func() { l.tick(ctx) })
}

func (l *LightKey) refresh(ctx *app.Context, force bool) {
	go func() {
		light, err := l.get(context.Background(), l.id, force)
		ctx.Now(func() {
			if err != nil {
				ctx.Logger().Warn("failed to fetch light state", "light", l.id, "error", err)
				return
			}
			l.mu.Lock()
			l.on = light.On
			l.loaded = true
			showing := l.showing
			l.mu.Unlock()
			if showing {
				l.draw(ctx)
			}
		})
	}()
}

func (l *LightKey) draw(ctx *app.Context) {
	l.mu.Lock()
	on := l.loaded && l.on
	l.mu.Unlock()

	if on {
		ctx.SetKeyImage(l.key, l.onIcon)
	} else {
		ctx.SetKeyImage(l.key, l.offIcon)
	}
}
