package widget

import (
	"image/color"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// KitchenTimer is a three-key countdown: two counters set minutes and
// seconds, a toggle starts and stops. While running, the counter keys show
// the remaining time and flash red once it runs out.
type KitchenTimer struct {
	minute    *Counter
	second    *Counter
	startstop *app.Toggle
	keys      deck.KeySet

	mu      sync.Mutex
	running bool
	shown   bool
	endAt   time.Time
}

// NewKitchenTimer builds the timer on its three keys.
func NewKitchenTimer(minuteKey, secondKey, startstopKey int) *KitchenTimer {
	t := &KitchenTimer{
		minute: NewCounter(deck.Keys(minuteKey)),
		second: NewCounter(deck.Keys(secondKey)),
		startstop: app.NewToggle(deck.Keys(startstopKey), []icon.Icon{
			&icon.Text{Text: "Start"},
			&icon.Text{Text: "Stop", BG: color.RGBA{255, 0, 0, 255}},
		}),
		keys: deck.Keys(minuteKey, secondKey, startstopKey),
	}
	t.startstop.OnSwitch = t.onStartStop
	return t
}

func (t *KitchenTimer) Keys() deck.KeySet { return t.keys }

// Running reports whether a countdown is in progress.
func (t *KitchenTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Minute exposes the minutes counter.
func (t *KitchenTimer) Minute() *Counter { return t.minute }

// Second exposes the seconds counter.
func (t *KitchenTimer) Second() *Counter { return t.second }

func (t *KitchenTimer) OnDisplay(ctx *app.Context) error {
	t.mu.Lock()
	t.shown = true
	running := t.running
	t.mu.Unlock()

	if running {
		if err := t.startstop.OnDisplay(ctx); err != nil {
			return err
		}
		t.tick(ctx)
		return nil
	}

	var eg errgroup.Group
	eg.Go(func() error { return t.minute.OnDisplay(ctx) })
	eg.Go(func() error { return t.second.OnDisplay(ctx) })
	eg.Go(func() error { return t.startstop.OnDisplay(ctx) })
	return eg.Wait()
}

func (t *KitchenTimer) OnHide(ctx *app.Context) error {
	t.mu.Lock()
	t.shown = false
	t.mu.Unlock()

	var eg errgroup.Group
	eg.Go(func() error { return t.minute.OnHide(ctx) })
	eg.Go(func() error { return t.second.OnHide(ctx) })
	eg.Go(func() error { return t.startstop.OnHide(ctx) })
	return eg.Wait()
}

func (t *KitchenTimer) OnPress(ctx *app.Context, key int) error {
	switch {
	case t.minute.Keys().Has(key):
		return t.minute.OnPress(ctx, key)
	case t.second.Keys().Has(key):
		if err := t.second.OnPress(ctx, key); err != nil {
			return err
		}
		// Seconds roll over into minutes.
		if t.second.Count() == 60 {
			t.minute.SetCount(t.minute.Count() + 1)
			t.second.SetCount(0)
			t.minute.Draw(ctx)
			t.second.Draw(ctx)
		}
		return nil
	case t.startstop.Keys().Has(key):
		return t.startstop.OnPress(ctx, key)
	}
	return nil
}

func (t *KitchenTimer) OnRelease(ctx *app.Context, key int) (app.Nav, error) {
	switch {
	case t.minute.Keys().Has(key):
		return t.minute.OnRelease(ctx, key)
	case t.second.Keys().Has(key):
		return t.second.OnRelease(ctx, key)
	case t.startstop.Keys().Has(key):
		return t.startstop.OnRelease(ctx, key)
	}
	return app.Nav{}, nil
}

func (t *KitchenTimer) onStartStop(ctx *app.Context, _ int, state int) error {
	if state == 0 {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()

		var eg errgroup.Group
		eg.Go(func() error { return t.minute.OnDisplay(ctx) })
		eg.Go(func() error { return t.second.OnDisplay(ctx) })
		return eg.Wait()
	}

	var eg errgroup.Group
	eg.Go(func() error { return t.minute.OnHide(ctx) })
	eg.Go(func() error { return t.second.OnHide(ctx) })
	if err := eg.Wait(); err != nil {
		return err
	}

	t.mu.Lock()
	t.endAt = time.Now().Add(time.Duration(t.minute.Count())*time.Minute + time.Duration(t.second.Count())*time.Second)
	t.running = true
	t.mu.Unlock()

	t.tick(ctx)
	return nil
}

// tick redraws the countdown once a second while the timer is running and
// visible. Past the deadline it flashes the overrun in red.
func (t *KitchenTimer) tick(ctx *app.Context) {
	t.mu.Lock()
	active := t.running && t.shown
	endAt := t.endAt
	t.mu.Unlock()
	if !active {
		return
	}

	now := time.Now()
	if !now.Before(endAt) {
		bg := color.RGBA{64, 0, 0, 255}
		if now.Unix()%2 == 0 {
			bg = color.RGBA{128, 0, 0, 255}
		}
		over := int(now.Sub(endAt).Seconds())
		t.drawDigits(ctx, over/60, over%60, bg)
	} else {
		left := int(endAt.Sub(now).Seconds())
		t.drawDigits(ctx, left/60, left%60, color.RGBA{})
	}

	ctx.After(time.Second, func() { t.tick(ctx) })
}

func (t *KitchenTimer) drawDigits(ctx *app.Context, minutes, seconds int, bg color.RGBA) {
	ctx.SetImage(t.minute.Keys(), &icon.Text{Text: strconv.Itoa(minutes), BG: bg, Size: 24})
	ctx.SetImage(t.second.Keys(), &icon.Text{Text: strconv.Itoa(seconds), BG: bg, Size: 24})
}
