package widget

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

// Stopwatch starts on one press and stops on the next. While running it
// shows inverse video and redraws every second; while held it darkens.
type Stopwatch struct {
	app.Base

	mu        sync.Mutex
	running   bool
	startAt   time.Time
	pressedAt time.Time
}

// NewStopwatch builds a stopwatch bound to the given keys.
func NewStopwatch(keys deck.KeySet) *Stopwatch {
	return &Stopwatch{Base: app.NewBase(keys)}
}

// Running reports whether the stopwatch is counting.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Stopwatch) draw(ctx *app.Context) {
	s.mu.Lock()
	pressed := !s.pressedAt.IsZero()
	running := s.running
	startAt := s.startAt
	s.mu.Unlock()

	bg := color.RGBA{}
	fg := color.RGBA{255, 255, 255, 255}
	switch {
	case pressed:
		bg = pressedBG
	case running:
		bg, fg = fg, bg
	}

	text := "0:00:00"
	if !startAt.IsZero() {
		text = formatElapsed(time.Since(startAt))
	}

	ctx.SetImage(s.Keys(), &icon.Text{Text: text, BG: bg, FG: fg})
}

// formatElapsed renders a duration as H:MM:SS.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

func (s *Stopwatch) OnDisplay(ctx *app.Context) error {
	s.draw(ctx)
	return nil
}

func (s *Stopwatch) OnHide(*app.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

func (s *Stopwatch) OnPress(ctx *app.Context, _ int) error {
	s.mu.Lock()
	now := time.Now()
	s.pressedAt = now
	if s.running {
		s.running = false
	} else {
		s.running = true
		s.startAt = now
		ctx.After(time.Second, func() { s.tick(ctx) })
	}
	s.mu.Unlock()

	s.draw(ctx)
	return nil
}

func (s *Stopwatch) OnRelease(ctx *app.Context, _ int) (app.Nav, error) {
	s.mu.Lock()
	s.pressedAt = time.Time{}
	s.mu.Unlock()

	s.draw(ctx)
	return app.Nav{}, nil
}

func (s *Stopwatch) tick(ctx *app.Context) {
	if !s.Running() {
		return
	}
	s.draw(ctx)
	ctx.After(time.Second, func() { s.tick(ctx) })
}
