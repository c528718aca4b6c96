package remo

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
)

const (
	// repeatDelay and repeatInterval drive auto-repeat while a temperature
	// key stays held.
	repeatDelay    = 500 * time.Millisecond
	repeatInterval = 300 * time.Millisecond

	// settleDelay is how long a temperature or volume change may still be
	// adjusted before it is pushed to the appliance.
	settleDelay = time.Second

	roomPollInterval = time.Minute
)

var modeColors = map[string]color.RGBA{
	"cool": {R: 0, G: 64, B: 192, A: 255},
	"warm": {R: 192, G: 48, B: 0, A: 255},
	"dry":  {R: 0, G: 128, B: 96, A: 255},
	"auto": {R: 96, G: 96, B: 0, A: 255},
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 4, G: c.G / 4, B: c.B / 4, A: 255}
}

// ModeKeySet shows one key per operation mode plus a power-off key, with the
// active mode highlighted. Pressing a mode key powers the appliance on in
// that mode; pressing the off key powers it off.
type ModeKeySet struct {
	app.Base

	client      *Client
	applianceID string
	modes       map[int]string // key id to mode name; "" is the off key

	mu      sync.Mutex
	state   ACState
	loaded  bool
	showing bool
}

// NewModeKeySet builds a mode selector over the given key-to-mode mapping.
// An empty mode name marks the power-off key.
func NewModeKeySet(client *Client, applianceID string, modes map[int]string) *ModeKeySet {
	keys := deck.KeySet{}
	for key := range modes {
		keys[key] = struct{}{}
	}
	return &ModeKeySet{
		Base:        app.NewBase(keys),
		client:      client,
		applianceID: applianceID,
		modes:       modes,
	}
}

func (s *ModeKeySet) OnDisplay(ctx *app.Context) error {
	s.mu.Lock()
	s.showing = true
	s.mu.Unlock()

	s.draw(ctx)
	s.refresh(ctx, false)
	return nil
}

func (s *ModeKeySet) OnHide(ctx *app.Context) error {
	s.mu.Lock()
	s.showing = false
	s.mu.Unlock()
	return nil
}

func (s *ModeKeySet) OnPress(ctx *app.Context, key int) error {
	mode, ok := s.modes[key]
	if !ok {
		return nil
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil
	}
	state := s.state
	if mode == "" {
		state.Power = false
	} else {
		state.Power = true
		state.Mode = mode
	}
	s.state = state
	s.mu.Unlock()

	s.draw(ctx)
	go func() {
		if err := s.client.SetACState(context.Background(), s.applianceID, state); err != nil {
			ctx.Now(func() {
				ctx.Logger().Warn("failed to set AC mode", "mode", mode, "error", err)
			})
			return
		}
		// Switching modes changes the valid temperature and volume
		// ranges, so pull the resulting state back.
		s.refresh(ctx, true)
	}()
	return nil
}

func (s *ModeKeySet) refresh(ctx *app.Context, force bool) {
	go func() {
		state, err := s.client.ACState(context.Background(), s.applianceID, force)
		ctx.Now(func() {
			if err != nil {
				ctx.Logger().Warn("failed to fetch AC state", "error", err)
				return
			}
			s.mu.Lock()
			s.state = state
			s.loaded = true
			showing := s.showing
			s.mu.Unlock()
			if showing {
				s.draw(ctx)
			}
		})
	}()
}

func (s *ModeKeySet) draw(ctx *app.Context) {
	s.mu.Lock()
	state := s.state
	loaded := s.loaded
	s.mu.Unlock()

	for key, mode := range s.modes {
		label := mode
		bg := color.RGBA{R: 32, G: 32, B: 32, A: 255}
		if mode == "" {
			label = "off"
			bg = dim(color.RGBA{R: 192, G: 0, B: 0, A: 255})
			if loaded && !state.Power {
				bg = color.RGBA{R: 128, G: 0, B: 0, A: 255}
			}
		} else if c, ok := modeColors[mode]; ok {
			bg = dim(c)
			if loaded && state.Power && state.Mode == mode {
				bg = c
			}
		}
		fg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
		if !loaded {
			fg = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}
		ctx.SetKeyImage(key, &icon.Text{BG: bg, FG: fg, Text: label})
	}
}

// TempKeySet is a three-key vertical temperature control. The stack renders
// one gauge over the appliance's temperature range; the top key raises the
// target, the bottom key lowers it, and holding either auto-repeats. The
// pending target is pushed to the appliance once it stops changing for
// settleDelay.
type TempKeySet struct {
	app.Base

	client      *Client
	applianceID string
	keys        [3]int // bottom to top

	mu      sync.Mutex
	state   ACState
	loaded  bool
	showing bool
	target  int
	held    bool
	heldDir int
	gen     int
}

// NewTempKeySet builds a temperature control on three vertically adjacent
// keys, given top to bottom.
func NewTempKeySet(client *Client, applianceID string, top, middle, bottom int) *TempKeySet {
	return &TempKeySet{
		Base:        app.NewBase(deck.Keys(top, middle, bottom)),
		client:      client,
		applianceID: applianceID,
		keys:        [3]int{bottom, middle, top},
	}
}

func (s *TempKeySet) OnDisplay(ctx *app.Context) error {
	s.mu.Lock()
	s.showing = true
	s.mu.Unlock()

	s.draw(ctx)
	s.refresh(ctx, false)
	return nil
}

func (s *TempKeySet) OnHide(ctx *app.Context) error {
	s.mu.Lock()
	s.showing = false
	s.held = false
	s.gen++
	s.mu.Unlock()
	return nil
}

func (s *TempKeySet) OnPress(ctx *app.Context, key int) error {
	dir := 0
	switch key {
	case s.keys[2]:
		dir = 1
	case s.keys[0]:
		dir = -1
	default:
		return nil
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	s.held = true
	s.heldDir = dir
	s.stepLocked(dir)
	s.mu.Unlock()

	s.draw(ctx)
	ctx.After(repeatDelay, func() { s.repeat(ctx, dir) })
	return nil
}

func (s *TempKeySet) OnRelease(ctx *app.Context, key int) (app.Nav, error) {
	s.mu.Lock()
	s.held = false
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	ctx.After(settleDelay, func() { s.settle(ctx, gen) })
	return app.Nav{}, nil
}

func (s *TempKeySet) repeat(ctx *app.Context, dir int) {
	s.mu.Lock()
	if !s.held || s.heldDir != dir {
		s.mu.Unlock()
		return
	}
	s.stepLocked(dir)
	s.mu.Unlock()

	s.draw(ctx)
	ctx.After(repeatInterval, func() { s.repeat(ctx, dir) })
}

// stepLocked moves the pending target by dir, clamped to the range. Caller
// holds mu.
func (s *TempKeySet) stepLocked(dir int) {
	next := s.target + dir
	if next < 0 {
		next = 0
	}
	if max := len(s.state.TemperatureList) - 1; next > max {
		next = max
	}
	s.target = next
}

func (s *TempKeySet) settle(ctx *app.Context, gen int) {
	s.mu.Lock()
	if s.gen != gen || !s.loaded {
		s.mu.Unlock()
		return
	}
	state := s.state
	if s.target < 0 || s.target >= len(state.TemperatureList) {
		s.mu.Unlock()
		return
	}
	temp := state.TemperatureList[s.target]
	if temp == state.Temperature {
		s.mu.Unlock()
		return
	}
	state.Temperature = temp
	s.state = state
	s.mu.Unlock()

	go func() {
		if err := s.client.SetACState(context.Background(), s.applianceID, state); err != nil {
			ctx.Now(func() {
				ctx.Logger().Warn("failed to set AC temperature", "temperature", temp, "error", err)
			})
		}
	}()
}

func (s *TempKeySet) refresh(ctx *app.Context, force bool) {
	go func() {
		state, err := s.client.ACState(context.Background(), s.applianceID, force)
		ctx.Now(func() {
			if err != nil {
				ctx.Logger().Warn("failed to fetch AC state", "error", err)
				return
			}
			s.mu.Lock()
			s.state = state
			s.loaded = true
			s.target = 0
			for i, t := range state.TemperatureList {
				if t == state.Temperature {
					s.target = i
					break
				}
			}
			showing := s.showing
			s.mu.Unlock()
			if showing {
				s.draw(ctx)
			}
		})
	}()
}

func (s *TempKeySet) draw(ctx *app.Context) {
	s.mu.Lock()
	loaded := s.loaded
	target := s.target
	list := s.state.TemperatureList
	s.mu.Unlock()

	value := 0.0
	label := "--"
	if loaded && len(list) > 0 {
		if len(list) > 1 {
			value = float64(target) / float64(len(list)-1)
		} else {
			value = 1
		}
		label = list[target]
	}

	texts := [3]string{"-", label, "+"}
	for offset, key := range s.keys {
		ctx.SetKeyImage(key, &icon.Gauge{
			Gauge:     color.RGBA{R: 192, G: 96, B: 0, A: 255},
			Text:      texts[offset],
			Size:      20,
			NKeys:     3,
			KeyOffset: offset,
			Value:     value,
		})
	}
}

// VolumeKey cycles the appliance's fan volume on a single key. Each press
// advances to the next entry of the volume list; the selection is pushed
// once it stops changing for settleDelay.
type VolumeKey struct {
	app.Base

	client      *Client
	applianceID string
	key         int

	mu      sync.Mutex
	state   ACState
	loaded  bool
	showing bool
	target  int
	gen     int
}

// NewVolumeKey builds a fan volume key.
func NewVolumeKey(client *Client, applianceID string, key int) *VolumeKey {
	return &VolumeKey{
		Base:        app.NewBase(deck.Keys(key)),
		client:      client,
		applianceID: applianceID,
		key:         key,
	}
}

func (v *VolumeKey) OnDisplay(ctx *app.Context) error {
	v.mu.Lock()
	v.showing = true
	v.mu.Unlock()

	v.draw(ctx)
	v.refresh(ctx, false)
	return nil
}

func (v *VolumeKey) OnHide(ctx *app.Context) error {
	v.mu.Lock()
	v.showing = false
	v.gen++
	v.mu.Unlock()
	return nil
}

func (v *VolumeKey) OnPress(ctx *app.Context, key int) error {
	v.mu.Lock()
	if !v.loaded || len(v.state.VolumeList) == 0 {
		v.mu.Unlock()
		return nil
	}
	v.target = (v.target + 1) % len(v.state.VolumeList)
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	v.draw(ctx)
	ctx.After(settleDelay, func() { v.settle(ctx, gen) })
	return nil
}

func (v *VolumeKey) settle(ctx *app.Context, gen int) {
	v.mu.Lock()
	if v.gen != gen || !v.loaded {
		v.mu.Unlock()
		return
	}
	state := v.state
	vol := state.VolumeList[v.target]
	if vol == state.Volume {
		v.mu.Unlock()
		return
	}
	state.Volume = vol
	v.state = state
	v.mu.Unlock()

	go func() {
		if err := v.client.SetACState(context.Background(), v.applianceID, state); err != nil {
			ctx.Now(func() {
				ctx.Logger().Warn("failed to set AC volume", "volume", vol, "error", err)
			})
		}
	}()
}

func (v *VolumeKey) refresh(ctx *app.Context, force bool) {
	go func() {
		state, err := v.client.ACState(context.Background(), v.applianceID, force)
		ctx.Now(func() {
			if err != nil {
				ctx.Logger().Warn("failed to fetch AC state", "error", err)
				return
			}
			v.mu.Lock()
			v.state = state
			v.loaded = true
			v.target = 0
			for i, vol := range state.VolumeList {
				if vol == state.Volume {
					v.target = i
					break
				}
			}
			showing := v.showing
			v.mu.Unlock()
			if showing {
				v.draw(ctx)
			}
		})
	}()
}

func (v *VolumeKey) draw(ctx *app.Context) {
	v.mu.Lock()
	loaded := v.loaded
	target := v.target
	list := v.state.VolumeList
	v.mu.Unlock()

	value := 0.0
	label := "--"
	if loaded && len(list) > 0 {
		value = float64(target+1) / float64(len(list))
		label = list[target]
	}
	ctx.SetKeyImage(v.key, &icon.Gauge{
		Gauge:      color.RGBA{R: 0, G: 96, B: 160, A: 255},
		Text:       label,
		Horizontal: true,
		Value:      value,
	})
}

// RoomTempKey shows the room temperature reported by a Remo sensor,
// refreshing once a minute while visible.
type RoomTempKey struct {
	app.Base

	client   *Client
	deviceID string
	key      int

	mu      sync.Mutex
	showing bool
	loaded  bool
	temp    float64
}

// NewRoomTempKey builds a room temperature display key.
func NewRoomTempKey(client *Client, deviceID string, key int) *RoomTempKey {
	return &RoomTempKey{
		Base:     app.NewBase(deck.Keys(key)),
		client:   client,
		deviceID: deviceID,
		key:      key,
	}
}

func (k *RoomTempKey) OnDisplay(ctx *app.Context) error {
	k.mu.Lock()
	k.showing = true
	k.mu.Unlock()

	k.draw(ctx)
	k.tick(ctx)
	return nil
}

func (k *RoomTempKey) OnHide(ctx *app.Context) error {
	k.mu.Lock()
	k.showing = false
	k.mu.Unlock()
	return nil
}

func (k *RoomTempKey) tick(ctx *app.Context) {
	k.mu.Lock()
	showing := k.showing
	k.mu.Unlock()
	if !showing {
		return
	}

	go func() {
		state, err := k.client.RoomState(context.Background(), k.deviceID, false)
		ctx.Now(func() {
			if err != nil {
				ctx.Logger().Warn("failed to fetch room state", "error", err)
				return
			}
			k.mu.Lock()
			k.temp = state.Temperature
			k.loaded = true
			showing := k.showing
			k.mu.Unlock()
			if showing {
				k.draw(ctx)
			}
		})
	}()

	ctx.After(roomPollInterval, func() { k.tick(ctx) })
}

func (k *RoomTempKey) draw(ctx *app.Context) {
	k.mu.Lock()
	loaded := k.loaded
	temp := k.temp
	k.mu.Unlock()

	text := "--"
	if loaded {
		text = fmt.Sprintf("%.1f°", temp)
	}
	ctx.SetKeyImage(k.key, &icon.Text{
		BG:   color.RGBA{R: 16, G: 32, B: 16, A: 255},
		Text: text,
		Size: 18,
	})
}
