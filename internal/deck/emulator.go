package deck

import (
	"image"
	"sync"
)

// Emulator is an in-memory Driver for running without hardware and for
// tests. It records every pushed image per key and lets callers inject key
// edges through Press and Release.
type Emulator struct {
	rows, cols int

	mu         sync.Mutex
	brightness int
	images     map[int][]image.Image
	callback   KeyCallback
}

// NewEmulator creates an emulated device with the given key grid.
func NewEmulator(rows, cols int) *Emulator {
	return &Emulator{
		rows:   rows,
		cols:   cols,
		images: map[int][]image.Image{},
	}
}

func (e *Emulator) Close() error { return nil }

func (e *Emulator) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.images = map[int][]image.Image{}
	return nil
}

func (e *Emulator) SetBrightness(percent int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brightness = percent
	return nil
}

func (e *Emulator) SetKeyImage(key int, img image.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.images[key] = append(e.images[key], img)
	return nil
}

func (e *Emulator) KeyCount() int { return e.rows * e.cols }

func (e *Emulator) KeyLayout() (rows, cols int) { return e.rows, e.cols }

func (e *Emulator) SetKeyCallback(fn func(key int, pressed bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callback = fn
}

// Done returns nil; the emulator never disconnects.
func (e *Emulator) Done() <-chan struct{} { return nil }

// Press injects a press edge for the key, as the driver goroutine would.
func (e *Emulator) Press(key int) { e.emit(key, true) }

// Release injects a release edge for the key.
func (e *Emulator) Release(key int) { e.emit(key, false) }

// Tap injects a press edge immediately followed by a release edge.
func (e *Emulator) Tap(key int) {
	e.Press(key)
	e.Release(key)
}

func (e *Emulator) emit(key int, pressed bool) {
	e.mu.Lock()
	fn := e.callback
	e.mu.Unlock()
	if fn != nil {
		fn(key, pressed)
	}
}

// Brightness returns the last brightness set on the emulator.
func (e *Emulator) Brightness() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brightness
}

// Image returns the most recent image pushed to the key, or nil.
func (e *Emulator) Image(key int) image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := e.images[key]
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

// History returns every image pushed to the key, oldest first.
func (e *Emulator) History(key int) []image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]image.Image(nil), e.images[key]...)
}

// PushCount returns how many images have been pushed to the key.
func (e *Emulator) PushCount(key int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.images[key])
}
