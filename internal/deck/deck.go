// Package deck owns the physical device handle. It exposes brightness
// control, icon pushes to single keys or key sets, layout queries, and a
// single mutable key-callback slot fed by the driver's own goroutine.
package deck

import (
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/macrat/mydeck/internal/icon"
)

// ErrDeviceNotFound is returned by Open when no device exists at the
// requested index.
var ErrDeviceNotFound = errors.New("stream deck device not found")

// Driver is the minimal contract the runtime needs from a key/display
// device. The hardware adapter and the Emulator both implement it.
//
// The key callback is invoked on a goroutine owned by the driver for every
// press and release edge. It must hand work off quickly and never block.
type Driver interface {
	Close() error
	Reset() error
	SetBrightness(percent int) error
	SetKeyImage(key int, img image.Image) error
	KeyCount() int
	KeyLayout() (rows, cols int)
	SetKeyCallback(fn func(key int, pressed bool))

	// Done is closed when the device stops delivering events, such as on
	// disconnect. A driver that cannot fail may return nil.
	Done() <-chan struct{}
}

// KeyCallback receives every key edge: pressed is true on the press edge
// and false on the release edge.
type KeyCallback func(key int, pressed bool)

// Deck wraps a Driver with icon rendering, key-set broadcast and a
// replaceable key callback. Image pushes are serialized so concurrent
// fan-out draws cannot interleave partial writes on the wire.
type Deck struct {
	driver Driver
	logger *slog.Logger

	pushMu sync.Mutex

	cbMu     sync.Mutex
	callback KeyCallback
}

// New wraps an opened driver. The logger may be nil.
func New(driver Driver, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Deck{driver: driver, logger: logger}

	driver.SetKeyCallback(func(key int, pressed bool) {
		d.cbMu.Lock()
		fn := d.callback
		d.cbMu.Unlock()
		if fn != nil {
			fn(key, pressed)
		}
	})

	return d
}

// OnKey replaces the key callback. The callback runs on the driver's
// goroutine and must only enqueue work.
func (d *Deck) OnKey(fn KeyCallback) {
	d.cbMu.Lock()
	d.callback = fn
	d.cbMu.Unlock()
}

// SetBrightness sets the backlight level, 0 to 100.
func (d *Deck) SetBrightness(percent int) {
	if err := d.driver.SetBrightness(percent); err != nil {
		d.logger.Error("failed to set brightness", "percent", percent, "error", err)
	}
}

// SetImage renders the icon once and pushes it to every key in the set.
// Ids outside [0, KeyCount) are ignored.
func (d *Deck) SetImage(keys KeySet, ic icon.Icon) {
	d.PushImage(keys, ic.Render())
}

// SetKeyImage renders the icon onto a single key.
func (d *Deck) SetKeyImage(key int, ic icon.Icon) {
	d.PushImage(Keys(key), ic.Render())
}

// PushImage sends an already rendered bitmap to every key in the set.
func (d *Deck) PushImage(keys KeySet, img image.Image) {
	count := d.driver.KeyCount()

	d.pushMu.Lock()
	defer d.pushMu.Unlock()

	for _, key := range keys.Sorted() {
		if key < 0 || key >= count {
			continue
		}
		if err := d.driver.SetKeyImage(key, img); err != nil {
			d.logger.Error("failed to push key image", "key", key, "error", err)
		}
	}
}

// KeyCount returns the number of physical keys.
func (d *Deck) KeyCount() int {
	return d.driver.KeyCount()
}

// KeyLayout returns the key grid dimensions.
func (d *Deck) KeyLayout() (rows, cols int) {
	return d.driver.KeyLayout()
}

// Done is closed when the device stops delivering events.
func (d *Deck) Done() <-chan struct{} {
	return d.driver.Done()
}

// Reset clears every key to black.
func (d *Deck) Reset() error {
	return d.driver.Reset()
}

// Close releases the device.
func (d *Deck) Close() error {
	return d.driver.Close()
}
