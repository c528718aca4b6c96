package deck

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"rafaelmartins.com/p/streamdeck"

	"github.com/macrat/mydeck/internal/icon"
)

// Open enumerates connected Stream Deck devices and opens the one at the
// given index. It returns ErrDeviceNotFound when the index is out of range.
func Open(index int, logger *slog.Logger) (*Deck, error) {
	if logger == nil {
		logger = slog.Default()
	}

	devices, err := streamdeck.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if index < 0 || index >= len(devices) {
		return nil, fmt.Errorf("%w: index %d (%d connected)", ErrDeviceNotFound, index, len(devices))
	}

	device := devices[index]
	if err := device.Open(); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device.GetModelName(), err)
	}

	h := &hardware{device: device, logger: logger, done: make(chan struct{})}

	if rect, err := device.GetKeyImageRectangle(); err == nil {
		h.keyRect = rect
	} else {
		h.keyRect = image.Rect(0, 0, icon.KeySize, icon.KeySize)
	}

	if err := h.installHandlers(); err != nil {
		device.Close()
		return nil, fmt.Errorf("failed to install key handlers: %w", err)
	}

	// The listener goroutine delivers key events until the device is
	// closed or disconnects.
	errCh := make(chan error, 1)
	go func() {
		if err := device.Listen(errCh); err != nil {
			logger.Error("device listener stopped", "error", err)
		}
		close(h.done)
	}()
	go func() {
		for err := range errCh {
			logger.Error("device error", "error", err)
		}
	}()

	logger.Info("device opened",
		"model", device.GetModelName(),
		"serial", device.GetSerialNumber(),
		"keys", device.GetKeyCount())

	return New(h, logger), nil
}

// hardware adapts a rafaelmartins.com/p/streamdeck device to the Driver
// contract. Library key ids are 1-based; the runtime's are 0-based.
type hardware struct {
	device  *streamdeck.Device
	logger  *slog.Logger
	keyRect image.Rectangle
	done    chan struct{}

	mu       sync.Mutex
	callback KeyCallback
}

func (h *hardware) installHandlers() error {
	return h.device.ForEachKey(func(key streamdeck.KeyID) error {
		id := int(key - streamdeck.KEY_1)
		return h.device.AddKeyHandler(key, func(d *streamdeck.Device, k *streamdeck.Key) error {
			h.emit(id, true)
			k.WaitForRelease()
			h.emit(id, false)
			return nil
		})
	})
}

func (h *hardware) emit(key int, pressed bool) {
	h.mu.Lock()
	fn := h.callback
	h.mu.Unlock()
	if fn != nil {
		fn(key, pressed)
	}
}

func (h *hardware) SetKeyCallback(fn func(key int, pressed bool)) {
	h.mu.Lock()
	h.callback = fn
	h.mu.Unlock()
}

func (h *hardware) SetKeyImage(key int, img image.Image) error {
	if size := h.keyRect.Size(); img.Bounds().Size() != size {
		img = imaging.Resize(img, size.X, size.Y, imaging.Lanczos)
	}
	return h.device.SetKeyImage(streamdeck.KEY_1+streamdeck.KeyID(key), img)
}

func (h *hardware) SetBrightness(percent int) error {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return h.device.SetBrightness(byte(percent))
}

func (h *hardware) KeyCount() int {
	return int(h.device.GetKeyCount())
}

// KeyLayout reports the key grid. The driver library does not expose the
// grid directly, so it is derived from the key count of the known models.
func (h *hardware) KeyLayout() (rows, cols int) {
	switch count := h.KeyCount(); count {
	case 6:
		return 2, 3
	case 8:
		return 2, 4
	case 15:
		return 3, 5
	case 32:
		return 4, 8
	default:
		return 1, count
	}
}

func (h *hardware) Done() <-chan struct{} {
	return h.done
}

func (h *hardware) Reset() error {
	return h.device.ForEachKey(func(key streamdeck.KeyID) error {
		return h.device.ClearKey(key)
	})
}

func (h *hardware) Close() error {
	return h.device.Close()
}
