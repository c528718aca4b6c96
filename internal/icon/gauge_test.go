package icon

import (
	"image"
	"image/color"
	"testing"
)

var gaugeBar = color.RGBA{0, 255, 0, 255}

// fillHeight counts bar-colored pixels in the left edge column.
func fillHeight(img image.Image) int {
	n := 0
	for y := 0; y < KeySize; y++ {
		if colorAt(img, 0, y) == gaugeBar {
			n++
		}
	}
	return n
}

func TestGaugeEndpoints(t *testing.T) {
	t.Parallel()

	empty := (&Gauge{Gauge: gaugeBar, Value: 0}).Render()
	if got := fillHeight(empty); got != 0 {
		t.Errorf("value=0: got %d fill pixels, want 0", got)
	}

	full := (&Gauge{Gauge: gaugeBar, Value: 1}).Render()
	if got := fillHeight(full); got != KeySize {
		t.Errorf("value=1: got %d fill pixels, want %d", got, KeySize)
	}
	// Both side bars on a full gauge.
	if got := colorAt(full, KeySize-1, 0); got != gaugeBar {
		t.Errorf("value=1 right bar: got %v, want %v", got, gaugeBar)
	}
}

func TestGaugeFillMonotonic(t *testing.T) {
	t.Parallel()

	prev := -1
	for i := 0; i <= 10; i++ {
		value := float64(i) / 10
		img := (&Gauge{Gauge: gaugeBar, Value: value}).Render()
		height := fillHeight(img)
		if height < prev {
			t.Fatalf("fill height decreased at value=%.1f: %d < %d", value, height, prev)
		}
		prev = height
	}
}

func TestGaugeClampsValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"below range", -0.5, 0},
		{"above range", 1.5, KeySize},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			img := (&Gauge{Gauge: gaugeBar, Value: test.value}).Render()
			if got := fillHeight(img); got != test.want {
				t.Errorf("got %d fill pixels, want %d", got, test.want)
			}
		})
	}
}

func TestGaugeMultiKeySlices(t *testing.T) {
	t.Parallel()

	// A strip of three keys at half value: the bottom key is fully covered,
	// the middle key partially, the top key untouched.
	render := func(offset int) image.Image {
		return (&Gauge{Gauge: gaugeBar, Value: 0.5, NKeys: 3, KeyOffset: offset}).Render()
	}

	if got := fillHeight(render(0)); got != KeySize {
		t.Errorf("offset 0: got %d fill pixels, want full %d", got, KeySize)
	}
	mid := fillHeight(render(1))
	if mid <= 0 || mid >= KeySize {
		t.Errorf("offset 1: got %d fill pixels, want partial", mid)
	}
	if got := fillHeight(render(2)); got != 0 {
		t.Errorf("offset 2: got %d fill pixels, want 0", got)
	}
}

func TestGaugePartialCursorLine(t *testing.T) {
	t.Parallel()

	img := (&Gauge{Gauge: gaugeBar, Value: 0.5}).Render()
	length := int(float64(KeySize) * 0.5)

	// The cursor line runs across the whole key at the fill boundary.
	want := white
	if got := colorAt(img, KeySize/2, KeySize-1-length); got != want {
		t.Errorf("cursor pixel: got %v, want %v", got, want)
	}
}
