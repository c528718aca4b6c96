// Package icon provides the renderable key icons: solid colors, text,
// edge markers, gauges and tinted SVG glyphs. Icons are immutable values;
// Render is deterministic and variants whose fields fully determine the
// output cache their bitmap.
package icon

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/srwiley/rasterx"
)

// KeySize is the logical edge length in pixels of a rendered key image.
// The device adapter rescales to the native key resolution when it differs.
const KeySize = 72

// Icon describes the pixels shown on one key.
type Icon interface {
	Render() image.Image
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// Color fills the whole key with BG. The zero value is a black key.
type Color struct {
	BG color.RGBA

	once  sync.Once
	cache image.Image
}

func (c *Color) Render() image.Image {
	c.once.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, KeySize, KeySize))
		bg := c.BG
		bg.A = 255
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		c.cache = img
	})
	return c.cache
}

// Text draws a centered label over a solid background. A zero FG means
// white, a zero Size means 16, zero X/Y anchor the text at the key center.
type Text struct {
	BG   color.RGBA
	FG   color.RGBA
	Text string
	Size int
	X    int
	Y    int

	once  sync.Once
	cache image.Image
}

func (t *Text) Render() image.Image {
	t.once.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, KeySize, KeySize))
		t.renderOnto(img)
		t.cache = img
	})
	return t.cache
}

func (t *Text) renderOnto(img *image.RGBA) {
	bg := t.BG
	bg.A = 255
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	fg := t.FG
	if fg == (color.RGBA{}) {
		fg = white
	}
	size := t.Size
	if size == 0 {
		size = 16
	}
	x, y := t.X, t.Y
	if x == 0 && y == 0 {
		x, y = KeySize/2, KeySize/2
	}
	drawCentered(img, t.Text, x, y, size, fg)
}

// Edge names one side of the key. The zero value is the bottom edge.
type Edge uint8

const (
	Bottom Edge = iota
	Top
	Left
	Right
)

// MarkerKind selects the marker shape. The zero value is a rectangular band.
type MarkerKind uint8

const (
	Band MarkerKind = iota
	Wedge
)

// Marker is a Text icon with a colored band or triangular wedge along one
// edge, drawn after the text layer. A zero Width means 4 and a zero Marker
// color means white.
type Marker struct {
	BG     color.RGBA
	FG     color.RGBA
	Text   string
	Size   int
	Marker color.RGBA
	Pos    Edge
	Kind   MarkerKind
	Width  int

	once  sync.Once
	cache image.Image
}

func (m *Marker) Render() image.Image {
	m.once.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, KeySize, KeySize))
		text := Text{BG: m.BG, FG: m.FG, Text: m.Text, Size: m.Size}
		text.renderOnto(img)

		col := m.Marker
		if col == (color.RGBA{}) {
			col = white
		}
		col.A = 255
		w := m.Width
		if w == 0 {
			w = 4
		}

		switch m.Kind {
		case Band:
			var band image.Rectangle
			switch m.Pos {
			case Top:
				band = image.Rect(0, 0, KeySize, w)
			case Bottom:
				band = image.Rect(0, KeySize-w, KeySize, KeySize)
			case Left:
				band = image.Rect(0, 0, w, KeySize)
			case Right:
				band = image.Rect(KeySize-w, 0, KeySize, KeySize)
			}
			draw.Draw(img, band, image.NewUniform(col), image.Point{}, draw.Src)
		case Wedge:
			var pts [3]image.Point
			switch m.Pos {
			case Top:
				pts = [3]image.Point{{0, 0}, {KeySize, 0}, {KeySize / 2, w * 2}}
			case Bottom:
				pts = [3]image.Point{{0, KeySize}, {KeySize, KeySize}, {KeySize / 2, KeySize - w*2}}
			case Left:
				pts = [3]image.Point{{0, 0}, {w * 2, KeySize / 2}, {0, KeySize}}
			case Right:
				pts = [3]image.Point{{KeySize, 0}, {KeySize - w*2, KeySize / 2}, {KeySize, KeySize}}
			}
			fillTriangle(img, pts, col)
		}

		m.cache = img
	})
	return m.cache
}

// fillTriangle rasterizes a filled triangle onto img.
func fillTriangle(img *image.RGBA, pts [3]image.Point, col color.Color) {
	scanner := rasterx.NewScannerGV(KeySize, KeySize, img, img.Bounds())
	filler := rasterx.NewFiller(KeySize, KeySize, scanner)
	filler.SetColor(col)
	filler.Start(fixed.P(pts[0].X, pts[0].Y))
	filler.Line(fixed.P(pts[1].X, pts[1].Y))
	filler.Line(fixed.P(pts[2].X, pts[2].Y))
	filler.Stop(true)
	filler.Draw()
}
