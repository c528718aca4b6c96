package icon

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// gaugeMargin is the assumed gap in pixels between neighbouring keys when a
// gauge spans more than one of them.
const gaugeMargin = 13

// Gauge renders a progress indicator as two bars along the key edges, with
// an outlined label in the middle. A gauge may span several keys: the fill
// is computed over a virtual strip of NKeys keys and this key draws the
// slice selected by KeyOffset. Value is clamped to [0, 1].
type Gauge struct {
	BG    color.RGBA
	Gauge color.RGBA
	FG    color.RGBA
	Text  string
	Size  int
	Width int

	NKeys     int
	KeyOffset int

	// Horizontal makes the fill grow left to right instead of bottom up.
	Horizontal bool

	Value float64
}

func (g *Gauge) Render() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, KeySize, KeySize))

	bg := g.BG
	bg.A = 255
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	fg := g.FG
	if fg == (color.RGBA{}) {
		fg = white
	}
	bar := g.Gauge
	if bar == (color.RGBA{}) {
		bar = white
	}
	bar.A = 255
	width := g.Width
	if width == 0 {
		width = 12
	}
	size := g.Size
	if size == 0 {
		size = 16
	}
	nKeys := g.NKeys
	if nKeys < 1 {
		nKeys = 1
	}
	value := g.Value
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}

	total := KeySize*nKeys + gaugeMargin*(nKeys-1)
	virtual := int(float64(total) * value)
	length := virtual - g.KeyOffset*(KeySize+gaugeMargin)
	if length < 0 {
		length = 0
	}

	barSrc := image.NewUniform(bar)
	switch {
	case length >= KeySize:
		draw.Draw(img, image.Rect(0, 0, width+1, KeySize), barSrc, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(KeySize-1-width, 0, KeySize, KeySize), barSrc, image.Point{}, draw.Src)
	case length > 0:
		cursor := image.NewUniform(fg)
		if g.Horizontal {
			draw.Draw(img, image.Rect(0, 0, length+1, width+1), barSrc, image.Point{}, draw.Src)
			draw.Draw(img, image.Rect(0, KeySize-1-width, length+1, KeySize), barSrc, image.Point{}, draw.Src)
			draw.Draw(img, image.Rect(length, 0, length+1, KeySize), cursor, image.Point{}, draw.Src)
		} else {
			draw.Draw(img, image.Rect(0, KeySize-1-length, width+1, KeySize), barSrc, image.Point{}, draw.Src)
			draw.Draw(img, image.Rect(KeySize-1-width, KeySize-1-length, KeySize, KeySize), barSrc, image.Point{}, draw.Src)
			draw.Draw(img, image.Rect(0, KeySize-1-length, KeySize, KeySize-length), cursor, image.Point{}, draw.Src)
		}
	}

	drawOutlined(img, g.Text, KeySize/2, KeySize/2, size, fg, bg)

	return img
}
