package icon

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// SVG rasterizes an SVG document, tinted through its currentColor
// references, centered over a solid background. A zero Size draws the glyph
// at 40px, a zero Tint means white.
type SVG struct {
	BG     color.RGBA
	Tint   color.RGBA
	Source string
	Size   int

	once  sync.Once
	cache image.Image
}

func (s *SVG) Render() image.Image {
	s.once.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, KeySize, KeySize))

		bg := s.BG
		bg.A = 255
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

		tint := s.Tint
		if tint == (color.RGBA{}) {
			tint = white
		}
		size := s.Size
		if size <= 0 || size > KeySize {
			size = 40
		}

		glyph := rasterizeSVG(s.Source, size, tint)
		offset := (KeySize - size) / 2
		target := image.Rect(offset, offset, offset+size, offset+size)
		draw.Draw(img, target, glyph, image.Point{}, draw.Over)

		s.cache = img
	})
	return s.cache
}

// rasterizeSVG renders an SVG string at the given size, substituting
// currentColor with the tint. A parse failure yields a transparent image.
func rasterizeSVG(source string, size int, tint color.Color) image.Image {
	r, g, b, _ := tint.RGBA()
	hex := fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	source = strings.ReplaceAll(source, "currentColor", hex)

	img := image.NewRGBA(image.Rect(0, 0, size, size))

	parsed, err := oksvg.ReadIconStream(strings.NewReader(source))
	if err != nil {
		return img
	}
	parsed.SetTarget(0, 0, float64(size), float64(size))

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	parsed.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	return img
}
