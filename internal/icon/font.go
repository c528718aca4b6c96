package icon

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Label faces are built from the embedded Go fonts so the binary carries no
// font file dependency. Faces are cached per point size.
var (
	faceMu  sync.Mutex
	faces   = map[int]font.Face{}
	sfntSrc *opentype.Font
)

func labelFace(size int) (font.Face, error) {
	faceMu.Lock()
	defer faceMu.Unlock()

	if face, ok := faces[size]; ok {
		return face, nil
	}

	if sfntSrc == nil {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded font: %w", err)
		}
		sfntSrc = f
	}

	face, err := opentype.NewFace(sfntSrc, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %dpt face: %w", size, err)
	}
	faces[size] = face
	return face, nil
}

// drawCentered draws text anchored at its visual center on (x, y).
func drawCentered(img *image.RGBA, text string, x, y, size int, col color.Color) {
	if text == "" {
		return
	}
	face, err := labelFace(size)
	if err != nil {
		return
	}

	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	baseline := y + (metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(baseline)},
	}
	d.DrawString(text)
}

// drawOutlined draws centered text with a 2px stroke in the outline color
// underneath, so labels stay readable over gauge fills.
func drawOutlined(img *image.RGBA, text string, x, y, size int, col, outline color.Color) {
	for dx := -2; dx <= 2; dx += 2 {
		for dy := -2; dy <= 2; dy += 2 {
			if dx == 0 && dy == 0 {
				continue
			}
			drawCentered(img, text, x+dx, y+dy, size, outline)
		}
	}
	drawCentered(img, text, x, y, size, col)
}
