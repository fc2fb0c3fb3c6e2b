package wordcloud

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions match the original rendering (800x400).
const (
	imageWidth  = 800
	imageHeight = 400
	maxWords    = 100
	minFontSize = 14.0
	maxFontSize = 52.0
	padding     = 6
)

var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

type renderer struct {
	font *opentype.Font
}

func newRenderer() (*renderer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &renderer{font: f}, nil
}

type wordEntry struct {
	word string
	freq float64
}

// Render lays words out row-wise, largest frequency first, with font size
// proportional to relative frequency, and encodes the canvas as PNG.
// Output is deterministic for a given frequency table.
func (r *renderer) Render(freqs map[string]float64) ([]byte, error) {
	entries := make([]wordEntry, 0, len(freqs))
	for w, f := range freqs {
		entries = append(entries, wordEntry{word: w, freq: f})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].freq != entries[j].freq {
			return entries[i].freq > entries[j].freq
		}
		return entries[i].word < entries[j].word
	})
	if len(entries) > maxWords {
		entries = entries[:maxWords]
	}

	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	maxFreq := 0.0
	if len(entries) > 0 {
		maxFreq = entries[0].freq
	}

	x, yTop := padding, padding
	rowHeight := 0
	for i, e := range entries {
		size := minFontSize
		if maxFreq > 0 {
			size += (maxFontSize - minFontSize) * (e.freq / maxFreq)
		}

		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create font face: %w", err)
		}

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(palette[i%len(palette)]),
			Face: face,
		}

		wordWidth := d.MeasureString(e.word).Ceil()
		wordHeight := face.Metrics().Height.Ceil()

		if x+wordWidth+padding > imageWidth && x > padding {
			x = padding
			yTop += rowHeight + padding
			rowHeight = 0
		}
		if yTop+wordHeight+padding > imageHeight {
			face.Close()
			break
		}

		d.Dot = fixed.P(x, yTop+face.Metrics().Ascent.Ceil())
		d.DrawString(e.word)
		face.Close()

		x += wordWidth + 2*padding
		if wordHeight > rowHeight {
			rowHeight = wordHeight
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
