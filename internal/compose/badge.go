package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	badgeMinPt = 12
	badgeMaxPt = 160
	badgePad   = 8
)

var (
	badgeFontOnce sync.Once
	badgeFont     *opentype.Font
	badgeFontErr  error
)

func loadBadgeFont() (*opentype.Font, error) {
	badgeFontOnce.Do(func() {
		badgeFont, badgeFontErr = opentype.Parse(gobold.TTF)
	})
	return badgeFont, badgeFontErr
}

// renderBadge rasterizes text into the square badge texture: black
// background, white bold text, word-wrapped, with the font size
// binary-searched so the wrapped block fits the box.
func renderBadge(text string) (*image.RGBA, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty badge text")
	}
	fnt, err := loadBadgeFont()
	if err != nil {
		return nil, fmt.Errorf("load badge font: %w", err)
	}

	box := BadgeBoxSize - 2*badgePad

	// Largest size whose wrapped block fits the box.
	lo, hi := badgeMinPt, badgeMaxPt
	bestSize := badgeMinPt
	var bestLines []string
	for lo <= hi {
		mid := (lo + hi) / 2
		face, err := newBadgeFace(fnt, float64(mid))
		if err != nil {
			return nil, err
		}
		lines, fits := wrapToBox(face, text, box)
		face.Close()
		if fits {
			bestSize = mid
			bestLines = lines
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if bestLines == nil {
		face, err := newBadgeFace(fnt, float64(badgeMinPt))
		if err != nil {
			return nil, err
		}
		bestLines, _ = wrapToBox(face, text, box)
		face.Close()
	}

	face, err := newBadgeFace(fnt, float64(bestSize))
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, BadgeBoxSize, BadgeBoxSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	metrics := face.Metrics()
	lineH := metrics.Height.Ceil()
	blockH := lineH * len(bestLines)
	y := badgePad + (box-blockH)/2 + metrics.Ascent.Ceil()
	d := font.Drawer{
		Dst: img,
		Src: image.NewUniform(color.White),
	}
	d.Face = face
	for _, line := range bestLines {
		d.Dot = fixed.P(badgePad, y)
		d.DrawString(line)
		y += lineH
	}
	return img, nil
}

func newBadgeFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("badge face at %.0fpt: %w", size, err)
	}
	return face, nil
}

// wrapToBox word-wraps text to the box width at the given face and
// reports whether the wrapped block also fits vertically. Explicit
// newlines start new paragraphs; a single word wider than the box
// fails the fit.
func wrapToBox(face font.Face, text string, box int) ([]string, bool) {
	d := font.Drawer{Face: face}
	maxW := fixed.I(box)
	fits := true

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			candidate := cur + " " + w
			if d.MeasureString(candidate) <= maxW {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}

	lineH := face.Metrics().Height.Ceil()
	if lineH*len(lines) > box {
		fits = false
	}
	for _, line := range lines {
		if d.MeasureString(line) > maxW {
			fits = false
		}
	}
	return lines, fits
}
