// Package ogimage renders 1200x630 Open Graph preview cards for proposal
// pages.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"eip_explorer/internal/metrics"
	"eip_explorer/proposal"
)

const (
	cardWidth  = 1200
	cardHeight = 630
	marginX    = 80
)

// Card describes one preview image.
type Card struct {
	Family proposal.Family
	Number int
	Title  string
	Status string
	IsERC  bool
}

// Renderer produces PNG cards. Fonts are parsed once at construction; an
// optional template image supplies the background.
type Renderer struct {
	template   image.Image
	headline   font.Face
	body       font.Face
	badge      font.Face
	background color.RGBA
}

// NewRenderer builds a renderer. templatePath may be empty, in which case
// a flat dark background is used.
func NewRenderer(templatePath string) (*Renderer, error) {
	boldFont, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regularFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	headline, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: 88, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	body, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: 44, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	badge, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: 30, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		headline:   headline,
		body:       body,
		badge:      badge,
		background: color.RGBA{R: 0x12, G: 0x16, B: 0x20, A: 0xFF},
	}
	if templatePath != "" {
		f, err := os.Open(templatePath)
		if err != nil {
			return nil, fmt.Errorf("open template: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		r.template = img
	}
	return r, nil
}

// Render produces the PNG bytes for one card.
func (r *Renderer) Render(card Card) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	if r.template != nil {
		draw.Draw(img, img.Bounds(), r.template, r.template.Bounds().Min, draw.Src)
	} else {
		draw.Draw(img, img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	}

	label := strings.ToUpper(string(card.Family))
	if card.Family == proposal.FamilyEIP && card.IsERC {
		label = "ERC"
	}
	headline := fmt.Sprintf("%s-%d", label, card.Number)
	r.drawString(img, r.headline, headline, marginX, 200, color.RGBA{0xF7, 0xFA, 0xFC, 0xFF})

	lines := wrap(r.body, card.Title, cardWidth-2*marginX)
	if len(lines) > 3 {
		lines = lines[:3]
		lines[2] += "…"
	}
	y := 290
	for _, line := range lines {
		r.drawString(img, r.body, line, marginX, y, color.RGBA{0xCB, 0xD5, 0xE0, 0xFF})
		y += 60
	}

	r.drawBadge(img, card.Status, marginX, 520)

	metrics.IncOGRendered()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBadge(img *image.RGBA, status string, x, y int) {
	if status == "" {
		status = "Draft"
	}
	// Go fonts carry no emoji glyphs, so the badge shows the bare status
	// word on the status color.
	info := proposal.StatusFor(status)
	text := status

	d := &font.Drawer{Face: r.badge}
	width := d.MeasureString(text).Ceil()
	padX, padY := 24, 16
	rect := image.Rect(x, y-30-padY, x+width+2*padX, y+padY)
	draw.Draw(img, rect, image.NewUniform(parseHexColor(info.Color)), image.Point{}, draw.Src)
	r.drawString(img, r.badge, text, x+padX, y, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
}

func (r *Renderer) drawString(img *image.RGBA, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap breaks s into lines no wider than maxWidth pixels. Words longer
// than a line are emitted on their own.
func wrap(face font.Face, s string, maxWidth int) []string {
	d := &font.Drawer{Face: face}
	var lines []string
	var current string
	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.MeasureString(candidate).Ceil() <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func parseHexColor(s string) color.RGBA {
	c := color.RGBA{A: 0xFF}
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{0x4A, 0x55, 0x68, 0xFF}
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{0x4A, 0x55, 0x68, 0xFF}
	}
	c.R, c.G, c.B = r, g, b
	return c
}
