// Package overlay draws region outlines and their slot numbers over a frame.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/score-ocr-go/domain/region"
)

// Style controls outline color and thickness.
type Style struct {
	Color        color.RGBA
	PreviewColor color.RGBA
	Thickness    int
}

// DefaultColor is the outline color used when none is configured.
const DefaultColor = "#00ff00"

func DefaultStyle() Style {
	green := color.RGBA{0, 255, 0, 255}
	return Style{Color: green, PreviewColor: green, Thickness: 2}
}

// ParseStyle builds a Style from hex colors such as "#00ff00". An empty
// preview color reuses the outline color.
func ParseStyle(hex, previewHex string, thickness int) (Style, error) {
	st := DefaultStyle()
	if hex != "" {
		c, err := parseHex(hex)
		if err != nil {
			return DefaultStyle(), err
		}
		st.Color, st.PreviewColor = c, c
	}
	if previewHex != "" {
		c, err := parseHex(previewHex)
		if err != nil {
			return DefaultStyle(), err
		}
		st.PreviewColor = c
	}
	if thickness > 0 {
		st.Thickness = thickness
	}
	return st, nil
}

func parseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("overlay color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// Render returns a copy of frame with every region outlined and labelled
// with its ID at the label anchor, plus the preview rectangle if non-nil.
// The frame itself is never modified.
func Render(frame image.Image, regions []region.Region, preview *image.Rectangle, st Style) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Src)

	for _, reg := range regions {
		outline(dst, reg.Rect(), st.Color, st.Thickness)
		label(dst, reg.LabelAnchor(), reg.Label(), st.Color)
	}
	if preview != nil {
		outline(dst, preview.Canon(), st.PreviewColor, st.Thickness)
	}
	return dst
}

// Painter adapts Render to the session's painter signature.
func (st Style) Painter() func(image.Image, []region.Region, *image.Rectangle) image.Image {
	return func(frame image.Image, regions []region.Region, preview *image.Rectangle) image.Image {
		return Render(frame, regions, preview, st)
	}
}

// outline draws the four edges centered on r's border; drawing is clipped to dst.
func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA, t int) {
	if t < 1 {
		t = 1
	}
	lo, hi := t/2, t-t/2
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Min.Y+hi), // top
		image.Rect(r.Min.X-lo, r.Max.Y-lo, r.Max.X+hi, r.Max.Y+hi), // bottom
		image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Min.X+hi, r.Max.Y+hi), // left
		image.Rect(r.Max.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Max.Y+hi), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// label draws text with its baseline starting at p.
func label(dst *image.RGBA, p image.Point, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(p.X, p.Y),
	}
	d.DrawString(text)
}
