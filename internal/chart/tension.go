// Package chart renders a tension-balance PNG for a measurement session:
// each spoke drawn radially around a wheel outline, line length scaled by
// tension, with the recommended range shown as a shaded ring.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

const (
	Width  = 480
	Height = 520
)

var (
	background = color.RGBA{24, 26, 32, 255}
	rimColor   = color.RGBA{90, 95, 110, 255}
	bandColor  = color.RGBA{56, 80, 56, 255}
	textColor  = color.RGBA{220, 222, 228, 255}

	inRangeColor = color.RGBA{108, 196, 120, 255}
	overColor    = color.RGBA{226, 98, 98, 255}
	underColor   = color.RGBA{110, 150, 230, 255}
	unknownColor = color.RGBA{130, 130, 130, 255}
)

// Render draws the session chart. Readings from both sides share one wheel,
// spread evenly around it in the order they were read back (left side first,
// then right).
func Render(readings []models.TensionReading, rng tension.TensionRange) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	cx, cy := Width/2, Width/2
	maxR := float64(Width)/2 - 30

	// Tension scale: zero at the hub, the range max (or the largest
	// observed tension if it exceeds the range) at the rim.
	scaleMax := rng.MaxTension
	for _, r := range readings {
		if r.Tension.Valid && r.Tension.Float64 > scaleMax {
			scaleMax = r.Tension.Float64
		}
	}
	if scaleMax <= 0 {
		scaleMax = 1
	}

	// Recommended band ring.
	if rng.MaxTension > rng.MinTension {
		inner := maxR * rng.MinTension / scaleMax
		outer := maxR * rng.MaxTension / scaleMax
		drawRing(img, cx, cy, inner, outer, bandColor)
	}

	drawCircle(img, cx, cy, maxR, rimColor)
	drawCircle(img, cx, cy, 12, rimColor)

	n := len(readings)
	if n > 0 {
		for i, r := range readings {
			angle := 2 * math.Pi * float64(i) / float64(n)
			var length float64
			c := unknownColor
			if r.Tension.Valid {
				length = maxR * r.Tension.Float64 / scaleMax
				switch r.RangeStatus {
				case models.RangeInRange:
					c = inRangeColor
				case models.RangeOver, models.RangeAboveTable:
					c = overColor
				case models.RangeUnder, models.RangeBelowTable:
					c = underColor
				}
			} else {
				length = maxR * 0.25
			}
			drawSpoke(img, cx, cy, angle, length, c)
		}
	}

	legend := fmt.Sprintf("%d readings  range %.0f-%.0f kgf", n, rng.MinTension, rng.MaxTension)
	if rng.MixedTypes {
		legend += fmt.Sprintf("  (mixed: L max %.0f / R max %.0f)", rng.LeftMax, rng.RightMax)
	}
	drawLabel(img, 16, Width+24, legend)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSpoke(img *image.RGBA, cx, cy int, angle, length float64, c color.RGBA) {
	steps := int(length)
	for s := 0; s <= steps; s++ {
		r := float64(s)
		x := cx + int(r*math.Cos(angle))
		y := cy + int(r*math.Sin(angle))
		img.SetRGBA(x, y, c)
	}
}

func drawCircle(img *image.RGBA, cx, cy int, radius float64, c color.RGBA) {
	steps := int(2 * math.Pi * radius)
	for s := 0; s < steps; s++ {
		angle := 2 * math.Pi * float64(s) / float64(steps)
		x := cx + int(radius*math.Cos(angle))
		y := cy + int(radius*math.Sin(angle))
		img.SetRGBA(x, y, c)
	}
}

func drawRing(img *image.RGBA, cx, cy int, inner, outer float64, c color.RGBA) {
	innerSq, outerSq := inner*inner, outer*outer
	x0, x1 := cx-int(outer)-1, cx+int(outer)+1
	y0, y1 := cy-int(outer)-1, cy+int(outer)+1
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			d := dx*dx + dy*dy
			if d >= innerSq && d <= outerSq {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{textColor},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
