// ABOUTME: Half-block truecolor rendering of RGBA pictures
// ABOUTME: Each terminal cell shows two vertical pixels using the upper half block
package ui

import (
	"image"
	"image/color"
	"strconv"
	"strings"
)

const (
	upperHalf = "▀"
	resetSGR  = "\x1b[0m"
)

// renderFrame draws img as rows of half blocks, foreground for the upper
// pixel and background for the lower. An odd last row is padded with black.
func renderFrame(img *image.RGBA) string {
	bounds := img.Bounds()
	var b strings.Builder
	b.Grow(bounds.Dx() * ((bounds.Dy() + 1) / 2) * 24)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var lastTop, lastBottom color.RGBA
		first := true
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := color.RGBA{A: 0xff}
			if y+1 < bounds.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			if first || top != lastTop {
				writeSGR(&b, 38, top)
			}
			if first || bottom != lastBottom {
				writeSGR(&b, 48, bottom)
			}
			b.WriteString(upperHalf)
			lastTop, lastBottom, first = top, bottom, false
		}
		b.WriteString(resetSGR)
		b.WriteByte('\n')
	}
	return b.String()
}

// writeSGR emits a 24-bit colour escape; layer is 38 (fg) or 48 (bg)
func writeSGR(b *strings.Builder, layer int, c color.RGBA) {
	b.WriteString("\x1b[")
	b.WriteString(strconv.Itoa(layer))
	b.WriteString(";2;")
	b.WriteString(strconv.Itoa(int(c.R)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.G)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.B)))
	b.WriteByte('m')
}
