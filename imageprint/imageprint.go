// Package imageprint prints icon cells on the terminal. UNSUPPORTED debug
// package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/draw"
	"image/png"

	"github.com/gookit/color"
)

type dumper interface {
	Printf(s string, arg ...interface{})
}
type fmtDumperT struct{}

func (fmtDumperT) Printf(s string, arg ...interface{}) {
	fmt.Printf(s, arg...)
}

var fmtDumper fmtDumperT

func shade(col ic.Color, escapesTrueColor, blanks, noColor bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		fmt.Printf("\x1b[0m  ")
		return
	}

	var d dumper
	if noColor {
		d = &fmtDumper
	} else if escapesTrueColor {
		fmt.Printf("\x1b[48;2;%d;%d;%dm", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8))
		d = &fmtDumper
	} else {
		d = color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true)
	}

	if blanks {
		d.Printf("  ")
	} else {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			d.Printf("..")
		case a < 64:
			d.Printf("--")
		case a < 128:
			d.Printf("==")
		default:
			d.Printf("##")
		}
	}

	if escapesTrueColor {
		fmt.Printf("\x1b[0m")
	}
}

func printShaded(i image.Image, escapesTrueColor, blanks, noColor bool) {
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			shade(i.At(x, y), escapesTrueColor, blanks, noColor)
		}
		if !noColor {
			fmt.Printf("\x1b[0m")
		}
		fmt.Printf("\n")
	}
}

// Print256Color draws an image using 256color'd ascii art.
func Print256Color(i image.Image, blanks bool) {
	printShaded(i, false, blanks, false)
}

// Print24bit draws an image using 24bit color escape sequences by changing background.
func Print24bit(i image.Image, blanks bool) {
	printShaded(i, true, blanks, false)
}

// PrintNoColor draws an image without color escape sequences. Only makes
// sense with blanks=false.
func PrintNoColor(i image.Image, blanks bool) {
	printShaded(i, true, blanks, true)
}

// PrintITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func PrintITerm(i image.Image, fn string) {
	if !isTermItermWez() {
		return
	}
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	png.Encode(bEnc, i)
	fmt.Printf("\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, len(b.String()), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
}

// Strip lays the passed frames side by side with a one pixel gap, for
// printing a whole animation sequence in one go.
func Strip(frames []image.Image) image.Image {
	if len(frames) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	w, h := 0, 0
	for _, f := range frames {
		w += f.Bounds().Dx() + 1
		if f.Bounds().Dy() > h {
			h = f.Bounds().Dy()
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w-1, h))
	x := 0
	for _, f := range frames {
		r := image.Rect(x, 0, x+f.Bounds().Dx(), f.Bounds().Dy())
		draw.Draw(out, r, f, f.Bounds().Min, draw.Src)
		x += f.Bounds().Dx() + 1
	}
	return out
}
