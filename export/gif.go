package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
)

// EncodeGIF writes an assembled frame sequence as a looping GIF.
//
// loop follows icon metadata semantics: 0 plays forever, N plays N times.
// rewind appends the sequence played back to the start, endpoints excluded,
// so a 4-frame animation plays 0 1 2 3 2 1.
func EncodeGIF(w io.Writer, frames []Frame, loop int, rewind bool) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}

	seq := frames
	if rewind && len(frames) > 2 {
		seq = append([]Frame(nil), frames...)
		for i := len(frames) - 2; i >= 1; i-- {
			seq = append(seq, frames[i])
		}
	}

	g := &gif.GIF{}
	quantizer := quantize.MedianCutQuantizer{}
	for _, fr := range seq {
		b := fr.Image.Bounds()
		pal := quantizer.Quantize(make(color.Palette, 0, 255), fr.Image)

		// Index 0 stays transparent; the quantized palette fills the rest.
		// Drawing with Over maps fully transparent pixels to it, which keeps
		// the frame's alpha through the paletted round trip.
		dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()),
			append(color.Palette{color.Transparent}, pal...))
		draw.Draw(dst, dst.Bounds(), fr.Image, b.Min, draw.Over)

		g.Image = append(g.Image, dst)
		g.Delay = append(g.Delay, int(fr.Duration/(10*time.Millisecond)))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0

	switch {
	case loop <= 0:
		g.LoopCount = 0 // forever
	case loop == 1:
		g.LoopCount = -1 // show once
	default:
		g.LoopCount = loop - 1
	}

	return gif.EncodeAll(w, g)
}
