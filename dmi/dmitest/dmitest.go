// Package dmitest synthesizes small DMI files in memory for tests.
//
// Real DMI files come out of the DreamMaker editor; tests should not depend
// on checked-in binaries, so this package builds an equivalent file from
// scratch: a PNG spritesheet with every cell filled with a distinct color,
// plus a zTXt Description chunk spliced in front of IEND.
package dmitest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// State describes one icon state to synthesize.
type State struct {
	Name     string
	Dirs     int
	Frames   int
	Delay    string // raw delay list, e.g. "1,2,1"; empty omits the key
	Loop     int
	Rewind   bool
	Movement bool
}

// CellColor returns the fill color of the sheet cell with the passed global
// index. Distinct per cell, so tests can check which cell a decoded image
// came from.
func CellColor(i int) color.NRGBA {
	return color.NRGBA{R: uint8(i), G: uint8(i >> 8), B: 0xC8, A: 0xFF}
}

// Bytes builds a complete DMI file. It panics on failure; it is a test
// helper and a failure means the test itself is broken.
func Bytes(cellW, cellH int, states ...State) []byte {
	cells := 0
	for _, s := range states {
		cells += s.Dirs * s.Frames
	}

	// Square-ish grid, the way the editor packs sheets.
	cols := 1
	for cols*cols < cells {
		cols++
	}
	rows := (cells + cols - 1) / cols
	if rows == 0 {
		rows = 1
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	for i := 0; i < cells; i++ {
		r := image.Rect((i%cols)*cellW, (i/cols)*cellH, (i%cols+1)*cellW, (i/cols+1)*cellH)
		draw.Draw(sheet, r, image.NewUniform(CellColor(i)), image.Point{}, draw.Src)
	}

	var enc bytes.Buffer
	if err := png.Encode(&enc, sheet); err != nil {
		panic(err)
	}
	raw := enc.Bytes()

	// Splice the metadata chunk in front of IEND (the final 12 bytes of
	// anything image/png produces).
	var out bytes.Buffer
	out.Write(raw[:len(raw)-12])
	out.Write(textChunk(describe(cellW, cellH, states)))
	out.Write(raw[len(raw)-12:])
	return out.Bytes()
}

func describe(cellW, cellH int, states []State) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# BEGIN DMI\nversion = 4.0\n\twidth = %d\n\theight = %d\n", cellW, cellH)
	for _, s := range states {
		fmt.Fprintf(&b, "state = %q\n\tdirs = %d\n\tframes = %d\n", s.Name, s.Dirs, s.Frames)
		if s.Delay != "" {
			fmt.Fprintf(&b, "\tdelay = %s\n", s.Delay)
		}
		if s.Loop != 0 {
			fmt.Fprintf(&b, "\tloop = %d\n", s.Loop)
		}
		if s.Rewind {
			fmt.Fprintf(&b, "\trewind = 1\n")
		}
		if s.Movement {
			fmt.Fprintf(&b, "\tmovement = 1\n")
		}
	}
	fmt.Fprintf(&b, "# END DMI\n")
	return b.String()
}

func textChunk(text string) []byte {
	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	zw.Write([]byte(text))
	zw.Close()

	data := append([]byte("Description\x00\x00"), zbuf.Bytes()...)

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(len(data)))
	out.WriteString("zTXt")
	out.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte("zTXt"))
	crc.Write(data)
	binary.Write(&out, binary.BigEndian, crc.Sum32())
	return out.Bytes()
}
