package dmi

// This file contains code directly related to decoding the
// dmi file format: the PNG chunk walk that digs out the icon
// metadata, and the metadata text parser.

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/iter"
)

// descriptionKeyword is the keyword of the text chunk holding icon metadata.
const descriptionKeyword = "Description"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Icon is a decoded DMI container: the spritesheet plus the ordered set of
// states described by its metadata.
type Icon struct {
	// Version is the metadata version string, e.g. "4.0".
	Version string

	// Width and Height are the dimensions of a single cell. Every image in
	// every state of the icon has exactly these dimensions.
	Width, Height int

	// States are listed in the order the metadata declares them. Names are
	// not guaranteed unique.
	States []*State

	sheet image.Image
	cols  int
}

// State is a single named icon state: a grid of cells addressed by
// [direction, frame].
type State struct {
	Name   string
	Dirs   int
	Frames int

	// Delays holds per-frame display times in ticks of a tenth of a second.
	// After decoding, len(Delays) == Frames whenever Frames > 1, and Delays
	// is nil otherwise.
	Delays []float64

	// Loop is the number of times an animation plays; 0 means forever.
	Loop int
	// Rewind makes the animation play back to the start after the last frame.
	Rewind bool
	// Movement marks the state as a movement animation.
	Movement bool
	// Hotspot is the click hotspot as {x, y, frame}, zero when absent.
	Hotspot [3]int

	icon   *Icon
	offset int // index of the state's first cell on the sheet
}

type chunkHeader struct {
	Length uint32
	Type   [4]byte
}

// Decode reads a whole DMI file from r and returns the parsed Icon.
//
// The caller owns the returned Icon and should arrange for Close to run once
// the decoded images are no longer needed.
func Decode(r io.Reader) (*Icon, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read dmi: %s", err)
	}

	desc, err := description(raw)
	if err != nil {
		return nil, err
	}

	icon, err := parseDescription(desc)
	if err != nil {
		return nil, err
	}

	sheet, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("could not decode dmi spritesheet: %s", err)
	}

	if err := icon.attach(sheet); err != nil {
		return nil, err
	}
	return icon, nil
}

// DecodeFile opens and decodes the DMI file at the passed path.
func DecodeFile(path string) (*Icon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dmi: %s", err)
	}
	defer f.Close()
	return Decode(f)
}

// Close releases the decoded spritesheet. Images previously returned by
// State.Image stay valid; further State.Image calls return nil.
func (ic *Icon) Close() error {
	ic.sheet = nil
	return nil
}

// State returns the first state with the passed name, or nil.
func (ic *Icon) State(name string) *State {
	for _, s := range ic.States {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// attach binds the decoded sheet to the icon and checks that the metadata's
// cell count actually fits the sheet grid.
func (ic *Icon) attach(sheet image.Image) error {
	b := sheet.Bounds()
	if ic.Width <= 0 || ic.Height <= 0 {
		return fmt.Errorf("dmi metadata carries no cell size")
	}
	if b.Dx()%ic.Width != 0 {
		return fmt.Errorf("sheet width %d is not a multiple of cell width %d", b.Dx(), ic.Width)
	}
	if b.Dy()%ic.Height != 0 {
		return fmt.Errorf("sheet height %d is not a multiple of cell height %d", b.Dy(), ic.Height)
	}
	ic.cols = b.Dx() / ic.Width

	cells := 0
	for _, s := range ic.States {
		s.icon = ic
		s.offset = cells
		cells += s.Dirs * s.Frames
	}
	if have := ic.cols * (b.Dy() / ic.Height); cells > have {
		return fmt.Errorf("metadata describes %d cells, sheet only holds %d", cells, have)
	}

	ic.sheet = sheet
	return nil
}

// Animated reports whether the state is eligible for animated export.
// Single-frame states never are.
func (s *State) Animated() bool {
	return s.Frames > 1
}

// Image returns the cell at [dir, frame] as a view into the spritesheet.
// It returns nil when the indices are out of range or the icon was closed.
func (s *State) Image(dir, frame int) image.Image {
	if s.icon == nil || s.icon.sheet == nil {
		return nil
	}
	if dir < 0 || dir >= s.Dirs || frame < 0 || frame >= s.Frames {
		return nil
	}

	// Cells of a state are frame-major: all directions of frame 0, then all
	// directions of frame 1, and so on.
	idx := s.offset + frame*s.Dirs + dir
	x := (idx % s.icon.cols) * s.icon.Width
	y := (idx / s.icon.cols) * s.icon.Height
	r := image.Rect(x, y, x+s.icon.Width, y+s.icon.Height)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	si, ok := s.icon.sheet.(subImager)
	if !ok {
		return nil
	}
	return si.SubImage(r)
}

// Delay returns the display time of the passed frame. Delays are stored in
// ticks of a tenth of a second; anything below one tick clamps to one tick.
func (s *State) Delay(frame int) time.Duration {
	t := 1.0
	if frame >= 0 && frame < len(s.Delays) && s.Delays[frame] > 0 {
		t = s.Delays[frame]
	}
	return time.Duration(t * float64(100*time.Millisecond))
}

// description walks the PNG chunks in raw and returns the inflated metadata
// text from the Description chunk.
func description(raw []byte) (string, error) {
	if !bytes.HasPrefix(raw, pngSignature) {
		return "", fmt.Errorf("not a png: bad signature")
	}

	r := bytes.NewReader(raw[len(pngSignature):])
	for {
		var h chunkHeader
		if err := binary.Read(r, binary.BigEndian, &h); err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("dmi metadata chunk not found")
			}
			return "", fmt.Errorf("could not read png chunk header: %s", err)
		}

		typ := string(h.Type[:])
		if typ == "IEND" {
			return "", fmt.Errorf("dmi metadata chunk not found")
		}

		data := make([]byte, h.Length)
		if _, err := io.ReadFull(r, data); err != nil {
			return "", fmt.Errorf("could not read %s chunk: %s", typ, err)
		}
		var crc uint32
		if err := binary.Read(r, binary.BigEndian, &crc); err != nil {
			return "", fmt.Errorf("could not read %s chunk crc: %s", typ, err)
		}

		if typ != "zTXt" && typ != "tEXt" {
			continue
		}
		nul := bytes.IndexByte(data, 0)
		if nul < 0 || string(data[:nul]) != descriptionKeyword {
			continue
		}

		if typ == "tEXt" {
			return string(data[nul+1:]), nil
		}

		// zTXt: a compression method byte follows the keyword, then a zlib
		// stream. Method 0 (deflate) is the only one defined.
		if len(data) < nul+2 || data[nul+1] != 0 {
			return "", fmt.Errorf("unsupported zTXt compression method")
		}
		zr, err := zlib.NewReader(bytes.NewReader(data[nul+2:]))
		if err != nil {
			return "", fmt.Errorf("could not inflate dmi metadata: %s", err)
		}
		defer zr.Close()
		text, err := io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("could not inflate dmi metadata: %s", err)
		}
		return string(text), nil
	}
}

// parseDescription parses the metadata text into an Icon without a sheet.
func parseDescription(text string) (*Icon, error) {
	icon := &Icon{}
	var cur *State

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("bad dmi metadata line %q", line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if key == "state" {
			name, err := unquote(val)
			if err != nil {
				return nil, fmt.Errorf("bad state name %s: %s", val, err)
			}
			cur = &State{Name: name, Dirs: 1, Frames: 1}
			icon.States = append(icon.States, cur)
			continue
		}

		if cur == nil {
			switch key {
			case "version":
				icon.Version = val
			case "width":
				w, err := strconv.Atoi(val)
				if err != nil {
					return nil, fmt.Errorf("bad width %q: %s", val, err)
				}
				icon.Width = w
			case "height":
				h, err := strconv.Atoi(val)
				if err != nil {
					return nil, fmt.Errorf("bad height %q: %s", val, err)
				}
				icon.Height = h
			}
			// Unknown header keys are skipped, same as unknown state keys
			// below; the format grows keys over time.
			continue
		}

		if err := cur.set(key, val); err != nil {
			return nil, fmt.Errorf("state %q: %s", cur.Name, err)
		}
	}

	if icon.Version == "" {
		return nil, fmt.Errorf("dmi metadata carries no version")
	}
	for _, s := range icon.States {
		s.normalize()
	}
	return icon, nil
}

func (s *State) set(key, val string) error {
	switch key {
	case "dirs":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("bad dirs %q", val)
		}
		s.Dirs = n
	case "frames":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("bad frames %q", val)
		}
		s.Frames = n
	case "delay":
		for _, part := range strings.Split(val, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return fmt.Errorf("bad delay %q", val)
			}
			s.Delays = append(s.Delays, f)
		}
	case "loop":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("bad loop %q", val)
		}
		s.Loop = n
	case "rewind":
		s.Rewind = val == "1"
	case "movement":
		s.Movement = val == "1"
	case "hotspot":
		parts := strings.Split(val, ",")
		if len(parts) != 3 {
			return fmt.Errorf("bad hotspot %q", val)
		}
		for i, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("bad hotspot %q", val)
			}
			s.Hotspot[i] = n
		}
	}
	return nil
}

// normalize makes len(Delays) == Frames hold for animated states, so that
// downstream frame/delay pairing can treat a mismatch as a hard error.
func (s *State) normalize() {
	if s.Frames <= 1 {
		s.Delays = nil
		return
	}
	if len(s.Delays) > s.Frames {
		s.Delays = s.Delays[:s.Frames]
	}
	for range iter.N(s.Frames - len(s.Delays)) {
		s.Delays = append(s.Delays, 1)
	}
}

func unquote(v string) (string, error) {
	if strings.HasPrefix(v, `"`) {
		return strconv.Unquote(v)
	}
	return v, nil
}
