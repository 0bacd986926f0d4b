package dmi

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"badc0de.net/pkg/go-dmi/dmi/dmitest"
	"badc0de.net/pkg/go-dmi/ttesting"
)

func decode(t *testing.T, raw []byte) *Icon {
	t.Helper()
	icon, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode dmi: %s", err)
	}
	t.Cleanup(func() { icon.Close() })
	return icon
}

func TestDecodeMetadata(t *testing.T) {
	raw := dmitest.Bytes(32, 32,
		dmitest.State{Name: "idle", Dirs: 4, Frames: 1},
		dmitest.State{Name: "walk", Dirs: 4, Frames: 3, Delay: "1,2,1", Loop: 3, Rewind: true, Movement: true},
	)
	icon := decode(t, raw)

	ttesting.AssertEqualString(t, "version", icon.Version, "4.0")
	ttesting.AssertEqualInt(t, "width", icon.Width, 32)
	ttesting.AssertEqualInt(t, "height", icon.Height, 32)
	ttesting.AssertEqualInt(t, "states", len(icon.States), 2)

	idle := icon.States[0]
	ttesting.AssertEqualString(t, "idle/name", idle.Name, "idle")
	ttesting.AssertEqualInt(t, "idle/dirs", idle.Dirs, 4)
	ttesting.AssertEqualInt(t, "idle/frames", idle.Frames, 1)
	ttesting.AssertEqualBool(t, "idle/animated", idle.Animated(), false)
	ttesting.AssertEqualInt(t, "idle/delays", len(idle.Delays), 0)

	walk := icon.States[1]
	ttesting.AssertEqualString(t, "walk/name", walk.Name, "walk")
	ttesting.AssertEqualInt(t, "walk/dirs", walk.Dirs, 4)
	ttesting.AssertEqualInt(t, "walk/frames", walk.Frames, 3)
	ttesting.AssertEqualBool(t, "walk/animated", walk.Animated(), true)
	ttesting.AssertEqualInt(t, "walk/delays", len(walk.Delays), 3)
	ttesting.AssertEqualInt(t, "walk/loop", walk.Loop, 3)
	ttesting.AssertEqualBool(t, "walk/rewind", walk.Rewind, true)
	ttesting.AssertEqualBool(t, "walk/movement", walk.Movement, true)
	ttesting.AssertEqualDuration(t, "walk/delay1", walk.Delay(1), 200*time.Millisecond)
}

func TestDecodeDelayNormalization(t *testing.T) {
	raw := dmitest.Bytes(8, 8,
		dmitest.State{Name: "short", Dirs: 1, Frames: 4, Delay: "2,3"},
		dmitest.State{Name: "long", Dirs: 1, Frames: 2, Delay: "1,1,5,5"},
		dmitest.State{Name: "none", Dirs: 1, Frames: 3},
	)
	icon := decode(t, raw)

	short := icon.States[0]
	ttesting.AssertEqualInt(t, "short/delays", len(short.Delays), 4)
	// Missing entries pad with the one-tick default.
	ttesting.AssertEqualDuration(t, "short/delay2", short.Delay(2), 100*time.Millisecond)
	ttesting.AssertEqualDuration(t, "short/delay0", short.Delay(0), 200*time.Millisecond)

	long := icon.States[1]
	ttesting.AssertEqualInt(t, "long/delays", len(long.Delays), 2)

	none := icon.States[2]
	ttesting.AssertEqualInt(t, "none/delays", len(none.Delays), 3)
	ttesting.AssertEqualDuration(t, "none/delay0", none.Delay(0), 100*time.Millisecond)
}

func cellAt(t *testing.T, img image.Image) color.NRGBA {
	t.Helper()
	if img == nil {
		t.Fatal("got nil image")
	}
	min := img.Bounds().Min
	return color.NRGBAModel.Convert(img.At(min.X, min.Y)).(color.NRGBA)
}

func TestImageAddressing(t *testing.T) {
	raw := dmitest.Bytes(16, 16,
		dmitest.State{Name: "idle", Dirs: 4, Frames: 1},
		dmitest.State{Name: "walk", Dirs: 2, Frames: 3, Delay: "1,1,1"},
	)
	icon := decode(t, raw)

	idle, walk := icon.States[0], icon.States[1]

	for d := 0; d < 4; d++ {
		if got, want := cellAt(t, idle.Image(d, 0)), dmitest.CellColor(d); got != want {
			t.Errorf("idle dir %d: got %v; want %v", d, got, want)
		}
	}

	// walk starts after idle's 4 cells; cells are frame-major within a state.
	for f := 0; f < 3; f++ {
		for d := 0; d < 2; d++ {
			if got, want := cellAt(t, walk.Image(d, f)), dmitest.CellColor(4+f*2+d); got != want {
				t.Errorf("walk dir %d frame %d: got %v; want %v", d, f, got, want)
			}
		}
	}

	if img := walk.Image(0, 0); img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("cell bounds: got %v; want 16x16", img.Bounds())
	}
}

func TestImageOutOfRange(t *testing.T) {
	raw := dmitest.Bytes(8, 8, dmitest.State{Name: "idle", Dirs: 1, Frames: 1})
	icon := decode(t, raw)

	st := icon.States[0]
	for _, c := range [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		if img := st.Image(c[0], c[1]); img != nil {
			t.Errorf("Image(%d, %d): got image; want nil", c[0], c[1])
		}
	}
}

func TestClose(t *testing.T) {
	raw := dmitest.Bytes(8, 8, dmitest.State{Name: "idle", Dirs: 1, Frames: 1})
	icon := decode(t, raw)

	if icon.States[0].Image(0, 0) == nil {
		t.Fatal("Image before Close: got nil; want image")
	}
	icon.Close()
	if icon.States[0].Image(0, 0) != nil {
		t.Error("Image after Close: got image; want nil")
	}
}

func TestStateLookup(t *testing.T) {
	raw := dmitest.Bytes(8, 8,
		dmitest.State{Name: "a", Dirs: 1, Frames: 1},
		dmitest.State{Name: "b", Dirs: 1, Frames: 1},
	)
	icon := decode(t, raw)

	if st := icon.State("b"); st == nil || st.Name != "b" {
		t.Errorf("State(b): got %v", st)
	}
	if st := icon.State("missing"); st != nil {
		t.Errorf("State(missing): got %v; want nil", st)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not a png at all"))); err == nil {
		t.Error("garbage: got nil error")
	}

	// A PNG without a Description chunk is not a DMI.
	var plain bytes.Buffer
	png.Encode(&plain, image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	if _, err := Decode(bytes.NewReader(plain.Bytes())); err == nil {
		t.Error("plain png: got nil error")
	}
}

func TestAttachRejectsOverfullMetadata(t *testing.T) {
	icon := &Icon{
		Version: "4.0",
		Width:   8,
		Height:  8,
		States:  []*State{{Name: "idle", Dirs: 4, Frames: 4}},
	}
	// 8x8 sheet holds exactly one 8x8 cell; the metadata wants sixteen.
	if err := icon.attach(image.NewNRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Error("got nil error; want cell count mismatch")
	}
}
