package export

import (
	"image"
	"time"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dmi/dmi"
)

// Frame pairs one cell of an animated state with its display time.
type Frame struct {
	Image    image.Image
	Duration time.Duration
}

// Assemble gathers the ordered frame sequence for one direction of an
// animated state. The result has exactly st.Frames entries in ascending
// frame order, entry i paired with the state's delay for frame i.
//
// A frame/delay count mismatch is an error here, before anything reaches an
// encoder; it is never papered over by truncating or padding.
func Assemble(st *dmi.State, dir int) ([]Frame, error) {
	if !st.Animated() {
		return nil, errors.Errorf("state %q has a single frame, nothing to assemble", st.Name)
	}
	if dir < 0 || dir >= st.Dirs {
		return nil, errors.Errorf("state %q has no direction %d", st.Name, dir)
	}
	if len(st.Delays) != st.Frames {
		return nil, errors.Errorf("state %q carries %d delays for %d frames", st.Name, len(st.Delays), st.Frames)
	}

	frames := make([]Frame, 0, st.Frames)
	for f := 0; f < st.Frames; f++ {
		img := st.Image(dir, f)
		if img == nil {
			return nil, errors.Errorf("state %q has no image at direction %d frame %d", st.Name, dir, f)
		}
		frames = append(frames, Frame{Image: img, Duration: st.Delay(f)})
	}
	return frames, nil
}
