package export

// This file contains the path planner: given a state's dimensionality and
// the export configuration, compute where every artifact goes.

import (
	"fmt"
	"path/filepath"

	"badc0de.net/pkg/go-dmi/dmi"
)

// Config is the immutable set of recognized export options. It is passed by
// value everywhere so the planning functions stay pure and independently
// testable.
type Config struct {
	// OutputRoot is the directory all exported artifacts land under.
	OutputRoot string

	// Still and Animated independently enable the two artifact kinds.
	Still    bool
	Animated bool

	// ContainerDirs places each container's output in a directory named
	// after the container file's base name. When off, everything lands flat
	// under OutputRoot and file names get a "{base}_" prefix so two
	// containers with same-named states cannot collide.
	ContainerDirs bool

	// FormatDirs inserts a still/ or animated/ segment between the container
	// segment and the file name.
	FormatDirs bool
}

// StillDir returns the directory still artifacts of the passed container go
// to. The driver creates it lazily, only once a still artifact is actually
// about to be written.
func (c Config) StillDir(base string) string {
	return c.dir(base, "still")
}

// AnimDir is StillDir's counterpart for animated artifacts.
func (c Config) AnimDir(base string) string {
	return c.dir(base, "animated")
}

func (c Config) dir(base, format string) string {
	parts := []string{c.OutputRoot}
	if c.ContainerDirs {
		parts = append(parts, base)
	}
	if c.FormatDirs {
		parts = append(parts, format)
	}
	return filepath.Join(parts...)
}

func (c Config) fileName(base, state string) string {
	if c.ContainerDirs {
		return state
	}
	return base + "_" + state
}

// StillPath plans the output path of the still artifact for one cell of a
// state. Suffixes appear only for the dimensions the state actually has:
// "_D{d}" when it has more than one direction, "_F{f}" when it has more
// than one frame, direction first.
func (c Config) StillPath(base string, st *dmi.State, dir, frame int) string {
	name := c.fileName(base, st.Name)
	if st.Dirs > 1 {
		name += fmt.Sprintf("_D%d", dir)
	}
	if st.Frames > 1 {
		name += fmt.Sprintf("_F%d", frame)
	}
	return filepath.Join(c.StillDir(base), name+".png")
}

// AnimPath plans the output path of the animated artifact covering all
// frames of one direction. It mirrors StillPath's direction suffix and never
// carries a frame suffix.
func (c Config) AnimPath(base string, st *dmi.State, dir int) string {
	name := c.fileName(base, st.Name)
	if st.Dirs > 1 {
		name += fmt.Sprintf("_D%d", dir)
	}
	return filepath.Join(c.AnimDir(base), name+".gif")
}
