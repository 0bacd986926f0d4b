// Package export turns decoded DMI icons into a directory tree of still
// PNGs and animated GIFs.
//
// File names depend on a state's dimensionality. A state with one direction
// and one frame exports as just "{name}.png"; more directions add a "_D{d}"
// suffix, more frames a "_F{f}" suffix, and both combine as "_D{d}_F{f}".
// Animated artifacts cover all frames of one direction, so they carry only
// the direction suffix.
//
// Path planning and frame assembly are pure functions over the immutable
// Config and the state's metadata; Exporter drives them and owns all
// filesystem side effects.
package export
