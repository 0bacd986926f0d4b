// Package dmi implements a reader for the DMI icon container format.
//
// A DMI file is an ordinary PNG spritesheet carrying its icon metadata in a
// zTXt (or tEXt) chunk with the keyword "Description". The metadata names a
// sequence of states; each state spans one or more directions and one or
// more animation frames, laid out as consecutive cells across the sheet.
//
// This package only decodes. Writing DMI files back out is not supported.
package dmi
