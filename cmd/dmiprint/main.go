// dmiprint draws icon states on the terminal. Debug tool.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-dmi/dmi"
	"badc0de.net/pkg/go-dmi/imageprint"
)

var (
	stateName = flag.String("state", "", "name of the state to print; empty picks the first state")
	dirIdx    = flag.Int("dir", 0, "direction to print")
	frameIdx  = flag.Int("frame", 0, "frame to print")
	strip     = flag.Bool("strip", false, "print every frame of the direction side by side")

	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with the rasterm library (kitty, iterm, sixel)")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", false, "whether to scale the image down to the terminal size")
)

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.dmi\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	icon, err := dmi.DecodeFile(flag.Arg(0))
	if err != nil {
		glog.Exitf("could not load %s: %v", flag.Arg(0), err)
	}
	defer icon.Close()

	st := pickState(icon)

	var img image.Image
	if *strip {
		var cells []image.Image
		for f := 0; f < st.Frames; f++ {
			if cell := st.Image(*dirIdx, f); cell != nil {
				cells = append(cells, cell)
			}
		}
		img = imageprint.Strip(cells)
	} else {
		img = st.Image(*dirIdx, *frameIdx)
	}
	if img == nil || img.Bounds().Empty() {
		glog.Exitf("state %q has no cell at direction %d frame %d", st.Name, *dirIdx, *frameIdx)
	}

	out(img)
}

func pickState(icon *dmi.Icon) *dmi.State {
	if len(icon.States) == 0 {
		glog.Exitf("%s has no states", flag.Arg(0))
	}
	if *stateName == "" {
		return icon.States[0]
	}
	st := icon.State(*stateName)
	if st == nil {
		var names []string
		for _, s := range icon.States {
			names = append(names, s.Name)
		}
		glog.Exitf("no state %q; available: %s", *stateName, strings.Join(names, ", "))
	}
	return st
}
