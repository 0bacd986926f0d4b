// dmiexport extracts still frames and animations from DMI icon files into a
// directory tree of PNGs and GIFs.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-dmi/export"
)

var (
	outputDir       = flag.String("output_dir", "out", "directory to place exported artifacts under")
	still           = flag.Bool("still", true, "whether to export still pngs")
	animated        = flag.Bool("animated", true, "whether to export animated gifs")
	noContainerDirs = flag.Bool("no_container_dirs", false, "place all output directly under -output_dir; file names get the source file's base name as a prefix")
	noFormatDirs    = flag.Bool("no_format_dirs", false, "do not separate still/ and animated/ output into subdirectories")
)

func main() {
	flagutil.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.dmi [file.dmi ...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	e := export.Exporter{Config: export.Config{
		OutputRoot:    *outputDir,
		Still:         *still,
		Animated:      *animated,
		ContainerDirs: !*noContainerDirs,
		FormatDirs:    !*noFormatDirs,
	}}

	err := e.Run(files)
	glog.Flush()
	switch err.(type) {
	case nil:
	case *export.NotFoundError:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	case *export.BadExtensionError:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(2)
	case *export.Summary:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(3)
	default:
		fmt.Fprintf(os.Stderr, "[CRITICAL] %v\n", err)
		os.Exit(3)
	}
}
