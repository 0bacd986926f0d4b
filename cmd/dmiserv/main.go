// dmiserv serves loaded DMI icons for browser preview.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/go-dmi/web"
)

var (
	listenAddress      = flag.String("listen_address", ":8080", "http listen address for dmiserv")
	debugListenAddress = flag.String("debug_listen_address", "", "where the debug server will listen")
)

func main() {
	flagutil.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.dmi [file.dmi ...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	figure.NewFigure("dmiserv", "", true).Print()

	h, err := web.NewHandler(flag.Args())
	if err != nil {
		glog.Exitf("loading icons: %v", err)
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	glog.Infoln("starting dmiserv on", *listenAddress)

	var g errgroup.Group
	g.Go(func() error {
		return http.ListenAndServe(*listenAddress, handlers.CombinedLoggingHandler(os.Stdout, r))
	})
	if *debugListenAddress != "" {
		http.HandleFunc("/debug/minimetrics", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "runtime.NumGoroutine(): %d\n", runtime.NumGoroutine())
		})
		g.Go(func() error {
			return http.ListenAndServe(*debugListenAddress, nil)
		})
	}
	glog.Fatal(g.Wait())
}
