// Package web serves decoded DMI icons for browser preview.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"image/png"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-dmi/dmi"
	"badc0de.net/pkg/go-dmi/export"
)

// generation is baked into ETags; bump if the way responses are generated
// changes.
const generation = 1

// Handler holds the loaded icons. Icons are read-only after load, so
// handlers can serve them concurrently without locking.
type Handler struct {
	icons map[string]*dmi.Icon
	order []string
}

// NewHandler loads every passed DMI file. Icons are keyed by the file's base
// name with the extension stripped.
func NewHandler(paths []string) (*Handler, error) {
	h := &Handler{icons: map[string]*dmi.Icon{}}
	for _, p := range paths {
		icon, err := dmi.DecodeFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", p)
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if _, ok := h.icons[name]; ok {
			return nil, errors.Errorf("two inputs share the base name %q", name)
		}
		h.icons[name] = icon
		h.order = append(h.order, name)
	}
	return h, nil
}

// RegisterRoutes attaches all preview routes to the passed router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/icon/{name}", h.iconHandler)
	r.HandleFunc("/icon/{name}/state/{idx:[0-9]+}/still", h.stillHandler)
	r.HandleFunc("/icon/{name}/state/{idx:[0-9]+}/anim/{dir:[0-9]+}", h.animHandler)
}

// state digs the addressed state out of the request vars. On failure it has
// already written the error response and returns nil.
func (h *Handler) state(w http.ResponseWriter, r *http.Request) (*dmi.State, string, int) {
	vars := mux.Vars(r)
	icon, ok := h.icons[vars["name"]]
	if !ok {
		http.Error(w, "no such icon", http.StatusNotFound)
		return nil, "", 0
	}
	idx, err := strconv.Atoi(vars["idx"])
	if err != nil || idx < 0 || idx >= len(icon.States) {
		http.Error(w, "no such state", http.StatusNotFound)
		return nil, "", 0
	}
	return icon.States[idx], vars["name"], idx
}

func cached(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public; max-age=3600")
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	return false
}

func (h *Handler) stillHandler(w http.ResponseWriter, r *http.Request) {
	st, name, idx := h.state(w, r)
	if st == nil {
		return
	}

	dir, frame := 0, 0
	if v := r.URL.Query().Get("dir"); v != "" {
		dir, _ = strconv.Atoi(v)
		// ignore invalid dir; Image rejects out-of-range below
	}
	if v := r.URL.Query().Get("frame"); v != "" {
		frame, _ = strconv.Atoi(v)
		// ignore invalid frame
	}

	etag := fmt.Sprintf(`W/"still:%d:%s:%d:%d:%d"`, generation, name, idx, dir, frame)
	if cached(w, r, etag) {
		return
	}

	img := st.Image(dir, frame)
	if img == nil {
		http.Error(w, "no such cell", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}

func (h *Handler) animHandler(w http.ResponseWriter, r *http.Request) {
	st, name, idx := h.state(w, r)
	if st == nil {
		return
	}
	dir, _ := strconv.Atoi(mux.Vars(r)["dir"])

	etag := fmt.Sprintf(`W/"anim:%d:%s:%d:%d"`, generation, name, idx, dir)
	if cached(w, r, etag) {
		return
	}

	frames, err := export.Assemble(st, dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	w.WriteHeader(http.StatusOK)
	if err := export.EncodeGIF(w, frames, st.Loop, st.Rewind); err != nil {
		glog.Errorf("encoding %s state %d dir %d: %v", name, idx, dir, err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>go-dmi preview</title></head><body>
<h1>Loaded icons</h1>
<ul>
{{range .}}<li><a href="/icon/{{.}}">{{.}}</a></li>
{{end}}</ul>
</body></html>
`))

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, h.order); err != nil {
		glog.Errorf("rendering index: %v", err)
	}
}

type stateView struct {
	Index    int
	Name     string
	Dirs     int
	Frames   int
	Animated bool
	DataURL  template.URL
}

type iconView struct {
	Name   string
	States []stateView
}

var iconTemplate = template.Must(template.New("icon").Parse(`<!DOCTYPE html>
<html><head><title>{{.Name}}</title></head><body>
<h1>{{.Name}}</h1>
<table border="1" cellpadding="4">
<tr><th></th><th>state</th><th>dirs</th><th>frames</th><th>links</th></tr>
{{range .States}}<tr>
<td><img src="{{.DataURL}}" alt="{{.Name}}"></td>
<td>{{.Name}}</td><td>{{.Dirs}}</td><td>{{.Frames}}</td>
<td><a href="/icon/{{$.Name}}/state/{{.Index}}/still">still</a>{{if .Animated}} <a href="/icon/{{$.Name}}/state/{{.Index}}/anim/0">anim</a>{{end}}</td>
</tr>
{{end}}</table>
</body></html>
`))

func (h *Handler) iconHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	icon, ok := h.icons[name]
	if !ok {
		http.Error(w, "no such icon", http.StatusNotFound)
		return
	}

	view := iconView{Name: name}
	for i, st := range icon.States {
		sv := stateView{Index: i, Name: st.Name, Dirs: st.Dirs, Frames: st.Frames, Animated: st.Animated()}
		if img := st.Image(0, 0); img != nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err == nil {
				sv.DataURL = template.URL(dataurl.New(buf.Bytes(), "image/png").String())
			}
		}
		view.States = append(view.States, sv)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := iconTemplate.Execute(w, view); err != nil {
		glog.Errorf("rendering icon %s: %v", name, err)
	}
}
