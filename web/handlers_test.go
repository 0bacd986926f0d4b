package web

import (
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-dmi/dmi/dmitest"
	"badc0de.net/pkg/go-dmi/ttesting"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "mob.dmi")
	raw := dmitest.Bytes(16, 16,
		dmitest.State{Name: "idle", Dirs: 4, Frames: 1},
		dmitest.State{Name: "walk", Dirs: 1, Frames: 3, Delay: "1,2,1"},
	)
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := NewHandler([]string{p})
	if err != nil {
		t.Fatalf("failed to load handler: %s", err)
	}
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %s", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStillEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := get(t, srv.URL+"/icon/mob/state/0/still?dir=2")
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)
	ttesting.AssertEqualString(t, "content_type", resp.Header.Get("Content-Type"), "image/png")

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("body is not a png: %s", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 16)
}

func TestAnimEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := get(t, srv.URL+"/icon/mob/state/1/anim/0")
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)
	ttesting.AssertEqualString(t, "content_type", resp.Header.Get("Content-Type"), "image/gif")

	g, err := gif.DecodeAll(resp.Body)
	if err != nil {
		t.Fatalf("body is not a gif: %s", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(g.Image), 3)
}

func TestAnimRejectsStillState(t *testing.T) {
	srv := testServer(t)

	// State 0 has a single frame and never animates.
	resp := get(t, srv.URL+"/icon/mob/state/0/anim/0")
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusNotFound)
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{
		"/icon/nope",
		"/icon/mob/state/9/still",
		"/icon/mob/state/0/still?dir=7",
	} {
		resp := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s: got %d; want %d", path, resp.StatusCode, http.StatusNotFound)
		}
	}
}

func TestETagRoundtrip(t *testing.T) {
	srv := testServer(t)

	first := get(t, srv.URL+"/icon/mob/state/0/still")
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on first response")
	}

	req, _ := http.NewRequest("GET", srv.URL+"/icon/mob/state/0/still", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusNotModified)
}

func TestIndexPages(t *testing.T) {
	srv := testServer(t)

	resp := get(t, srv.URL+"/")
	ttesting.AssertEqualInt(t, "index_status", resp.StatusCode, http.StatusOK)

	resp = get(t, srv.URL+"/icon/mob")
	ttesting.AssertEqualInt(t, "icon_status", resp.StatusCode, http.StatusOK)
	ttesting.AssertEqualString(t, "icon_type", resp.Header.Get("Content-Type"), "text/html; charset=utf-8")
}
