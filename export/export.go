package export

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dmi/dmi"
)

// Extension is the file name suffix every input must carry.
const Extension = ".dmi"

// NotFoundError reports a referenced input file that does not exist.
type NotFoundError struct{ Path string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file %q does not exist", e.Path)
}

// BadExtensionError reports an input file without the expected extension.
type BadExtensionError struct{ Path string }

func (e *BadExtensionError) Error() string {
	return fmt.Sprintf("input file %q does not have the %s extension", e.Path, Extension)
}

// Summary collects independent per-file and per-artifact failures from one
// run. Artifact writes are independent, so the exporter attempts every
// planned artifact and reports what failed instead of stopping at the first.
type Summary struct{ Errs []error }

func (e *Summary) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d export failures: %s", len(e.Errs), strings.Join(msgs, "; "))
}

// Exporter walks input files, plans paths and writes artifacts.
type Exporter struct {
	Config Config
}

// ValidateFiles checks existence and extension of every input up front.
// The first offender terminates the run before anything is written.
func (e *Exporter) ValidateFiles(files []string) error {
	for _, p := range files {
		if _, err := os.Stat(p); err != nil {
			return &NotFoundError{Path: p}
		}
		if !strings.EqualFold(filepath.Ext(p), Extension) {
			return &BadExtensionError{Path: p}
		}
	}
	return nil
}

// Run exports every passed container under Config.OutputRoot.
//
// Validation and output root errors abort the whole run. Past that point a
// failure is scoped as narrowly as possible: a parse failure skips only that
// file, a write failure only that artifact, and Run keeps going, returning
// everything collected as a *Summary.
func (e *Exporter) Run(files []string) error {
	if len(files) == 0 {
		return errors.New("no input files")
	}
	if err := e.ValidateFiles(files); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Config.OutputRoot, 0o755); err != nil {
		return errors.Wrap(err, "creating output root")
	}

	var failed []error
	for _, p := range files {
		if err := e.exportFile(p); err != nil {
			glog.Errorf("export of %s failed: %v", p, err)
			failed = append(failed, errors.Wrap(err, filepath.Base(p)))
		}
	}
	if len(failed) > 0 {
		return &Summary{Errs: failed}
	}
	return nil
}

func (e *Exporter) exportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening container")
	}
	icon, err := dmi.Decode(f)
	f.Close()
	if err != nil {
		return errors.Wrap(err, "parsing container")
	}
	defer icon.Close()

	warnDuplicateStates(icon)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	glog.V(1).Infof("exporting %s: %d states", path, len(icon.States))

	w := artifactWriter{cfg: e.Config, base: base}
	for _, st := range icon.States {
		if e.Config.Still {
			for frame := 0; frame < st.Frames; frame++ {
				for dir := 0; dir < st.Dirs; dir++ {
					w.still(st, dir, frame)
				}
			}
		}
		if e.Config.Animated && st.Animated() {
			for dir := 0; dir < st.Dirs; dir++ {
				w.anim(st, dir)
			}
		}
	}

	if len(w.errs) > 0 {
		return &Summary{Errs: w.errs}
	}
	return nil
}

func warnDuplicateStates(icon *dmi.Icon) {
	seen := map[string]int{}
	for _, st := range icon.States {
		seen[st.Name]++
	}
	for name, n := range seen {
		if n > 1 {
			glog.Warningf("container has %d states named %q; later output overwrites earlier", n, name)
		}
	}
}

// artifactWriter writes one container's artifacts. Each format's directory
// is created lazily, right before that format's first artifact; a failed
// artifact is recorded and does not stop the remaining ones.
type artifactWriter struct {
	cfg  Config
	base string

	stillDir, animDir dirState
	errs              []error
}

type dirState int

const (
	dirUnmade dirState = iota
	dirMade
	dirFailed
)

func (w *artifactWriter) still(st *dmi.State, dir, frame int) {
	img := st.Image(dir, frame)
	if img == nil {
		w.record(errors.Errorf("state %q has no image at direction %d frame %d", st.Name, dir, frame))
		return
	}
	if !w.ensure(&w.stillDir, w.cfg.StillDir(w.base)) {
		return
	}
	p := w.cfg.StillPath(w.base, st, dir, frame)
	if err := writeAtomic(p, func(out io.Writer) error { return png.Encode(out, img) }); err != nil {
		w.record(errors.Wrapf(err, "writing %s", p))
	}
}

func (w *artifactWriter) anim(st *dmi.State, dir int) {
	frames, err := Assemble(st, dir)
	if err != nil {
		w.record(err)
		return
	}
	if !w.ensure(&w.animDir, w.cfg.AnimDir(w.base)) {
		return
	}
	p := w.cfg.AnimPath(w.base, st, dir)
	err = writeAtomic(p, func(out io.Writer) error {
		return EncodeGIF(out, frames, st.Loop, st.Rewind)
	})
	if err != nil {
		w.record(errors.Wrapf(err, "writing %s", p))
	}
}

// ensure creates the directory on first use. A creation failure is recorded
// once; artifacts aimed at a failed directory are skipped silently since
// their failure mode would repeat the same message.
func (w *artifactWriter) ensure(st *dirState, path string) bool {
	switch *st {
	case dirMade:
		return true
	case dirFailed:
		return false
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		w.record(errors.Wrapf(err, "creating %s", path))
		*st = dirFailed
		return false
	}
	*st = dirMade
	return true
}

func (w *artifactWriter) record(err error) {
	w.errs = append(w.errs, err)
}

// writeAtomic writes through a temporary sibling and renames into place, so
// a failed encode never leaves a partial artifact behind.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
