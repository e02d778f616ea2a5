package treeconf

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/treeconf/treeconf/debug"
	"github.com/treeconf/treeconf/parse"
	"github.com/treeconf/treeconf/tree"
)

// LoadFile replaces the model's tree with the parsed contents of path.
// The format follows the file extension and the new root keeps the
// model's current root name.
func (m *Model) LoadFile(path string) error {
	root, err := parse.ParseFile(path, parse.ParseRoot(m.Root().Name()))
	if err != nil {
		return err
	}
	return m.SetRoot(root)
}

// A Reloader watches a configuration file and replaces the model's
// tree when the file changes on disk. Rewrites that parse to a tree
// hashing identically to the current version are skipped, so editor
// save storms do not publish duplicate versions.
type Reloader struct {
	model    *Model
	path     string
	watcher  *fsnotify.Watcher
	onReload func(error)
	wg       sync.WaitGroup
}

// NewReloader watches path and reloads m whenever the file is
// rewritten. onReload, if non-nil, runs after each reload attempt
// with its error. Close stops the watcher.
func NewReloader(m *Model, path string, onReload func(error)) (*Reloader, error) {
	if m == nil {
		return nil, fmt.Errorf("reloader: %w", tree.ErrNilArg)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the file itself. Editors that
	// replace the file on save would drop a watch on the path.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	r := &Reloader{
		model:    m,
		path:     path,
		watcher:  w,
		onReload: onReload,
	}
	r.wg.Add(1)
	go r.run()
	return r, nil
}

// Close stops watching and waits for the event loop to exit.
func (r *Reloader) Close() error {
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

func (r *Reloader) run() {
	defer r.wg.Done()
	name := filepath.Base(r.path)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debug.Reload() {
				debug.Logf("reload event %v %s\n", ev.Op, ev.Name)
			}
			changed, err := r.reload()
			if err == nil && !changed {
				continue
			}
			if r.onReload != nil {
				r.onReload(err)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			if r.onReload != nil {
				r.onReload(fmt.Errorf("watch %s: %w", r.path, err))
			}
		}
	}
}

// reload parses the watched file and publishes the result. It reports
// whether a new version was published; a parse hashing identically to
// the current tree publishes nothing.
func (r *Reloader) reload() (bool, error) {
	root, err := parse.ParseFile(r.path, parse.ParseRoot(r.model.Root().Name()))
	if err != nil {
		return false, err
	}
	if tree.Hash(root) == tree.Hash(r.model.Root()) {
		if debug.Reload() {
			debug.Logf("reload %s: unchanged\n", r.path)
		}
		return false, nil
	}
	if err := r.model.SetRoot(root); err != nil {
		return false, err
	}
	return true, nil
}
