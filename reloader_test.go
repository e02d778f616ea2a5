package treeconf

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/treeconf/treeconf/tree"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeConfig(t, path, "server:\n  host: a\n")
	m := New(tree.NewNode("config"))
	if err := m.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if m.Root().Name() != "config" {
		t.Errorf("root name = %q", m.Root().Name())
	}
	got, _ := m.Get("server.host")
	if !reflect.DeepEqual(got, []any{"a"}) {
		t.Errorf("got %v", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	m := New(nil)
	if err := m.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("no error for missing file")
	}
}

func TestLoadFileDetachesTracked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeConfig(t, path, "server:\n  host: a\n")
	m := testModel()
	sel := tree.NewSelector("server.host")
	if err := m.Track(sel); err != nil {
		t.Fatal(err)
	}
	if err := m.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if d, _ := m.Detached(sel); !d {
		t.Error("entry attached across file load")
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeConfig(t, path, "port: 1\n")
	m := New(tree.NewNode("config"))
	r := &Reloader{model: m, path: path}

	changed, err := r.reload()
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("first reload published nothing")
	}
	got, _ := m.Get("port")
	if !reflect.DeepEqual(got, []any{int64(1)}) {
		t.Errorf("got %v", got)
	}

	// The same content hashes identically and publishes nothing.
	before := m.Handler()
	changed, err = r.reload()
	if err != nil {
		t.Fatal(err)
	}
	if changed || m.Handler() != before {
		t.Error("version published for unchanged file")
	}

	writeConfig(t, path, "port: 2\n")
	changed, err = r.reload()
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("changed file published nothing")
	}
	got, _ = m.Get("port")
	if !reflect.DeepEqual(got, []any{int64(2)}) {
		t.Errorf("got %v", got)
	}

	// A broken file reports its error and keeps the current version.
	writeConfig(t, path, "port: [1,\n")
	if _, err := r.reload(); err == nil {
		t.Fatal("no error for broken file")
	}
	got, _ = m.Get("port")
	if !reflect.DeepEqual(got, []any{int64(2)}) {
		t.Errorf("version lost on broken reload: %v", got)
	}
}

func TestReloaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	writeConfig(t, path, "port: 1\n")
	m := New(tree.NewNode("config"))

	reloaded := make(chan error, 8)
	r, err := NewReloader(m, path, func(err error) { reloaded <- err })
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	writeConfig(t, path, "port: 2\n")
	deadline := time.After(5 * time.Second)
	for {
		if got, _ := m.Get("port"); reflect.DeepEqual(got, []any{int64(2)}) {
			return
		}
		select {
		case <-reloaded:
		case <-deadline:
			got, _ := m.Get("port")
			t.Fatalf("file change not applied, port = %v", got)
		}
	}
}

func TestNewReloaderErrors(t *testing.T) {
	if _, err := NewReloader(nil, "x.yaml", nil); !errors.Is(err, tree.ErrNilArg) {
		t.Errorf("nil model: got %v, want ErrNilArg", err)
	}
	m := New(nil)
	missing := filepath.Join(t.TempDir(), "absent", "x.yaml")
	if _, err := NewReloader(m, missing, nil); err == nil {
		t.Error("no error for missing watch directory")
	}
}
