package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebouncedCallback(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := New(dir, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// A burst of writes should collapse into one callback.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestCloseDuringEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, func() {})
	if err != nil {
		t.Fatal(err)
	}

	// Close while events are still arriving; the debounce timer must not
	// be touched unguarded by the watch loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			os.WriteFile(filepath.Join(dir, "b.js"), []byte("y"), 0644)
		}
	}()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	<-done
}
