// Package watcher triggers rebuilds when files under the input directory
// change. Events are debounced so editors that write in bursts cause a single
// rebuild.
package watcher

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one directory tree and invokes a callback after changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	callback func()
	debounce time.Duration

	mu    sync.Mutex // guards timer; written by watchLoop, read by Close
	timer *time.Timer
}

// New starts watching watchDir recursively.
func New(watchDir string, callback func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		callback: callback,
		debounce: 500 * time.Millisecond,
	}

	err = filepath.WalkDir(watchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsWatcher.Add(path)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("cannot add watch directory: %w", err)
	}

	go w.watchLoop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// resetTimer restarts the debounce window.
func (w *Watcher) resetTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.callback)
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need to be watched too.
			if event.Op&fsnotify.Create != 0 {
				w.watcher.Add(event.Name)
			}
			// Debounce: restart the timer on every event.
			w.resetTimer()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		}
	}
}
