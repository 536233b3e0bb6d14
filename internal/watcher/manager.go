package watcher

import (
	"log"
	"sync"
)

// Manager owns at most one live Watcher and makes start/stop/switch safe to
// call from multiple goroutines.
type Manager struct {
	mu       sync.Mutex
	watcher  *Watcher
	callback func()
}

// NewManager creates a manager that invokes callback on changes.
func NewManager(callback func()) *Manager {
	return &Manager{callback: callback}
}

// Start begins watching watchDir, replacing any previous watcher. An empty
// directory stops watching without starting a new one.
func (m *Manager) Start(watchDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	if watchDir == "" {
		return nil
	}

	w, err := New(watchDir, m.callback)
	if err != nil {
		return err
	}
	m.watcher = w
	log.Printf("Watching %s", watchDir)
	return nil
}

// Stop closes the current watcher if one is running.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
}

// IsRunning reports whether a watcher is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watcher != nil
}
