package synth

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Loader owns the current source table and optionally hot-reloads it
// when the file changes. An invalid rewrite keeps the previous table.
type Loader struct {
	path      string
	hotReload bool
	logger    *slog.Logger
	mu        sync.RWMutex
	table     *Table
	version   int64
	watchers  []chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewLoader creates a loader for the given sources file.
func NewLoader(path string, hotReload bool, logger *slog.Logger) *Loader {
	return &Loader{
		path:      path,
		hotReload: hotReload,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Load reads and validates the sources file, swapping the active table
// on success.
func (l *Loader) Load() (*Table, error) {
	table, err := LoadTable(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.table = table
	l.version = time.Now().UnixNano()
	l.mu.Unlock()

	l.logger.Info("Sources table loaded",
		"path", l.path,
		"sources", len(table.Sources),
		"version", l.version)

	l.notifyWatchers()
	return table, nil
}

// Table returns the currently active table.
func (l *Loader) Table() *Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table
}

// Version returns the load version of the active table.
func (l *Loader) Version() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Subscribe returns a channel that receives a tick whenever the table is
// swapped. Used by the refresh scheduler to regenerate immediately after
// a reload.
func (l *Loader) Subscribe() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{}, 1)
	l.watchers = append(l.watchers, ch)
	return ch
}

func (l *Loader) notifyWatchers() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// WatchForChanges starts a polling watcher over the sources file when hot
// reload is enabled. A changed file is re-validated before it replaces
// the active table; a broken edit logs and keeps the old one.
func (l *Loader) WatchForChanges() error {
	if !l.hotReload {
		l.logger.Info("Hot reload disabled")
		return nil
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("cannot watch sources file: %w", err)
	}
	go l.watchLoop(info.ModTime())
	l.logger.Info("Watching sources file for changes", "path", l.path)
	return nil
}

// Stop terminates the watcher goroutine.
func (l *Loader) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Loader) watchLoop(lastMod time.Time) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			info, err := os.Stat(l.path)
			if err != nil {
				l.logger.Error("Error watching sources file", "error", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			if _, err := l.Load(); err != nil {
				l.logger.Warn("Sources file changed but is invalid, keeping previous table", "error", err)
			}
		}
	}
}
