package oauth

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"apsmcp/pkg/logging"
)

const (
	// DefaultWatchDebounce coalesces the events of one atomic file replace.
	DefaultWatchDebounce = 250 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 5 * time.Second
)

// SessionWatcher calls OnChange when the session file is written, replaced
// or removed by anyone, including another apsmcp process.
type SessionWatcher struct {
	path     string
	onChange func()
	debounce time.Duration
	poll     time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool
	timer     *time.Timer
	lastMod   time.Time
	lastSeen  bool
}

// NewSessionWatcher creates a watcher for path.
func NewSessionWatcher(path string, onChange func()) *SessionWatcher {
	return &SessionWatcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultWatchDebounce,
		poll:     DefaultPollInterval,
	}
}

// Start begins watching. The parent directory is created if needed because
// the file itself may not exist yet.
func (w *SessionWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.stopCh = make(chan struct{})
	w.running = true

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		logging.Warn("SessionWatcher", "Cannot create %s, falling back to polling: %v", dir, err)
		go w.pollForChanges(w.stopCh)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("SessionWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges(w.stopCh)
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		logging.Warn("SessionWatcher", "Failed to watch %s, falling back to polling: %v", dir, err)
		_ = watcher.Close()
		go w.pollForChanges(w.stopCh)
		return nil
	}

	w.fsWatcher = watcher
	go w.processEvents(w.stopCh, watcher.Events, watcher.Errors)

	logging.Debug("SessionWatcher", "Watching %s for session changes", w.path)
	return nil
}

// Stop ends watching. Pending notifications are dropped.
func (w *SessionWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *SessionWatcher) processEvents(stopCh <-chan struct{}, events <-chan fsnotify.Event, errs <-chan error) {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("SessionWatcher", "Session file event: %s", event.Op)
			w.trigger()
		case err, ok := <-errs:
			if !ok {
				return
			}
			logging.Error("SessionWatcher", err, "fsnotify error")
		}
	}
}

func (w *SessionWatcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	w.changed()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if w.changed() {
				w.trigger()
			}
		}
	}
}

// changed compares the file's presence and mtime with the last poll.
func (w *SessionWatcher) changed() bool {
	info, err := os.Stat(w.path)
	exists := err == nil

	w.mu.Lock()
	defer w.mu.Unlock()

	var mod time.Time
	if exists {
		mod = info.ModTime()
	}
	diff := exists != w.lastSeen || !mod.Equal(w.lastMod)
	w.lastSeen = exists
	w.lastMod = mod
	return diff
}

func (w *SessionWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running && w.onChange != nil {
			w.onChange()
		}
	})
}
