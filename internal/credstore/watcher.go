package credstore

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"roost/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last file change
// before notifying, so a delete-then-write Set triggers one event, not two.
const DefaultDebounceInterval = 500 * time.Millisecond

// WatcherConfig holds configuration for the credential watcher.
type WatcherConfig struct {
	// Dir is the credential directory to watch.
	Dir string

	// DebounceInterval overrides the default debounce period.
	DebounceInterval time.Duration

	// OnChange is called with the provider id whose credential file
	// changed (created, rewritten or removed).
	OnChange func(providerID string)
}

// Watcher monitors the credential directory so a long-running session
// notices logins or logouts performed by another roost process.
type Watcher struct {
	mu      sync.Mutex
	config  WatcherConfig
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	running bool

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer
}

// NewWatcher creates a watcher for the given configuration.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.DebounceInterval == 0 {
		config.DebounceInterval = DefaultDebounceInterval
	}
	return &Watcher{
		config:         config,
		debounceTimers: make(map[string]*time.Timer),
	}
}

// Start begins watching the credential directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(w.config.Dir); err != nil {
		watcher.Close()
		return err
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	// Capture channels before releasing the lock to avoid racing Stop().
	eventsCh := watcher.Events
	errorsCh := watcher.Errors
	go w.processEvents(eventsCh, errorsCh)

	logging.Debug("CredStore", "watching %s for credential changes", w.config.Dir)
	return nil
}

// Stop stops the watcher. Safe to call when not running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.stopCh)
	w.watcher.Close()
	w.watcher = nil
	w.running = false
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("CredStore", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	fileName := filepath.Base(event.Name)
	if !strings.HasPrefix(fileName, keyPrefix) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	providerID := strings.TrimPrefix(fileName, keyPrefix)
	logging.Debug("CredStore", "credential file changed for provider %s", providerID)
	w.notifyDebounced(providerID)
}

// notifyDebounced fires OnChange after the debounce period, coalescing
// rapid successive events for the same provider.
func (w *Watcher) notifyDebounced(providerID string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounceTimers[providerID]; ok {
		timer.Stop()
	}

	w.debounceTimers[providerID] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback(providerID)
		}
	})
}
