package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the path of a changed configuration file.
type ChangeFunc func(path string)

// Watcher reports changes to one configuration file.
type Watcher struct {
	fw     *fsnotify.Watcher
	file   string
	logger *slog.Logger

	mu        sync.RWMutex
	listeners []ChangeFunc

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// NewWatcher creates a watcher for path. It subscribes to the parent
// directory because editors often replace a file by renaming over it.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:     fw,
		file:   filepath.Clean(path),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fw.Add(filepath.Dir(w.file)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// OnChange registers fn. Listeners run on the watcher goroutine in
// registration order.
func (w *Watcher) OnChange(fn func(string)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Start dispatches change events until Stop is called.
func (w *Watcher) Start() {
	w.logger.Debug("config watcher started", "file", w.file)
	defer w.logger.Debug("config watcher stopped", "file", w.file)

	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.logger.Debug("config file changed", "file", ev.Name, "op", ev.Op.String())
				w.fire(ev.Name)
			}
		}
	}
}

// relevant keeps writes and creates of the watched file; siblings in the
// same directory are ignored.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.file {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// StartAsync runs Start in a new goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends Start and releases the fsnotify handle. Extra calls are no-ops.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) fire(path string) {
	w.mu.RLock()
	listeners := append([]ChangeFunc(nil), w.listeners...)
	w.mu.RUnlock()

	for _, fn := range listeners {
		fn(path)
	}
}
