// Package watcher notices when the dataset file changes on disk so the
// viewer can reload it. It uses fsnotify and falls back to polling on
// network filesystems or when asked to.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/pantheon/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnvVar forces polling mode when truthy.
const ForcePollEnvVar = "PANTHEON_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnError sets a callback for watch errors, including ErrFileRemoved.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify entirely.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher reports changes to a single file on Changed.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onError      func(error)
	forcePoll    bool

	mu        sync.RWMutex
	started   bool
	polling   bool
	fsType    FilesystemType
	lastMtime time.Time
	lastSize  int64
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	cancel    context.CancelFunc

	changed chan struct{}
}

// NewWatcher prepares a watcher for path. Nothing is watched until Start.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onError:      func(error) {},
		changed:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. The file need not exist yet.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.path)
	switch {
	case err == nil:
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	case os.IsPermission(err):
		return ErrPermission
	default:
		w.lastMtime, w.lastSize = time.Time{}, 0
	}

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnvVar) || isRemoteFilesystem(w.fsType)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory is watched so atomic rename-over writes are seen.
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}

	debug.Log("watcher: watching %s (fs=%s polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

// Stop ends watching. Changed is left open so a pending receive just blocks.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Changed receives one value per debounced change.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// IsPolling reports whether polling mode is active.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether Start has been called without a matching Stop.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// FilesystemType returns the classification made by Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the stat interval.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(w.path)
		if err != nil {
			w.mu.RLock()
			existed := !w.lastMtime.IsZero()
			w.mu.RUnlock()
			switch {
			case os.IsNotExist(err):
				if existed {
					w.onError(ErrFileRemoved)
				}
			case os.IsPermission(err):
				w.onError(ErrPermission)
			default:
				w.onError(err)
			}
			continue
		}

		w.mu.Lock()
		changed := info.ModTime().After(w.lastMtime) || info.Size() != w.lastSize
		if changed {
			w.lastMtime, w.lastSize = info.ModTime(), info.Size()
		}
		w.mu.Unlock()
		if changed {
			w.debouncer.Trigger(w.notify)
		}
	}
}

func (w *Watcher) notify() {
	if !w.IsStarted() {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
