// Package watcher reloads the catalog when its file changes on disk.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const defaultDebounce = 400 * time.Millisecond

// FileWatcher calls onChange once a burst of writes to one file has settled.
// The parent directory is watched so atomic replace-by-rename is seen too.
type FileWatcher struct {
	path     string
	onChange func(ctx context.Context) error
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fw    *fsnotify.Watcher
	done  chan struct{}
	once  sync.Once
}

type Option func(*FileWatcher)

func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) { w.debounce = d }
}

func New(path string, onChange func(ctx context.Context) error, opts ...Option) *FileWatcher {
	w := &FileWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch is registered and keeps
// running until ctx is cancelled or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}
	w.fw = fw
	log.Info().Str("path", w.path).Dur("debounce", w.debounce).Msg("watching catalog file")
	go w.run(ctx)
	return nil
}

func (w *FileWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule(ctx)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", w.path).Msg("watcher error")
		}
	}
}

func (w *FileWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		if err := w.onChange(ctx); err != nil {
			log.Error().Err(err).Str("path", w.path).Msg("catalog reload after change failed")
			return
		}
		log.Info().Str("path", w.path).Msg("catalog reloaded after change")
	})
}

// Stop ends the watch. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if w.fw != nil {
			_ = w.fw.Close()
		}
	})
}
