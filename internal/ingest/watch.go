package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/logging"
)

// Watcher re-runs Run over root whenever a recognized source file under it
// changes, debouncing rapid saves. Grounded on
// internal/core/mangle_watcher.go's MangleWatcher: an fsnotify.Watcher
// feeding a debounce map drained by a ticker, started non-blockingly in its
// own goroutine and torn down via a stop channel. Where the teacher's
// watcher repairs one changed .mg file at a time, this watcher re-ingests
// the whole tree on settle, since insert_node is an idempotent upsert and a
// single file's import graph can touch atoms anywhere in the module.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	root        string
	store       *graphstore.Store
	cfg         config.Config
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	onReingest func(Result, error)
}

// NewWatcher creates a Watcher rooted at root, adding every directory under
// root (minus the scanner's own hidden-dir/ignore-glob rules) to the
// underlying fsnotify watch list.
func NewWatcher(root string, store *graphstore.Store, cfg config.Config, onReingest func(Result, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := 500 * time.Millisecond
	if cfg.Ingest.WatchDebounceMS > 0 {
		debounce = time.Duration(cfg.Ingest.WatchDebounceMS) * time.Millisecond
	}

	w := &Watcher{
		watcher:     fsw,
		root:        root,
		store:       store,
		cfg:         cfg,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		onReingest:  onReingest,
	}

	if err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if name != "." && strings.HasPrefix(name, ".") && !allowedHiddenDirs[name] {
			return filepath.SkipDir
		}
		if matchesIgnoreGlob(path, cfg.Atomizer.IgnoreGlobs) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	}); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching in a background goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	logging.CLI("ingest watcher: watching %s", w.root)
	go w.run(ctx)
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	settled := false
	for _, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			settled = true
			break
		}
	}
	if settled {
		w.debounceMap = make(map[string]time.Time)
	}
	w.mu.Unlock()

	if !settled {
		return
	}

	result, err := Run(ctx, w.root, w.store, w.cfg)
	if w.onReingest != nil {
		w.onReingest(result, err)
	}
}
