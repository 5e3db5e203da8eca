// Package watcher re-runs a handler for batches of changed source files.
package watcher

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a batch is dispatched.
const DefaultDebounce = 300 * time.Millisecond

// Matcher decides which files are watched.
type Matcher interface {
	Match(path string) bool
}

// Handler receives a sorted batch of changed files that still exist.
type Handler func(ctx context.Context, files []string)

// Watcher watches a directory tree for file changes and dispatches them in
// debounced batches.
type Watcher struct {
	rootDir      string
	matcher      Matcher
	handler      Handler
	log          logrus.FieldLogger
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceTime = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// New creates a watcher over rootDir. If matcher also reports ignored
// directories (IgnoredDir), those are not watched.
func New(rootDir string, matcher Matcher, handler Handler, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	w := &Watcher{
		rootDir:      rootDir,
		matcher:      matcher,
		handler:      handler,
		log:          quiet,
		watcher:      fw,
		debounceTime: DefaultDebounce,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := os.Stat(rootDir); err != nil {
		fw.Close()
		return nil, err
	}
	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit. It must
// only be called after Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	fireCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}
	schedule := func() {
		stopTimer()
		debounceTimer = time.AfterFunc(w.debounceTime, func() {
			select {
			case fireCh <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						w.log.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
					}
					// files written before the watch was added have no events
					if w.queueExisting(event.Name, changed) > 0 {
						schedule()
					}
					continue
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}
			changed[event.Name] = true
			schedule()

		case <-fireCh:
			w.dispatch(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("file watcher error")
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, changed map[string]bool) {
	files := make([]string, 0, len(changed))
	for path := range changed {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return
	}
	sort.Strings(files)

	w.log.WithField("files", len(files)).Debug("change batch")
	w.handler(ctx, files)
}

// shouldProcessEvent checks if an event should trigger a re-lint.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return w.matcher.Match(event.Name)
}

// queueExisting adds the matching files below a new directory to changed
// and returns how many were added.
func (w *Watcher) queueExisting(dir string, changed map[string]bool) int {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if !w.shouldWatchDirectory(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.matcher.Match(path) && !changed[path] {
			changed[path] = true
			n++
		}
		return nil
	})
	if err != nil {
		w.log.WithError(err).WithField("dir", dir).Warn("failed to scan new directory")
	}
	return n
}

// shouldWatchDirectory checks if a directory should be watched.
func (w *Watcher) shouldWatchDirectory(path string) bool {
	ig, ok := w.matcher.(interface{ IgnoredDir(string) bool })
	if !ok {
		return true
	}
	rel, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "." || !ig.IgnoredDir(rel)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// don't fail the entire watch for one directory
			w.log.WithError(err).WithField("path", path).Warn("error accessing path")
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.log.WithError(err).WithField("dir", path).Warn("failed to watch directory")
		}
		return nil
	})
}
