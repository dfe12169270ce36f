// Package watcher reports changes to editor configuration files.
//
// Editors usually save by writing a new file and renaming it over the old
// one, which drops watches placed on the file itself. The watcher therefore
// watches each file's directory and filters events by name. Bursts of
// events are debounced into a single Change.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period used when none is given.
const DefaultDelay = 200 * time.Millisecond

// Errors returned by the watcher.
var (
	// ErrWatcherClosed is returned when operating on a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrPathNotExist is returned when a watched file does not exist.
	ErrPathNotExist = errors.New("path does not exist")
)

// Change lists the watched files that changed during one burst.
type Change struct {
	Paths []string
	Time  time.Time
}

// Watcher watches a set of files.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
	pending map[string]bool

	debouncer *Debouncer
	changes   chan Change
	errors    chan error

	closed  bool
	closeCh chan struct{}
	loopWg  sync.WaitGroup
	sendWg  sync.WaitGroup
}

// New creates a watcher that debounces events by delay.
func New(delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		pending: make(map[string]bool),
		changes: make(chan Change, 1),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	w.debouncer = NewDebouncer(delay, w.flush)

	w.loopWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching the file at path.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotExist, path)
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Changes delivers debounced changes. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors delivers watch errors. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Cancel()
	err := w.fsw.Close()

	w.loopWg.Wait()
	w.sendWg.Wait()

	close(w.changes)
	close(w.errors)
	return err
}

func (w *Watcher) processLoop() {
	defer w.loopWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Drop if nobody is reading.
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Clean(event.Name)

	w.mu.Lock()
	if w.closed || !w.files[name] {
		w.mu.Unlock()
		return
	}
	w.pending[name] = true
	w.mu.Unlock()

	w.debouncer.Call()
}

// flush delivers the pending paths as one Change.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.sendWg.Add(1)
	w.mu.Unlock()

	defer w.sendWg.Done()
	sort.Strings(paths)

	select {
	case w.changes <- Change{Paths: paths, Time: time.Now()}:
	case <-w.closeCh:
	}
}
