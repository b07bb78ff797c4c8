// Package watch reports changes made to a vault by other focuslog processes.
package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Kind int

const (
	SessionsChanged Kind = iota
	ActiveChanged
	AppsChanged
	TagsChanged
)

func (k Kind) String() string {
	switch k {
	case SessionsChanged:
		return "sessions"
	case ActiveChanged:
		return "active"
	case AppsChanged:
		return "apps"
	case TagsChanged:
		return "tags"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind Kind
	Path string
}

const defaultDebounce = 150 * time.Millisecond

// Watcher coalesces fsnotify events under the vault into one Event per kind.
type Watcher struct {
	fs        *fsnotify.Watcher
	vaultPath string
	stateDir  string
	events    chan Event
	done      chan struct{}
	stopOnce  sync.Once
	logger    *slog.Logger
	delay     time.Duration

	mu      sync.Mutex
	pending map[Kind]*time.Timer
}

func New(vaultPath, stateDir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fs:        fsw,
		vaultPath: vaultPath,
		stateDir:  stateDir,
		events:    make(chan Event, 16),
		done:      make(chan struct{}),
		logger:    logger,
		delay:     defaultDebounce,
		pending:   make(map[Kind]*time.Timer),
	}, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start registers the state dir and every directory below sessions/.
func (w *Watcher) Start() error {
	for _, dir := range []string{w.stateDir, w.sessionsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := w.fs.Add(w.stateDir); err != nil {
		return err
	}
	if err := w.addTree(w.sessionsDir()); err != nil {
		return err
	}
	go w.loop()
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fs.Close()
		w.mu.Lock()
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) sessionsDir() string {
	return filepath.Join(w.vaultPath, "sessions")
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fs.Add(path); addErr != nil {
			w.logger.Warn("watch directory", "path", path, "error", addErr)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// new day directories appear under sessions/ as notes get written
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addTree(event.Name)
		}
	}
	kind, ok := w.classify(event.Name)
	if !ok {
		return
	}
	w.logger.Debug("vault change", "kind", kind.String(), "path", event.Name, "op", event.Op.String())
	w.debounce(kind, event.Name)
}

func (w *Watcher) classify(path string) (Kind, bool) {
	if strings.HasPrefix(path, w.sessionsDir()+string(filepath.Separator)) {
		return SessionsChanged, true
	}
	if filepath.Dir(path) != w.stateDir {
		return 0, false
	}
	switch filepath.Base(path) {
	case "active-session.json":
		return ActiveChanged, true
	case "apps.yaml":
		return AppsChanged, true
	case "tags.yaml":
		return TagsChanged, true
	default:
		return 0, false
	}
}

func (w *Watcher) debounce(kind Kind, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[kind]; ok {
		timer.Stop()
	}
	w.pending[kind] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, kind)
		w.mu.Unlock()
		select {
		case w.events <- Event{Kind: kind, Path: path}:
		case <-w.done:
		default:
			// a reload of this kind is already queued
		}
	})
}
