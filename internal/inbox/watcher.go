// Package inbox watches a drop directory and enqueues an import task for
// every spreadsheet that lands in it.
//
// Layout:
//
//	<inbox>/catalog/   catalog sheets
//	<inbox>/sales/     sales sheets; the day is taken from a YYYY-MM-DD in
//	                   the file name, otherwise today
//
// Imported files are moved to processed/ or failed/ inside their directory
// by the import task.
package inbox

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/ledger"
	"github.com/mrlokans/bookstore-assistant/internal/services"
	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

// DefaultSettleDelay is how long a file must go without writes before it is
// enqueued.
const DefaultSettleDelay = 2 * time.Second

var (
	dateInName = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	importExtensions = map[string]bool{
		".csv": true, ".tsv": true, ".txt": true,
		".xlsx": true, ".xlsm": true, ".json": true,
	}
)

// TaskEnqueuer adds a task to the background queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Options configures a Watcher.
type Options struct {
	SalesMode   string // passed through to sales tasks; empty uses the service default
	SheetName   string
	SettleDelay time.Duration
}

// Watcher turns new files in the inbox into import tasks.
type Watcher struct {
	dir      string
	enqueuer TaskEnqueuer
	opts     Options
	watcher  *fsnotify.Watcher
	now      func() time.Time

	pendingMu sync.Mutex
	pending   map[string]time.Time // path -> last write seen
	enqueued  map[string]bool
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, enqueuer TaskEnqueuer, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Watcher{
		dir:      dir,
		enqueuer: enqueuer,
		opts:     opts,
		watcher:  fsw,
		now:      time.Now,
		pending:  make(map[string]time.Time),
		enqueued: make(map[string]bool),
	}, nil
}

// Start creates the inbox directories, queues files already waiting there
// and watches for new ones until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, mode := range []importers.Mode{importers.ModeCatalog, importers.ModeSales} {
		dir := filepath.Join(w.dir, string(mode))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create inbox directory: %w", err)
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		if err := w.scan(dir); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	log.Printf("[INBOX] Watching %s", w.dir)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.enqueue(filepath.Join(dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.opts.SettleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[INBOX] Watcher error: %v", err)

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, event.Name)
		delete(w.enqueued, event.Name)
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		if _, ok := w.taskFor(event.Name); ok {
			w.pending[event.Name] = w.now()
		}
	}
}

func (w *Watcher) flushSettled() {
	w.pendingMu.Lock()
	var ready []string
	cutoff := w.now().Add(-w.opts.SettleDelay)
	for path, seen := range w.pending {
		if seen.Before(cutoff) {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range ready {
		w.enqueue(path)
	}
}

func (w *Watcher) enqueue(path string) {
	task, ok := w.taskFor(path)
	if !ok {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	w.pendingMu.Lock()
	if w.enqueued[path] {
		w.pendingMu.Unlock()
		return
	}
	w.enqueued[path] = true
	w.pendingMu.Unlock()

	id, err := w.enqueuer.Enqueue(task)
	if err != nil {
		log.Printf("[INBOX] Failed to enqueue %s: %v", path, err)
		w.pendingMu.Lock()
		delete(w.enqueued, path)
		w.pendingMu.Unlock()
		return
	}
	log.Printf("[INBOX] Queued %s import of %s (task %s)", task.Kind, filepath.Base(path), id)
}

// taskFor builds the import task for path, or reports false for files that
// are not importable spreadsheets in one of the inbox directories.
func (w *Watcher) taskFor(path string) (tasks.ImportFileTask, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return tasks.ImportFileTask{}, false
	}
	if !importExtensions[strings.ToLower(filepath.Ext(name))] {
		return tasks.ImportFileTask{}, false
	}

	task := tasks.ImportFileTask{
		Path:      path,
		SheetName: w.opts.SheetName,
		Source:    services.SourceInbox,
	}

	switch importers.Mode(filepath.Base(filepath.Dir(path))) {
	case importers.ModeCatalog:
		task.Kind = importers.ModeCatalog
	case importers.ModeSales:
		task.Kind = importers.ModeSales
		task.Mode = w.opts.SalesMode
		task.Date = w.salesDate(name)
	default:
		return tasks.ImportFileTask{}, false
	}
	return task, true
}

func (w *Watcher) salesDate(name string) string {
	for _, candidate := range dateInName.FindAllString(name, -1) {
		if ledger.ValidateDate(candidate) == nil {
			return candidate
		}
	}
	return w.now().Format(entities.DateLayout)
}
