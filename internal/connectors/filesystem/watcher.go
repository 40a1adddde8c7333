package filesystem

import (
	"context"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// Watcher emits pages for HTML files created or written in a directory.
type Watcher struct {
	dir string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Watch starts watching and returns a channel of pages. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.Page, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, err
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	pages := make(chan domain.Page)
	go func() {
		defer close(pages)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				page, ok := w.handleFsEvent(event)
				if !ok {
					continue
				}
				select {
				case pages <- page:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", w.dir, err)
			}
		}
	}()
	return pages, nil
}

// handleFsEvent maps a filesystem event to a page. Only creates and writes
// of visible HTML files produce one.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (domain.Page, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return domain.Page{}, false
	}
	if !IsPageFile(event.Name) {
		return domain.Page{}, false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return domain.Page{}, false
	}
	page, err := ReadPage(event.Name)
	if err != nil {
		logger.Warn("read %s: %v", event.Name, err)
		return domain.Page{}, false
	}
	return page, true
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
