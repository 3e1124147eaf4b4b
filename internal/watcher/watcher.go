package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/ChatPDF/internal/uploader"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

type Uploader interface {
	HandleFileUpload(ctx context.Context, files []uploader.SelectedFile)
}

// Watcher uploads PDFs that appear in a folder. Events are collected until the folder
// has been quiet for the debounce period, so a file still being copied is sent once.
type Watcher struct {
	watcher  *fsnotify.Watcher
	uploader Uploader
	debounce time.Duration
	logger   *logger_i.Logger
}

func NewWatcher(up Uploader, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  w,
		uploader: up,
		debounce: debounce,
		logger:   logger_i.NewLogger("Watcher"),
	}, nil
}

// Run blocks until ctx is done or the watcher is stopped.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("Watching folder", "dir", dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isPDFName(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending[event.Name] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]struct{})
		}
	}
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]uploader.SelectedFile, 0, len(paths))
	for _, p := range paths {
		f, err := uploader.FromPath(p)
		if err != nil {
			// removed again before the folder settled
			w.logger.Debug("Skipping file", "path", p, "error", err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return
	}
	w.logger.Info("Uploading new files", "count", len(files))
	w.uploader.HandleFileUpload(ctx, files)
}

func isPDFName(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
