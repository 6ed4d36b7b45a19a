// Package monitor imports documents dropped into an inbox directory.
package monitor

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docdesk/internal/sidecar"
)

// Settle is how long a file must stay quiet before it is imported.
const Settle = 300 * time.Millisecond

// Result reports what happened to one inbox file.
type Result struct {
	DocumentID int64
	Duplicate  bool
}

// Importer turns an inbox file (absolute path) into a stored document and
// removes it from the inbox.
type Importer interface {
	Import(ctx context.Context, path string) (Result, error)
}

// EventCallback is called after each import. kind is "imported" or
// "duplicate"; path is relative to the inbox root.
type EventCallback func(kind, path string, res Result)

// Scan imports every document already sitting in the inbox.
func Scan(ctx context.Context, root string, imp Importer, logger *slog.Logger, cb EventCallback) error {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && candidate(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		importOne(ctx, root, p, imp, logger, cb)
	}
	return nil
}

// Watch starts an fsnotify watcher on the inbox and imports files once
// they have settled, until ctx is cancelled. New subdirectories are
// watched as they appear. A sidecar change re-queues its document.
func Watch(ctx context.Context, root string, imp Importer, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("monitor: started", slog.String("inbox", root))

	pending := map[string]struct{}{}
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func(p string) {
		pending[p] = struct{}{}
		if settleTimer == nil {
			settleTimer = time.NewTimer(Settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(Settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("monitor: stopped")
			return nil

		case <-settleCh:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			clear(pending)
			slices.Sort(batch)
			for _, p := range batch {
				if _, err := os.Stat(p); err != nil {
					continue
				}
				importOne(ctx, root, p, imp, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			p := ev.Name
			if info, statErr := os.Stat(p); statErr == nil && info.IsDir() {
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				if addErr := addDirsRecursive(w, p); addErr != nil {
					logger.Warn("monitor: add new dir failed",
						slog.String("path", p),
						slog.String("error", addErr.Error()))
					continue
				}
				_ = filepath.WalkDir(p, func(sub string, d fs.DirEntry, err error) error {
					if err == nil && !d.IsDir() && candidate(sub) {
						schedule(sub)
					}
					return nil
				})
				continue
			}
			if sidecar.IsSidecar(p) {
				doc := strings.TrimSuffix(p, sidecar.Suffix)
				if _, err := os.Stat(doc); err == nil {
					schedule(doc)
				}
				continue
			}
			if candidate(p) {
				schedule(p)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("monitor: error", slog.String("error", watchErr.Error()))
		}
	}
}

func importOne(ctx context.Context, root, p string, imp Importer, logger *slog.Logger, cb EventCallback) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return
	}
	res, err := imp.Import(ctx, p)
	if err != nil {
		logger.Warn("monitor: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	kind := "imported"
	if res.Duplicate {
		kind = "duplicate"
	}
	logger.Info("monitor: "+kind, slog.String("path", rel), slog.Int64("document_id", res.DocumentID))
	if cb != nil {
		cb(kind, rel, res)
	}
}

// candidate skips sidecars and hidden or temporary files.
func candidate(p string) bool {
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".part") {
		return false
	}
	return !sidecar.IsSidecar(base)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
