package docservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/monitor"
	"github.com/starford/docdesk/internal/sidecar"
)

// Import stores an inbox file as a document owned by the inbox owner,
// applying its sidecar metadata, and removes the file and sidecar from
// the inbox. Content already stored is reported as a duplicate.
func (s *Service) Import(ctx context.Context, path string) (monitor.Result, error) {
	if s.inboxOwner == 0 {
		return monitor.Result{}, fmt.Errorf("docservice: no inbox owner configured: %w", apperr.ErrInvalidInput)
	}

	var meta sidecar.Meta
	metaPath := sidecar.PathFor(path)
	if raw, err := os.ReadFile(metaPath); err == nil {
		meta, err = sidecar.Parse(raw)
		if err != nil {
			s.logger.Warn("inbox: ignoring sidecar", slog.String("path", metaPath), slog.String("error", err.Error()))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return monitor.Result{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return monitor.Result{}, err
	}
	doc, err := s.Upload(ctx, UploadInput{
		OwnerID:        s.inboxOwner,
		Filename:       filepath.Base(path),
		Title:          meta.Title,
		Description:    meta.Description,
		Classification: meta.Classification,
		Tags:           meta.Tags,
		Expiry:         meta.Expiry,
		Body:           f,
	})
	f.Close()

	res := monitor.Result{}
	switch {
	case errors.Is(err, apperr.ErrAlreadyExists):
		res = monitor.Result{DocumentID: doc.ID, Duplicate: true}
	case err != nil:
		return res, err
	default:
		res.DocumentID = doc.ID
	}

	for _, p := range []string{path, metaPath} {
		if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("inbox: remove failed", slog.String("path", p), slog.String("error", rmErr.Error()))
		}
	}
	return res, nil
}
