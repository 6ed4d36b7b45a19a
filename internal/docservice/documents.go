package docservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/checksum"
	"github.com/starford/docdesk/internal/filter"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/preview"
	"github.com/starford/docdesk/internal/sidecar"
	"github.com/starford/docdesk/internal/sse"
	"github.com/starford/docdesk/internal/upload"
)

// AllowedExtensions lists the file types accepted for upload.
var AllowedExtensions = []string{"pdf", "doc", "docx", "xls", "xlsx", "txt", "md", "csv", "jpg", "jpeg", "png", "gif"}

// maxContentText bounds the text kept for previews and search.
const maxContentText = 64 << 10

// UploadInput describes a new document.
type UploadInput struct {
	OwnerID        int64
	Filename       string
	ContentType    string
	Title          string
	Description    string
	Classification string
	Tags           []string
	Expiry         *time.Time
	Body           io.Reader
}

// Validate checks the owner and file name.
func (in UploadInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OwnerID, validation.Required),
		validation.Field(&in.Filename, validation.Required, validation.By(allowedFile)),
		validation.Field(&in.Title, validation.Length(0, 200)),
	)
}

func allowedFile(v any) error {
	name, _ := v.(string)
	if !slices.Contains(AllowedExtensions, Extension(name)) {
		return fmt.Errorf("file type not allowed")
	}
	return nil
}

// Extension returns the lower-case extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ListedDocument is a document with its filter visibility.
type ListedDocument struct {
	models.Document
	Visible bool `json:"visible"`
}

// Listing is the filtered document list.
type Listing struct {
	Documents []ListedDocument `json:"documents"`
	Criteria  filter.Criteria  `json:"criteria"`
	Visible   int              `json:"visible"`
	Total     int              `json:"total"`
	Summary   string           `json:"summary"`
}

// Record projects a document onto the fields the filter engine reads.
func Record(d models.Document) filter.Record {
	return filter.Record{
		ID:   d.ID,
		Tags: d.Tags,
		Type: Extension(d.OriginalFilename),
		Date: d.CreatedAt.Format(time.DateOnly),
	}
}

// Upload stores a new document. Uploading bytes the owner already has
// returns the existing document and an error wrapping
// apperr.ErrAlreadyExists.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidInput, err.Error())
	}
	name := filepath.Base(in.Filename)
	ext := Extension(name)
	storedName := uuid.NewString() + "." + ext
	path := s.now().UTC().Format("2006/01/") + storedName

	stored, err := s.files.Save(path, in.Body)
	if err != nil {
		return nil, err
	}
	discard := func() {
		if err := s.files.Delete(stored.Path); err != nil {
			s.logger.Warn("docservice: discard stored file", slog.String("path", stored.Path), slog.String("error", err.Error()))
		}
	}

	if dup, err := s.db.DocumentByChecksum(ctx, in.OwnerID, stored.Checksum); err == nil {
		discard()
		return dup, fmt.Errorf("same content as document %d: %w", dup.ID, apperr.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		discard()
		return nil, err
	}

	ctype := s.contentType(name, in.ContentType, stored.Path)
	var text string
	if preview.KindOf(ctype) == preview.KindText {
		text = s.extractText(stored.Path)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = sidecar.TitleFromText(text)
	}
	if title == "" {
		title = upload.TitleFromFilename(name)
	}

	doc := models.Document{
		Filename:         storedName,
		OriginalFilename: name,
		FilePath:         stored.Path,
		FileType:         ctype,
		FileSize:         stored.Size,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		ContentText:      text,
		Classification:   strings.TrimSpace(in.Classification),
		Checksum:         stored.Checksum,
		OwnerID:          in.OwnerID,
		Tags:             sidecar.MergeTags(in.Tags, sidecar.HashTags(text)),
		ExpiryDate:       in.Expiry,
		CreatedAt:        s.now(),
	}
	id, err := s.db.InsertDocument(ctx, doc)
	if err != nil {
		discard()
		return nil, err
	}
	created, err := s.db.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document stored",
		slog.Int64("id", id),
		slog.String("file", name),
		slog.String("size", upload.SizeLabel(stored.Size)))
	s.events.PublishDocumentEvent("created", sse.DocumentRef{ID: id, Title: created.DisplayTitle()})
	return created, nil
}

func (s *Service) contentType(name, declared, path string) string {
	if ct := strings.TrimSpace(declared); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	rc, err := s.files.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer rc.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(rc, head)
	return http.DetectContentType(head[:n])
}

func (s *Service) extractText(path string) string {
	rc, err := s.files.Open(path)
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxContentText))
	if err != nil {
		return ""
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(data)
}

// Document returns a document userID may view.
func (s *Service) Document(ctx context.Context, id, userID int64) (*models.Document, error) {
	doc, err := s.db.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, doc, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) authorizeView(ctx context.Context, doc *models.Document, userID int64) error {
	if doc.OwnerID == userID {
		return nil
	}
	ok, err := s.db.CanView(ctx, doc.ID, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) authorizeManage(ctx context.Context, doc *models.Document, userID int64) error {
	if doc.OwnerID == userID {
		return nil
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.ErrForbidden
	}
	return nil
}

// List returns every document visible to userID with per-document filter
// visibility and the summary line.
func (s *Service) List(ctx context.Context, userID int64, c filter.Criteria) (*Listing, error) {
	docs, err := s.db.Documents(ctx, userID)
	if err != nil {
		return nil, err
	}
	records := make([]filter.Record, len(docs))
	for i, d := range docs {
		records[i] = Record(d)
	}
	res := filter.Apply(records, c)
	out := &Listing{
		Documents: make([]ListedDocument, len(docs)),
		Criteria:  c,
		Visible:   res.VisibleCount,
		Total:     res.Total,
		Summary:   res.Summary(),
	}
	for i, d := range docs {
		out.Documents[i] = ListedDocument{Document: d, Visible: res.Visible[i]}
	}
	return out, nil
}

// Delete removes a document and its file. Only the owner or an admin may
// delete.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	doc, err := s.db.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(ctx, doc, userID); err != nil {
		return err
	}
	if err := s.db.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if err := s.files.Delete(doc.FilePath); err != nil {
		s.logger.Warn("document file not removed", slog.Int64("id", id), slog.String("error", err.Error()))
	}
	s.logger.Info("document deleted", slog.Int64("id", id), slog.Int64("user_id", userID))
	s.events.PublishDocumentEvent("deleted", sse.DocumentRef{ID: id, Title: doc.DisplayTitle()})
	return nil
}

// Preview returns the sanitised preview snippet for a document.
func (s *Service) Preview(ctx context.Context, id, userID int64) (string, error) {
	doc, err := s.Document(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return s.preview.Render(*doc), nil
}

// Open streams a document's file.
func (s *Service) Open(ctx context.Context, id, userID int64) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Document(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("document %d file: %w", id, apperr.ErrNotFound)
	}
	return doc, rc, nil
}

// Verify recomputes the stored file's checksum and reports whether it
// still matches the recorded one.
func (s *Service) Verify(ctx context.Context, id, userID int64) (bool, error) {
	doc, rc, err := s.Open(ctx, id, userID)
	if err != nil {
		return false, err
	}
	defer rc.Close()
	sum, _, err := checksum.Copy(io.Discard, rc)
	if err != nil {
		return false, err
	}
	if sum != doc.Checksum {
		s.logger.Warn("document checksum mismatch", slog.Int64("id", id))
		return false, nil
	}
	return true, nil
}

// Share grants recipients read access and notifies each of them.
func (s *Service) Share(ctx context.Context, id, userID int64, recipients []int64) error {
	if err := validation.Validate(recipients, validation.Required.Error("select at least one user")); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, err.Error())
	}
	doc, err := s.db.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(ctx, doc, userID); err != nil {
		return err
	}
	sharer, err := s.db.User(ctx, userID)
	if err != nil {
		return err
	}
	var targets []int64
	for _, rid := range recipients {
		if rid == userID || slices.Contains(targets, rid) {
			continue
		}
		if _, err := s.db.User(ctx, rid); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("%w: unknown user %d", apperr.ErrInvalidInput, rid)
			}
			return err
		}
		targets = append(targets, rid)
	}
	if err := s.db.ShareDocument(ctx, id, targets); err != nil {
		return err
	}
	for _, rid := range targets {
		s.notify(ctx, models.Notification{
			UserID:  rid,
			Message: fmt.Sprintf("%s shared \"%s\" with you", sharer.Username, doc.DisplayTitle()),
			Link:    fmt.Sprintf("/documents/%d", id),
			Type:    "document",
		})
	}
	return nil
}
