package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/filter"
)

// ListDocuments handles GET /api/documents.
//
//	@Summary		List visible documents with filter state
//	@Tags			documents
//	@Produce		json
//	@Param			tag		query		string	false	"Tag (repeatable)"
//	@Param			type	query		string	false	"File extension"
//	@Param			since	query		string	false	"YYYY-MM-DD"
//	@Success		200		{object}	DocumentListResponse
//	@Router			/api/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.List(r.Context(), UserID(r.Context()), filter.CriteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// SearchDocuments handles GET /api/documents/search?q=.
//
//	@Summary		Full-text search over visible documents
//	@Tags			documents
//	@Produce		json
//	@Param			q	query		string	true	"At least two characters"
//	@Success		200	{array}		DocumentHit
//	@Router			/api/documents/search [get]
func (h *Handler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	hits, err := h.svc.SearchDocuments(r.Context(), r.URL.Query().Get("q"), UserID(r.Context()))
	if err != nil {
		writeError(w, "search documents", err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// GetDocument handles GET /api/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	doc, err := h.svc.Document(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// UploadDocument handles POST /api/documents (multipart/form-data, field
// "document").
//
//	@Summary		Upload a document
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			document	formData	file	true	"File"
//	@Param			title		formData	string	false	"Title"
//	@Param			tags		formData	string	false	"Comma separated tags"
//	@Param			expiry_date	formData	string	false	"YYYY-MM-DD"
//	@Success		201			{object}	models.Document
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	UploadConflictResponse
//	@Router			/api/documents [post]
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'document' field in multipart form"))
		return
	}
	defer file.Close()

	expiry, err := parseDate(r.FormValue("expiry_date"))
	if err != nil {
		writeError(w, "upload", err)
		return
	}

	doc, err := h.svc.Upload(r.Context(), docservice.UploadInput{
		OwnerID:        UserID(r.Context()),
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Title:          strings.TrimSpace(r.FormValue("title")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Classification: strings.TrimSpace(r.FormValue("type")),
		Tags:           filter.ParseTags(r.FormValue("tags")),
		Expiry:         expiry,
		Body:           file,
	})
	if errors.Is(err, apperr.ErrAlreadyExists) && doc != nil {
		writeJSON(w, http.StatusConflict, UploadConflictResponse{Error: "document already uploaded", DocumentID: doc.ID})
		return
	}
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("%w: expiry date must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}
	return &t, nil
}

// DeleteDocument handles DELETE /api/documents/{id}.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.svc.Delete(r.Context(), id, UserID(r.Context())); err != nil {
		writeError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /api/documents/preview/{id}.
//
//	@Summary		Sanitised preview snippet
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		int	true	"Document id"
//	@Success		200	{object}	PreviewResponse
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Router			/api/documents/preview/{id} [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	snippet, err := h.svc.Preview(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, "preview", err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{HTML: snippet})
}

// Download handles GET /documents/{id}/download.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	doc, rc, err := h.svc.Open(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, "download", err)
		return
	}
	defer rc.Close()

	if doc.FileType != "" {
		w.Header().Set("Content-Type", doc.FileType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalFilename))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("download interrupted", slog.Int64("id", id), slog.String("error", err.Error()))
	}
}

// Verify handles GET /api/documents/{id}/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	valid, err := h.svc.Verify(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{ID: id, Valid: valid})
}

// Share handles POST /api/documents/{id}/share.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	var req ShareRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	if err := h.svc.Share(r.Context(), id, UserID(r.Context()), req.UserIDs); err != nil {
		writeError(w, "share", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
