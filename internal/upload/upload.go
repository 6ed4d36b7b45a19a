// Package upload derives the display hints shown while a file is staged
// for upload: icon, size label and a suggested title.
package upload

import (
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Icon picks the Bootstrap icon class for a file.
func Icon(name, mime string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(mime, "pdf"):
		return "bi-file-earmark-pdf"
	case strings.Contains(mime, "image"):
		return "bi-file-earmark-image"
	case strings.Contains(mime, "word") || strings.HasSuffix(lower, ".docx") || strings.HasSuffix(lower, ".doc"):
		return "bi-file-earmark-word"
	case strings.Contains(mime, "excel") || strings.Contains(mime, "spreadsheet") ||
		strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		return "bi-file-earmark-excel"
	default:
		return "bi-file-earmark"
	}
}

// SizeLabel formats a byte count for display.
func SizeLabel(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// TitleFromFilename strips the last extension. A name without an
// extension yields an empty title.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return strings.TrimSuffix(base, ext)
}

// TypeLabel is what the file list shows under the name.
func TypeLabel(mime string) string {
	if mime == "" {
		return "Document"
	}
	return mime
}

// Hint bundles everything the staged-file list renders.
type Hint struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Size  string `json:"size"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// HintFor builds the staged-file hint.
func HintFor(name, mime string, size int64) Hint {
	return Hint{
		Name:  name,
		Icon:  Icon(name, mime),
		Size:  SizeLabel(size),
		Type:  TypeLabel(mime),
		Title: TitleFromFilename(name),
	}
}
