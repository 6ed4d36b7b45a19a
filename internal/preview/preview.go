// Package preview builds the sanitised HTML snippet shown in the document
// preview modal.
package preview

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/docdesk/internal/models"
)

// MaxTextRunes caps the text shown for text-like documents.
const MaxTextRunes = 5000

// Kind is how a document is previewed.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindNone  Kind = "none"
)

// KindOf classifies a MIME type.
func KindOf(mime string) Kind {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	switch {
	case strings.HasPrefix(m, "text/"),
		m == "application/json", m == "application/xml", m == "application/x-yaml",
		m == "application/yaml":
		return KindText
	case strings.HasPrefix(m, "image/"):
		return KindImage
	case m == "application/pdf":
		return KindPDF
	default:
		return KindNone
	}
}

// Renderer produces preview HTML through a fixed sanitising policy.
type Renderer struct {
	policy *bluemonday.Policy
}

// NewRenderer builds the UGC-based policy extended with the PDF embed.
func NewRenderer() *Renderer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowElements("embed")
	p.AllowAttrs("src").OnElements("embed")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^application/pdf$`)).OnElements("embed")
	p.AllowAttrs("width", "height").Matching(regexp.MustCompile(`^\d+(%|px)?$`)).OnElements("embed")
	return &Renderer{policy: p}
}

// DownloadURL is where the raw file of a document is served.
func DownloadURL(id int64) string {
	return fmt.Sprintf("/documents/%d/download", id)
}

// Render returns the preview snippet for doc.
func (r *Renderer) Render(doc models.Document) string {
	var raw string
	switch KindOf(doc.FileType) {
	case KindText:
		raw = `<pre class="preview-text">` + html.EscapeString(Truncate(doc.ContentText, MaxTextRunes)) + `</pre>`
	case KindImage:
		raw = fmt.Sprintf(`<img src="%s" alt="%s" class="img-fluid">`,
			DownloadURL(doc.ID), html.EscapeString(doc.DisplayTitle()))
	case KindPDF:
		raw = fmt.Sprintf(`<embed src="%s" type="application/pdf" width="100%%" height="600px">`, DownloadURL(doc.ID))
	default:
		raw = `<div class="alert alert-info">Preview not available for this file type.</div>`
	}
	return r.policy.Sanitize(raw)
}

// Sanitize runs arbitrary HTML through the preview policy.
func (r *Renderer) Sanitize(s string) string {
	return r.policy.Sanitize(s)
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
