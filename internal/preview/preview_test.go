package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/docdesk/internal/models"
)

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		"text/plain; charset=utf-8": KindText,
		"application/json":          KindText,
		"IMAGE/PNG":                 KindImage,
		"application/pdf":           KindPDF,
		"application/zip":           KindNone,
		"":                          KindNone,
	}
	for mime, want := range cases {
		assert.Equal(t, want, KindOf(mime), mime)
	}
}

func TestRenderText(t *testing.T) {
	r := NewRenderer()
	got := r.Render(models.Document{ID: 1, FileType: "text/plain", ContentText: "a <script>alert(1)</script> & b"})
	assert.True(t, strings.HasPrefix(got, `<pre class="preview-text">`), got)
	assert.Contains(t, got, "&lt;script&gt;")
	assert.NotContains(t, got, "<script>")
}

func TestRenderTruncatesLongText(t *testing.T) {
	r := NewRenderer()
	got := r.Render(models.Document{FileType: "text/plain", ContentText: strings.Repeat("é", MaxTextRunes+10)})
	assert.Equal(t, MaxTextRunes, strings.Count(got, "é"))
	assert.Contains(t, got, "...</pre>")
}

func TestRenderImageAndPDF(t *testing.T) {
	r := NewRenderer()
	img := r.Render(models.Document{ID: 5, FileType: "image/jpeg", OriginalFilename: `x" onerror="y.jpg`})
	assert.Contains(t, img, `src="/documents/5/download"`)
	assert.NotContains(t, img, "onerror=\"")

	pdf := r.Render(models.Document{ID: 6, FileType: "application/pdf"})
	assert.Contains(t, pdf, `<embed`)
	assert.Contains(t, pdf, `type="application/pdf"`)
	assert.Contains(t, pdf, `src="/documents/6/download"`)

	none := r.Render(models.Document{FileType: "application/zip"})
	assert.Contains(t, none, "Preview not available")
}

func TestSanitizeStripsScripts(t *testing.T) {
	got := NewRenderer().Sanitize(`<p onclick="x()">hi</p><script>bad()</script>`)
	assert.Equal(t, "<p>hi</p>", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}
