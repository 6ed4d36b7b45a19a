package upload

import "testing"

func TestIcon(t *testing.T) {
	tests := []struct {
		name, mime, want string
	}{
		{"a.pdf", "application/pdf", "bi-file-earmark-pdf"},
		{"scan.png", "image/png", "bi-file-earmark-image"},
		{"letter.DOCX", "", "bi-file-earmark-word"},
		{"letter.bin", "application/msword", "bi-file-earmark-word"},
		{"sheet.xls", "", "bi-file-earmark-excel"},
		{"notes.txt", "text/plain", "bi-file-earmark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Icon(tt.name, tt.mime); got != tt.want {
				t.Errorf("Icon(%q, %q) = %q, want %q", tt.name, tt.mime, got, tt.want)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"invoice.pdf":       "invoice",
		"q1.report.v2.xlsx": "q1.report.v2",
		"README":            "",
		".env":              "",
		"dir/contract.docx": "contract",
	}
	for in, want := range tests {
		if got := TitleFromFilename(in); got != want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHintFor(t *testing.T) {
	h := HintFor("scan.jpg", "", 1536)
	if h.Size != "1.5 KiB" {
		t.Errorf("size = %q", h.Size)
	}
	if h.Type != "Document" {
		t.Errorf("type = %q", h.Type)
	}
	if h.Title != "scan" {
		t.Errorf("title = %q", h.Title)
	}
	if SizeLabel(-5) != "0 B" {
		t.Errorf("negative size = %q", SizeLabel(-5))
	}
}
