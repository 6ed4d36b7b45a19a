package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docdesk/internal/checksum"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestSaveAndRead(t *testing.T) {
	s := tempStore(t)
	content := "quarterly report\n"
	st, err := s.Save("2024/01/report.txt", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st.Path != "2024/01/report.txt" || st.Size != int64(len(content)) {
		t.Errorf("stored = %+v", st)
	}
	if st.Checksum != checksum.Sum([]byte(content)) {
		t.Errorf("checksum = %s", st.Checksum)
	}
	got, err := s.Read("2024/01/report.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != content {
		t.Errorf("content mismatch: got %q", got)
	}

	rc, err := s.Open("2024/01/report.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	streamed, _ := io.ReadAll(rc)
	if string(streamed) != content {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_, _ = s.Save("del.txt", strings.NewReader("bye"))
	if err := s.Delete("del.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.txt"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("del.txt"); err != nil {
		t.Errorf("deleting a missing file: %v", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)
	for _, p := range []string{"../../etc/passwd", "../outside.txt", "/etc/shadow", "", "."} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.Save(p, strings.NewReader("x")); err == nil {
			t.Errorf("expected error for save to %q", p)
		}
	}
}

func TestSaveOverwriteLeavesNoTemp(t *testing.T) {
	s := tempStore(t)
	_, _ = s.Save("atomic.txt", strings.NewReader("original"))
	if _, err := s.Save("atomic.txt", strings.NewReader("updated")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.Read("atomic.txt")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".docdesk-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFSCreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "docs")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestNewFSFileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "docdesk-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
