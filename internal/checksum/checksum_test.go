package checksum

import (
	"bytes"
	"strings"
	"testing"
)

func TestCopyMatchesSum(t *testing.T) {
	var buf bytes.Buffer
	sum, n, err := Copy(&buf, strings.NewReader("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || buf.String() != "hello" {
		t.Errorf("copied %d bytes %q", n, buf.String())
	}
	if want := Sum([]byte("hello")); sum != want {
		t.Errorf("Copy sum = %s, want %s", sum, want)
	}
	if Sum(nil) != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Error("empty digest mismatch")
	}
}
