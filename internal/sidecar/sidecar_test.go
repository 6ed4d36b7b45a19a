package sidecar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte("title: Lease 2024\ntype: contract\ntags:\n  - legal\n  - office\n  - legal\nexpiry: 2025-03-31\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Title != "Lease 2024" || m.Classification != "contract" {
		t.Errorf("meta = %+v", m)
	}
	if diff := cmp.Diff([]string{"legal", "office"}, []string(m.Tags)); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	want := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	if m.Expiry == nil || !m.Expiry.Equal(want) {
		t.Errorf("expiry = %v", m.Expiry)
	}
}

func TestParseCommaTags(t *testing.T) {
	m, err := Parse([]byte("tags: finance, q1 ,,"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"finance", "q1"}, []string(m.Tags)); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":   ": invalid: yaml: {{{",
		"bad expiry": "expiry: 31/03/2025",
		"map tags":   "tags: {a: b}",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if m, err := Parse(nil); err != nil || m.Title != "" {
		t.Errorf("empty sidecar = %+v, %v", m, err)
	}
}

func TestTextHelpers(t *testing.T) {
	body := "intro\n# Budget Plan\nSee #finance and #q1-2024 plus #finance.\n"
	if got := TitleFromText(body); got != "Budget Plan" {
		t.Errorf("TitleFromText = %q", got)
	}
	if diff := cmp.Diff([]string{"finance", "q1-2024"}, HashTags(body)); diff != "" {
		t.Errorf("HashTags (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, MergeTags([]string{"a", "b"}, []string{"b", " c "})); diff != "" {
		t.Errorf("MergeTags (-want +got):\n%s", diff)
	}
	if !IsSidecar(PathFor("x.pdf")) || IsSidecar("x.pdf") {
		t.Error("IsSidecar mismatch")
	}
}
