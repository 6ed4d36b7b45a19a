package filter

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEmptyCriteriaShowsEverything(t *testing.T) {
	records := []Record{
		{Tags: []string{"a"}, Type: "pdf", Date: "2024-01-01"},
		{},
		{Tags: nil, Type: "", Date: ""},
	}
	got := ComputeVisibility(records, Criteria{})
	if diff := cmp.Diff([]bool{true, true, true}, got); diff != "" {
		t.Errorf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestTagFilterHidesUntagged(t *testing.T) {
	got := ComputeVisibility([]Record{{Tags: nil}, {Tags: []string{}}}, Criteria{Tags: []string{"X"}})
	assert.Equal(t, []bool{false, false}, got)
}

func TestTagMatchIsAnyOf(t *testing.T) {
	r := Record{Tags: []string{"A", "B"}}
	assert.True(t, Visible(r, Criteria{Tags: []string{"B", "C"}}))
	assert.False(t, Visible(r, Criteria{Tags: []string{"C", "D"}}))
}

func TestClauses(t *testing.T) {
	r := Record{Tags: []string{"invoice"}, Type: "pdf", Date: "2024-03-15"}
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"type match", Criteria{Type: "pdf"}, true},
		{"type is case sensitive", Criteria{Type: "PDF"}, false},
		{"since before", Criteria{Since: "2024-03-01"}, true},
		{"since same day", Criteria{Since: "2024-03-15"}, true},
		{"since after", Criteria{Since: "2024-03-16"}, false},
		{"all clauses", Criteria{Tags: []string{"invoice"}, Type: "pdf", Since: "2024-01-01"}, true},
		{"one clause fails", Criteria{Tags: []string{"invoice"}, Type: "docx"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(r, tt.c); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySummary(t *testing.T) {
	records := make([]Record, 10)
	for i := range records {
		records[i] = Record{ID: int64(i + 1), Type: "pdf", Date: "2024-01-01"}
		if i%3 == 0 && i < 9 {
			records[i].Tags = []string{"invoice"}
		}
	}
	res := Apply(records, Criteria{Tags: []string{"invoice"}})
	assert.Equal(t, 3, res.VisibleCount)
	assert.Equal(t, 10, res.Total)
	assert.Len(t, res.Visible, 10)
	assert.Equal(t, "Showing 3 of 10 documents", res.Summary())
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{",,", nil},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseTags(tt.raw)); diff != "" {
				t.Errorf("ParseTags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCriteriaFromQuery(t *testing.T) {
	q := url.Values{
		"tag":   {"invoice", "", " contract "},
		"type":  {"pdf"},
		"since": {""},
	}
	c := CriteriaFromQuery(q)
	assert.Equal(t, Criteria{Tags: []string{"invoice", "contract"}, Type: "pdf"}, c)
	assert.False(t, c.IsEmpty())
	assert.True(t, CriteriaFromQuery(url.Values{}).IsEmpty())
}
