// Package filter decides which documents stay visible under the active
// tag, type and date criteria of the documents page.
package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// Record is the slice of a document the filters look at.
type Record struct {
	ID   int64    `json:"id"`
	Tags []string `json:"tags"`
	Type string   `json:"type"`
	// Date is a zero-padded YYYY-MM-DD string.
	Date string `json:"date"`
}

// Criteria is the current set of active filter constraints.
// Zero values mean "no constraint".
type Criteria struct {
	Tags  []string `json:"tags,omitempty"`
	Type  string   `json:"type,omitempty"`
	Since string   `json:"since,omitempty"`
}

// IsEmpty reports whether no constraint is active.
func (c Criteria) IsEmpty() bool {
	return len(c.Tags) == 0 && c.Type == "" && c.Since == ""
}

// Result is the outcome of applying criteria to a record set.
type Result struct {
	Visible      []bool `json:"visible"`
	VisibleCount int    `json:"visible_count"`
	Total        int    `json:"total"`
}

// Summary renders the status line shown above the document list.
func (r Result) Summary() string {
	return fmt.Sprintf("Showing %d of %d documents", r.VisibleCount, r.Total)
}

// Visible evaluates all three clauses against one record.
func Visible(r Record, c Criteria) bool {
	tagOK := len(c.Tags) == 0 || intersects(c.Tags, r.Tags)
	typeOK := c.Type == "" || c.Type == r.Type
	// Plain string comparison: only correct for zero-padded ISO dates.
	dateOK := c.Since == "" || r.Date >= c.Since
	return tagOK && typeOK && dateOK
}

// ComputeVisibility returns one flag per record, in input order.
func ComputeVisibility(records []Record, c Criteria) []bool {
	out := make([]bool, len(records))
	for i, r := range records {
		out[i] = Visible(r, c)
	}
	return out
}

// Apply computes visibility and the visible/total count pair.
func Apply(records []Record, c Criteria) Result {
	flags := ComputeVisibility(records, c)
	n := 0
	for _, v := range flags {
		if v {
			n++
		}
	}
	return Result{Visible: flags, VisibleCount: n, Total: len(records)}
}

// ParseTags splits a comma-separated tag attribute. Blank input or blank
// entries are dropped, so malformed data degrades to an empty set.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CriteriaFromQuery reads repeated "tag", plus "type" and "since" query
// parameters. Blank values are ignored.
func CriteriaFromQuery(q url.Values) Criteria {
	var c Criteria
	for _, t := range q["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			c.Tags = append(c.Tags, t)
		}
	}
	c.Type = strings.TrimSpace(q.Get("type"))
	c.Since = strings.TrimSpace(q.Get("since"))
	return c
}

func intersects(want, have []string) bool {
	if len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
