// Package sidecar reads the optional metadata that accompanies a document
// dropped into the inbox, and derives a title and tags from text content.
package sidecar

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Suffix marks a metadata file: report.pdf is described by report.pdf.meta.yaml.
const Suffix = ".meta.yaml"

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Meta is the decoded sidecar.
type Meta struct {
	Title          string     `yaml:"title"`
	Description    string     `yaml:"description"`
	Classification string     `yaml:"type"`
	Tags           TagList    `yaml:"tags"`
	Expiry         *time.Time `yaml:"-"`
	RawExpiry      string     `yaml:"expiry"`
}

// TagList accepts either a YAML sequence or a comma separated string.
type TagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*t = normalize(items)
	case yaml.ScalarNode:
		*t = normalize(strings.Split(n.Value, ","))
	default:
		return fmt.Errorf("sidecar: tags must be a list or a string")
	}
	return nil
}

// PathFor returns the sidecar path for a document file.
func PathFor(file string) string { return file + Suffix }

// IsSidecar reports whether name is a metadata file rather than a document.
func IsSidecar(name string) bool { return strings.HasSuffix(name, Suffix) }

// Parse decodes sidecar YAML. An empty document yields a zero Meta.
func Parse(data []byte) (Meta, error) {
	var m Meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("sidecar: decode: %w", err)
	}
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.Classification = strings.TrimSpace(m.Classification)
	if raw := strings.TrimSpace(m.RawExpiry); raw != "" {
		exp, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return Meta{}, fmt.Errorf("sidecar: expiry %q must be YYYY-MM-DD", raw)
		}
		m.Expiry = &exp
	}
	return m, nil
}

// TitleFromText returns the first Markdown H1 heading of a text body, or
// an empty string.
func TitleFromText(body string) string {
	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// HashTags collects #tags written inline in a text body.
func HashTags(body string) []string {
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return normalize(out)
}

// MergeTags unions tag lists, keeping first-seen order.
func MergeTags(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return normalize(all)
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
