package status

import "testing"

func TestColorFor(t *testing.T) {
	tests := []struct {
		in   string
		want Token
	}{
		{"complete", Success},
		{"COMPLETE", Success},
		{"Rejected", Danger},
		{"cancelled", Danger},
		{"in_progress", Info},
		{"IN_PROGRESS", Info},
		{"pending", Neutral},
		{"unknown_status", Neutral},
		{"", Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ColorFor(tt.in); got != tt.want {
				t.Errorf("ColorFor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCaseInsensitiveSameToken(t *testing.T) {
	if ColorFor("COMPLETE") != ColorFor("complete") {
		t.Fatal("lookup must ignore case")
	}
}

func TestHexAndBadge(t *testing.T) {
	if got := ColorFor("complete").Hex(); got != "#198754" {
		t.Errorf("hex = %q", got)
	}
	if got := ColorFor("whatever").Hex(); got != "#6c757d" {
		t.Errorf("neutral hex = %q", got)
	}
	if got := Danger.BadgeClass(); got != "bg-danger" {
		t.Errorf("badge = %q", got)
	}
	if got := Neutral.BadgeClass(); got != "bg-secondary" {
		t.Errorf("neutral badge = %q", got)
	}
}
