// Package status maps workflow and task status labels to display colours.
package status

import "strings"

// Token is a colour role understood by the stylesheet.
type Token string

// Colour tokens.
const (
	Success Token = "success"
	Danger  Token = "danger"
	Info    Token = "info"
	Neutral Token = "neutral"
)

// Known status labels.
const (
	Pending    = "pending"
	InProgress = "in_progress"
	Complete   = "complete"
	Rejected   = "rejected"
	Cancelled  = "cancelled"
)

// ColorFor is total: unknown labels map to Neutral.
func ColorFor(status string) Token {
	switch strings.ToLower(status) {
	case Complete:
		return Success
	case Rejected, Cancelled:
		return Danger
	case InProgress:
		return Info
	default:
		return Neutral
	}
}

// Hex returns the stroke colour used in workflow diagrams.
func (t Token) Hex() string {
	switch t {
	case Success:
		return "#198754"
	case Danger:
		return "#dc3545"
	case Info:
		return "#0d6efd"
	default:
		return "#6c757d"
	}
}

// BadgeClass returns the Bootstrap background class for badges.
func (t Token) BadgeClass() string {
	if t == Neutral {
		return "bg-secondary"
	}
	return "bg-" + string(t)
}
