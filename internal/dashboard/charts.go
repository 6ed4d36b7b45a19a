// Package dashboard shapes the chart series shown on the dashboard.
package dashboard

import (
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var baseColors = []string{
	"#0d6efd", "#dc3545", "#ffc107", "#198754", "#6610f2",
	"#fd7e14", "#20c997", "#d63384", "#6c757d", "#0dcaf0",
}

// goldenAngle spreads generated hues evenly without repeating.
const goldenAngle = 137.50776405003785

// Colors returns n chart colours: the fixed palette first, then generated
// hues. The same n always yields the same colours.
func Colors(n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n <= len(baseColors) {
		out := make([]string, n)
		copy(out, baseColors)
		return out
	}
	out := make([]string, len(baseColors), n)
	copy(out, baseColors)
	for i := len(baseColors); i < n; i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		out = append(out, colorful.Hsv(hue, 0.65, 0.85).Hex())
	}
	return out
}

// TypeCount is one slice of the documents-by-type doughnut.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// MonthCount is one point of the upload trend line. Month is "YYYY-MM".
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Stats is the chart payload embedded in the dashboard.
type Stats struct {
	ByType  []TypeCount  `json:"by_type"`
	ByMonth []MonthCount `json:"by_month"`
}

// ColorTypes assigns palette colours to type counts in order.
func ColorTypes(counts []TypeCount) []TypeCount {
	colors := Colors(len(counts))
	out := make([]TypeCount, len(counts))
	for i, c := range counts {
		c.Color = colors[i]
		out[i] = c
	}
	return out
}

// FillMonths returns the trailing span months ending at now's month, with
// zero counts where counts has no entry.
func FillMonths(counts []MonthCount, now time.Time, span int) []MonthCount {
	byMonth := make(map[string]int, len(counts))
	for _, c := range counts {
		byMonth[c.Month] += c.Count
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(span - 1), 0)
	out := make([]MonthCount, 0, span)
	for i := range span {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out = append(out, MonthCount{Month: key, Count: byMonth[key]})
	}
	return out
}
