package workflow

import "github.com/starford/docdesk/internal/status"

// Diagram geometry.
const (
	BoxWidth  = 180
	BoxHeight = 80
	BoxMargin = 40
	BoxTop    = 10
)

// DiagramTask is what a diagram box shows.
type DiagramTask struct {
	Name     string `json:"name"`
	Assignee string `json:"assigned_to_username,omitempty"`
	Status   string `json:"status"`
}

// Box is one positioned task.
type Box struct {
	X     int
	Task  DiagramTask
	Color string
}

// AssigneeLabel returns the assignee or "Unassigned".
func (b Box) AssigneeLabel() string {
	if b.Task.Assignee == "" {
		return "Unassigned"
	}
	return b.Task.Assignee
}

// Connector is the arrow between two consecutive boxes.
type Connector struct {
	X1, X2, Y int
}

// Diagram is a laid-out left-to-right task chain.
type Diagram struct {
	Width      int
	Boxes      []Box
	Connectors []Connector
}

// Layout centres the task chain in a canvas of the given width. A width
// smaller than the chain starts it at the left edge.
func Layout(tasks []DiagramTask, width int) Diagram {
	total := len(tasks) * (BoxWidth + BoxMargin)
	startX := max((width-total)/2, 0)
	d := Diagram{Width: max(width, total)}
	for i, t := range tasks {
		x := startX + i*(BoxWidth+BoxMargin)
		d.Boxes = append(d.Boxes, Box{X: x, Task: t, Color: status.ColorFor(t.Status).Hex()})
		if i < len(tasks)-1 {
			d.Connectors = append(d.Connectors, Connector{
				X1: x + BoxWidth,
				X2: x + BoxWidth + BoxMargin,
				Y:  BoxHeight/2 + BoxTop,
			})
		}
	}
	return d
}
